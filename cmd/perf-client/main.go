package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/kkkkikiki/crowdfund/internal/auth"
	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/logging"
	"github.com/kkkkikiki/crowdfund/internal/model"
	"github.com/kkkkikiki/crowdfund/internal/repository"
	"github.com/kkkkikiki/crowdfund/internal/seed"
	"github.com/kkkkikiki/crowdfund/internal/service"
)

// PerfResult gathers aggregated metrics for the test run.
// Atomic counters are used to avoid lock-contention on hot paths.
// LatencySum is in nanoseconds.
type PerfResult struct {
	TotalRequests int64
	SuccessCount  int64
	RejectedCount int64
	ErrorCount    int64
	LatencySum    int64
}

const (
	fixedWorkers    = 8
	fixedRPSTarget  = 400
	fixedDuration   = 5 * time.Second
	fixedTierQuota  = 500
	fixedCampaignID = "90000001"
	fixedTierName   = "Load Test"
)

var (
	pledgeAmount = decimal.NewFromInt(250)
	tierMinimum  = decimal.NewFromInt(200)
)

func main() {
	logger := logging.NewLogger(false, "warn")
	ctx := context.Background()

	// ─── Scratch ledger ─────────────────────────────────────────
	dir, err := os.MkdirTemp("", "crowdfund-perf-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create scratch dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	db, err := database.Open(ctx, dir, database.Options{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo, err := repository.New(ctx, db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load ledger: %v\n", err)
		os.Exit(1)
	}
	svc := service.NewPledgeService(repo, logger)

	if err := prepare(repo, svc, logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare campaign: %v\n", err)
		os.Exit(1)
	}

	// ─── Banner ──────────────────────────────────────────────────
	fmt.Println("==========================================")
	fmt.Println("Pledge workflow load test")
	fmt.Println("==========================================")
	fmt.Printf("Campaign   : %s (tier %q, quota %d)\n", fixedCampaignID, fixedTierName, fixedTierQuota)
	fmt.Printf("RPS        : %d\n", fixedRPSTarget)
	fmt.Printf("Workers    : %d\n", fixedWorkers)
	fmt.Printf("Duration   : %v\n", fixedDuration)
	fmt.Println("==========================================")

	// ─── Rate limiter & context ─────────────────────────────────
	burst := fixedRPSTarget / fixedWorkers
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(fixedRPSTarget), burst)

	runCtx, cancel := context.WithTimeout(ctx, fixedDuration)
	defer cancel()

	var result PerfResult
	var wg sync.WaitGroup
	var latMu sync.Mutex
	latencies := make([]time.Duration, 0, fixedRPSTarget*int(fixedDuration/time.Second))

	start := time.Now()
	for i := 0; i < fixedWorkers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			// Every third worker pledges without logging in to exercise rejections.
			session := auth.NewSession(repo)
			if worker%3 != 0 {
				session.Login(perfUsername(worker), perfPassword(worker))
			}

			for {
				if err := limiter.Wait(runCtx); err != nil { // context cancelled → exit
					return
				}
				lat := doRequest(svc, session, &result)
				latMu.Lock()
				latencies = append(latencies, lat)
				latMu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	totalDur := time.Since(start)

	// ─── Report ─────────────────────────────────────────────────
	fmt.Println("==========================================")
	fmt.Println("Results")
	fmt.Println("==========================================")
	fmt.Printf("Elapsed            : %.2fs\n", totalDur.Seconds())
	fmt.Printf("Total requests     : %d\n", result.TotalRequests)
	fmt.Printf("Accepted           : %d\n", result.SuccessCount)
	fmt.Printf("Rejected           : %d\n", result.RejectedCount)
	fmt.Printf("Errors             : %d\n", result.ErrorCount)
	if result.TotalRequests > 0 {
		fmt.Printf("Actual RPS         : %.2f\n", float64(result.TotalRequests)/totalDur.Seconds())
		fmt.Printf("Average latency    : %v\n", time.Duration(result.LatencySum/result.TotalRequests))
		fmt.Printf("P95 latency        : %v\n", percentile(latencies, 0.95))
	}
	fmt.Println("==========================================")

	// ─── Data Consistency Check ─────────────────────────────────
	fmt.Println("Data consistency")
	fmt.Println("==========================================")
	if err := verifyDataConsistency(repo, &result); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK: ledger is consistent")
	fmt.Println("==========================================")
}

// prepare creates the load-test campaign, its tier and one user per worker
func prepare(repo *repository.Repository, svc *service.PledgeService, logger logging.Logger) error {
	seeder := seed.NewSeeder(repo, svc, time.Now, logger)
	deadline := time.Now().AddDate(0, 1, 0)
	if _, err := seeder.EnsureCampaign(fixedCampaignID, "Load Test Campaign", decimal.NewFromInt(1_000_000), deadline, "PERF"); err != nil {
		return err
	}
	if _, err := seeder.EnsureRewardTier(fixedCampaignID, fixedTierName, tierMinimum, fixedTierQuota); err != nil {
		return err
	}
	for i := 0; i < fixedWorkers; i++ {
		u := model.User{
			ID:          fmt.Sprintf("PERF%03d", i),
			Username:    perfUsername(i),
			DisplayName: fmt.Sprintf("Perf Worker %d", i),
			Credential:  perfPassword(i),
		}
		if err := repo.UpsertUser(u); err != nil {
			return err
		}
	}
	return nil
}

func perfUsername(i int) string { return fmt.Sprintf("perf-%d", i) }
func perfPassword(i int) string { return fmt.Sprintf("perf-secret-%d", i) }

// doRequest performs a single pledge and collects metrics
func doRequest(svc *service.PledgeService, session *auth.Session, result *PerfResult) time.Duration {
	start := time.Now()
	atomic.AddInt64(&result.TotalRequests, 1)

	res, err := svc.CreatePledge(context.Background(), session, service.PledgeRequest{
		CampaignID: fixedCampaignID,
		Amount:     pledgeAmount,
		TierName:   fixedTierName,
	})
	latency := time.Since(start)
	atomic.AddInt64(&result.LatencySum, latency.Nanoseconds())

	switch {
	case err != nil:
		atomic.AddInt64(&result.ErrorCount, 1)
	case res.OK:
		atomic.AddInt64(&result.SuccessCount, 1)
	default:
		atomic.AddInt64(&result.RejectedCount, 1)
	}
	return latency
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// verifyDataConsistency checks the ledger against what the workers observed
func verifyDataConsistency(repo *repository.Repository, result *PerfResult) error {
	campaign, ok := repo.GetCampaign(fixedCampaignID)
	if !ok {
		return fmt.Errorf("campaign not found")
	}
	tier, ok := repo.GetRewardTier(fixedCampaignID, fixedTierName)
	if !ok {
		return fmt.Errorf("reward tier not found")
	}

	expectedRaised := pledgeAmount.Mul(decimal.NewFromInt(result.SuccessCount))
	fmt.Printf("Raised (ledger)    : %s\n", campaign.RaisedTotal)
	fmt.Printf("Raised (observed)  : %s\n", expectedRaised)
	fmt.Printf("Quota left         : %d\n", tier.RemainingQuota)

	if !campaign.RaisedTotal.Equal(expectedRaised) {
		return fmt.Errorf("raised total mismatch: ledger=%s observed=%s", campaign.RaisedTotal, expectedRaised)
	}
	if want := fixedTierQuota - int(result.SuccessCount); tier.RemainingQuota != max(want, 0) {
		return fmt.Errorf("quota mismatch: ledger=%d expected=%d", tier.RemainingQuota, want)
	}
	if claims := repo.SuccessfulClaims(fixedCampaignID, fixedTierName); claims != int(result.SuccessCount) {
		return fmt.Errorf("tier claims mismatch: ledger=%d observed=%d", claims, result.SuccessCount)
	}
	if result.SuccessCount > fixedTierQuota {
		return fmt.Errorf("over-claiming: accepted=%d > quota=%d", result.SuccessCount, fixedTierQuota)
	}
	recorded := int64(repo.PledgeCount())
	if recorded != result.TotalRequests-result.ErrorCount {
		return fmt.Errorf("pledge count mismatch: ledger=%d observed=%d", recorded, result.TotalRequests-result.ErrorCount)
	}
	if drift := repo.Verify(); len(drift) > 0 {
		return fmt.Errorf("%d campaign(s) drifted from pledge history", len(drift))
	}
	return nil
}
