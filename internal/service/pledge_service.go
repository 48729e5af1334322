package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/crowdfund/internal/auth"
	"github.com/kkkkikiki/crowdfund/internal/metrics"
	"github.com/kkkkikiki/crowdfund/internal/model"
	"github.com/kkkkikiki/crowdfund/internal/validation"
)

// Store is the part of the repository the pledge workflow depends on
type Store interface {
	GetCampaign(id string) (model.Campaign, bool)
	ListCampaigns() []model.Campaign
	GetRewardTier(campaignID, tierName string) (model.RewardTier, bool)
	ListRewardTiers(campaignID string) []model.RewardTier
	AddPledge(p model.Pledge) error
	PledgeCount() int
	HasPledge(id string) bool
	CountPledgesByOutcome(outcome model.Outcome) int
}

// PledgeRequest is one attempt to back a campaign
type PledgeRequest struct {
	CampaignID string
	Amount     decimal.Decimal
	TierName   string // optional
}

// PledgeResult is the outcome of CreatePledge. PledgeID is set for both
// accepted and rejected pledges; Errors lists every violated rule.
type PledgeResult struct {
	OK       bool
	PledgeID string
	Errors   []string
}

// PledgeService validates pledge requests, records every one of them and
// applies successful ones to campaign and tier aggregates
type PledgeService struct {
	// mu serialises validate, allocate id, record and persist
	mu sync.Mutex

	store     Store
	validator *validation.Validator
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a PledgeService
type Option func(*PledgeService)

// WithClock makes the service, and its validator, use now as the current time
func WithClock(now func() time.Time) Option {
	return func(s *PledgeService) {
		s.now = now
		s.validator = validation.NewValidator(now)
	}
}

// NewPledgeService creates a new PledgeService instance
func NewPledgeService(store Store, logger zerolog.Logger, opts ...Option) *PledgeService {
	s := &PledgeService{
		store:     store,
		validator: validation.NewValidator(time.Now),
		now:       time.Now,
		logger:    logger.With().Str("component", "pledge_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePledge runs every check against req, records the pledge as SUCCESS
// or REJECTED, and on success updates the campaign's raised total and the
// tier's quota. Rule violations are reported in PledgeResult.Errors; an
// error is only returned when the pledge could not be recorded.
func (s *PledgeService) CreatePledge(ctx context.Context, session *auth.Session, req PledgeRequest) (*PledgeResult, error) {
	start := time.Now()
	result := "error"
	defer func() {
		metrics.RecordCreatePledgeDuration(result, time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tierName := strings.TrimSpace(req.TierName)
	errs := s.check(session, req.CampaignID, req.Amount, tierName)

	pledge := model.Pledge{
		ID:         s.nextPledgeID(),
		UserID:     model.AnonymousUserID,
		CampaignID: req.CampaignID,
		Amount:     req.Amount,
		TierName:   tierName,
		Outcome:    model.OutcomeSuccess,
		CreatedAt:  s.now(),
	}
	if u, ok := session.CurrentUser(); ok {
		pledge.UserID = u.ID
	}
	if len(errs) > 0 {
		pledge.Outcome = model.OutcomeRejected
	}

	if err := s.store.AddPledge(pledge); err != nil {
		s.logger.Error().Err(err).Str("pledge_id", pledge.ID).Msg("failed to record pledge")
		return nil, fmt.Errorf("failed to record pledge %s: %w", pledge.ID, err)
	}
	metrics.RecordPledge(strings.ToLower(string(pledge.Outcome)))

	if len(errs) > 0 {
		result = "rejected"
		s.logger.Info().
			Str("pledge_id", pledge.ID).
			Str("user_id", pledge.UserID).
			Str("session_id", session.ID()).
			Str("campaign_id", pledge.CampaignID).
			Str("amount", pledge.Amount.String()).
			Strs("errors", errs).
			Msg("pledge rejected")
		return &PledgeResult{OK: false, PledgeID: pledge.ID, Errors: errs}, nil
	}

	result = "success"
	s.logger.Info().
		Str("pledge_id", pledge.ID).
		Str("user_id", pledge.UserID).
		Str("session_id", session.ID()).
		Str("campaign_id", pledge.CampaignID).
		Str("amount", pledge.Amount.String()).
		Str("tier", pledge.TierName).
		Msg("pledge accepted")
	return &PledgeResult{OK: true, PledgeID: pledge.ID, Errors: []string{}}, nil
}

// check runs every rule and collects one message per violation
func (s *PledgeService) check(session *auth.Session, campaignID string, amount decimal.Decimal, tierName string) []string {
	var errs []string

	if !session.IsLoggedIn() {
		errs = append(errs, "not logged in: please log in before pledging")
	}

	campaign, found := s.store.GetCampaign(campaignID)
	if !found {
		errs = append(errs, fmt.Sprintf("campaign not found: %s", campaignID))
	} else if !s.validator.IsFutureDeadline(campaign.Deadline) {
		errs = append(errs, fmt.Sprintf("campaign deadline has passed (deadline: %s)", deadlineString(campaign)))
	}

	if !amount.IsPositive() {
		errs = append(errs, "amount must be greater than 0")
	}

	// Tier rules only apply to an existing campaign
	if tierName != "" && found {
		tier, ok := s.store.GetRewardTier(campaignID, tierName)
		if !ok {
			errs = append(errs, fmt.Sprintf("tier not found: %q for this campaign", tierName))
		} else {
			if !s.validator.MeetsMinAmount(amount, &tier) {
				errs = append(errs, fmt.Sprintf("amount is below this reward's minimum (min: %s)", tier.MinAmount))
			}
			if !s.validator.HasQuota(&tier) {
				errs = append(errs, "this reward has no remaining quota")
			}
		}
	}

	return errs
}

// nextPledgeID derives the next id from the number of recorded pledges.
// Rejected pledges consume ids too; an id already on record is skipped.
func (s *PledgeService) nextPledgeID() string {
	n := s.store.PledgeCount() + 1
	for {
		id := FormatPledgeID(n)
		if !s.store.HasPledge(id) {
			return id
		}
		n++
	}
}

// FormatPledgeID renders the n-th pledge id
func FormatPledgeID(n int) string {
	return fmt.Sprintf("P%03d", n)
}

func deadlineString(c model.Campaign) string {
	if !c.HasDeadline() {
		return "none"
	}
	return c.Deadline.Format(model.DateLayout)
}

// GetCampaign returns a campaign by id
func (s *PledgeService) GetCampaign(id string) (model.Campaign, bool) {
	return s.store.GetCampaign(id)
}

// GetRewardTiers returns the reward tiers of a campaign
func (s *PledgeService) GetRewardTiers(campaignID string) []model.RewardTier {
	return s.store.ListRewardTiers(campaignID)
}

// CountSuccess returns the number of accepted pledges
func (s *PledgeService) CountSuccess() int {
	return s.store.CountPledgesByOutcome(model.OutcomeSuccess)
}

// CountRejected returns the number of rejected pledges
func (s *PledgeService) CountRejected() int {
	return s.store.CountPledgesByOutcome(model.OutcomeRejected)
}
