package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/model"
)

var (
	// ErrStorage marks failures of the storage medium. Callers must treat it
	// as unrecoverable, unlike a rejected pledge.
	ErrStorage = errors.New("storage failure")
	// ErrDuplicatePledge is returned when a pledge id is already recorded
	ErrDuplicatePledge = errors.New("pledge id already recorded")
	// ErrInvalidKey is returned for upserts with an empty key
	ErrInvalidKey = errors.New("entity key is required")
)

// Repository is the authoritative in-memory record of campaigns, reward
// tiers, pledges and users, mirrored to one table file per entity kind.
// Entities are held by value; every read returns a copy and aggregates are
// only changed through Repository methods.
type Repository struct {
	mu     sync.RWMutex
	db     *database.DB
	logger zerolog.Logger

	campaigns     map[string]model.Campaign
	campaignOrder []string

	tiers     map[model.TierKey]model.RewardTier
	tierOrder []model.TierKey

	pledges     map[string]model.Pledge
	pledgeOrder []string

	users     map[string]model.User
	userOrder []string

	report LoadReport
}

// New creates a repository over db and loads every table from disk
func New(ctx context.Context, db *database.DB, logger zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:     db,
		logger: logger.With().Str("component", "repository").Logger(),
	}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads every table again and replaces in-memory state only when all
// of them loaded. Tables are read in dependency order: campaigns, reward
// tiers, users, then pledges. Pledges are not replayed; stored totals and
// quotas are authoritative.
func (r *Repository) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := &Repository{
		db:        r.db,
		logger:    r.logger,
		campaigns: make(map[string]model.Campaign),
		tiers:     make(map[model.TierKey]model.RewardTier),
		pledges:   make(map[string]model.Pledge),
		users:     make(map[string]model.User),
		report:    LoadReport{},
	}

	steps := []struct {
		table *database.Table
		load  func(row database.Row, fr *FileReport)
	}{
		{r.db.Campaigns, next.loadCampaign},
		{r.db.RewardTiers, next.loadRewardTier},
		{r.db.Users, next.loadUser},
		{r.db.Pledges, next.loadPledge},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := next.loadTable(step.table, step.load); err != nil {
			return err
		}
	}

	r.campaigns, r.campaignOrder = next.campaigns, next.campaignOrder
	r.tiers, r.tierOrder = next.tiers, next.tierOrder
	r.pledges, r.pledgeOrder = next.pledges, next.pledgeOrder
	r.users, r.userOrder = next.users, next.userOrder
	r.report = next.report

	r.logger.Info().
		Int("campaigns", len(r.campaigns)).
		Int("reward_tiers", len(r.tiers)).
		Int("users", len(r.users)).
		Int("pledges", len(r.pledges)).
		Msg("loaded ledger")
	return nil
}

func (r *Repository) loadTable(table *database.Table, load func(database.Row, *FileReport)) error {
	rows, err := table.ReadRows()
	if err != nil {
		return fmt.Errorf("%w: failed to load %s: %v", ErrStorage, table.Name, err)
	}

	var fr FileReport
	for _, row := range rows {
		fr.Rows++
		if row.Resplit {
			fr.Resplit++
			fr.notice(fmt.Sprintf("line %d: unbalanced quotes, split on commas", row.Line))
		}
		if row.Padded > 0 {
			fr.Padded++
			fr.notice(fmt.Sprintf("line %d: padded %d missing field(s)", row.Line, row.Padded))
		}
		load(row, &fr)
	}

	r.report.set(table.Name, fr)
	fr.publish(table.Name)
	if !fr.Clean() {
		ev := r.logger.Warn().
			Str("file", table.Name).
			Int("rows", fr.Rows).
			Int("padded", fr.Padded).
			Int("resplit", fr.Resplit).
			Int("defaulted", fr.Defaulted).
			Int("skipped", fr.Skipped)
		if len(fr.Notices) > 0 {
			ev = ev.Strs("notices", fr.Notices)
		}
		ev.Msg("tolerated malformed rows while loading")
	}
	return nil
}

// Report returns what the last load tolerated, per table
func (r *Repository) Report() LoadReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report.clone()
}

// persist writes one table, wrapping failures as ErrStorage
func (r *Repository) persist(table *database.Table, records [][]string) error {
	if err := table.WriteRows(records); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (r *Repository) saveCampaigns() error {
	records := make([][]string, 0, len(r.campaignOrder))
	for _, id := range r.campaignOrder {
		records = append(records, encodeCampaign(r.campaigns[id]))
	}
	return r.persist(r.db.Campaigns, records)
}

func (r *Repository) saveRewardTiers() error {
	records := make([][]string, 0, len(r.tierOrder))
	for _, key := range r.tierOrder {
		records = append(records, encodeRewardTier(r.tiers[key]))
	}
	return r.persist(r.db.RewardTiers, records)
}

func (r *Repository) savePledges() error {
	records := make([][]string, 0, len(r.pledgeOrder))
	for _, id := range r.pledgeOrder {
		records = append(records, encodePledge(r.pledges[id]))
	}
	return r.persist(r.db.Pledges, records)
}

func (r *Repository) saveUsers() error {
	records := make([][]string, 0, len(r.userOrder))
	for _, id := range r.userOrder {
		records = append(records, encodeUser(r.users[id]))
	}
	return r.persist(r.db.Users, records)
}
