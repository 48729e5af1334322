// Package seed loads demo users, campaigns and reward tiers without
// clobbering totals and quotas accumulated by earlier runs.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/crowdfund/internal/auth"
	"github.com/kkkkikiki/crowdfund/internal/model"
	"github.com/kkkkikiki/crowdfund/internal/service"
	"github.com/kkkkikiki/crowdfund/internal/validation"
)

// Store is what seeding needs from the repository
type Store interface {
	auth.UserFinder
	UpsertUser(u model.User) error
	GetCampaign(id string) (model.Campaign, bool)
	UpsertCampaign(c model.Campaign) error
	GetRewardTier(campaignID, tierName string) (model.RewardTier, bool)
	UpsertRewardTier(t model.RewardTier) error
	PledgeCount() int
}

// Pledger records pledges on behalf of a session
type Pledger interface {
	CreatePledge(ctx context.Context, session *auth.Session, req service.PledgeRequest) (*service.PledgeResult, error)
}

// Seeder writes the demo data set
type Seeder struct {
	store     Store
	pledger   Pledger
	validator *validation.Validator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewSeeder creates a seeder; now anchors the demo deadlines
func NewSeeder(store Store, pledger Pledger, now func() time.Time, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:     store,
		pledger:   pledger,
		validator: validation.NewValidator(now),
		now:       now,
		logger:    logger.With().Str("component", "seed").Logger(),
	}
}

// Run upserts users, creates missing campaigns and tiers, and records the
// demo pledge history when no pledge exists yet
func (s *Seeder) Run(ctx context.Context) error {
	for _, u := range demoUsers {
		if err := s.store.UpsertUser(u); err != nil {
			return err
		}
	}

	today := s.now()
	for _, c := range demoCampaigns {
		deadline := time.Date(today.Year(), today.Month(), today.Day()+c.days, 0, 0, 0, 0, time.Local)
		if _, err := s.EnsureCampaign(c.id, c.name, decimal.NewFromInt(c.goal), deadline, c.category); err != nil {
			return err
		}
	}
	for _, t := range demoTiers {
		if _, err := s.EnsureRewardTier(t.campaignID, t.name, decimal.NewFromInt(t.min), t.quota); err != nil {
			return err
		}
	}

	if s.store.PledgeCount() > 0 {
		s.logger.Debug().Msg("pledge history present, skipping demo pledges")
		return nil
	}
	return s.replayDemoPledges(ctx)
}

// EnsureCampaign creates the campaign unless one with id exists. It reports
// whether a campaign was created.
func (s *Seeder) EnsureCampaign(id, name string, goal decimal.Decimal, deadline time.Time, category string) (bool, error) {
	if !s.validator.ValidCampaignID(id) {
		return false, fmt.Errorf("invalid campaign id %q", id)
	}
	if !s.validator.PositiveGoal(goal) {
		return false, fmt.Errorf("campaign %s: goal must be positive", id)
	}
	if _, ok := s.store.GetCampaign(id); ok {
		return false, nil
	}
	err := s.store.UpsertCampaign(model.Campaign{
		ID:          id,
		Name:        name,
		Goal:        goal,
		RaisedTotal: decimal.Zero,
		Deadline:    deadline,
		Category:    category,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureRewardTier creates the tier unless (campaignID, name) exists
func (s *Seeder) EnsureRewardTier(campaignID, name string, minAmount decimal.Decimal, quota int) (bool, error) {
	if _, ok := s.store.GetRewardTier(campaignID, name); ok {
		return false, nil
	}
	err := s.store.UpsertRewardTier(model.RewardTier{
		CampaignID:     campaignID,
		Name:           name,
		MinAmount:      minAmount,
		RemainingQuota: quota,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) replayDemoPledges(ctx context.Context) error {
	session := auth.NewSession(s.store)
	var ok, rejected int
	for _, p := range demoPledges {
		if !session.Login(p.username, p.password) {
			return fmt.Errorf("demo user %s cannot log in", p.username)
		}
		res, err := s.pledger.CreatePledge(ctx, session, service.PledgeRequest{
			CampaignID: p.campaignID,
			Amount:     decimal.NewFromInt(p.amount),
			TierName:   p.tier,
		})
		if err != nil {
			return err
		}
		if res.OK {
			ok++
		} else {
			rejected++
		}
	}
	session.Logout()

	s.logger.Info().Int("success", ok).Int("rejected", rejected).Msg("recorded demo pledges")
	return nil
}
