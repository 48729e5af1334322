// Package validation holds the stateless pledge and campaign predicates.
package validation

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/crowdfund/internal/model"
)

var campaignIDPattern = regexp.MustCompile(`^[1-9][0-9]{7}$`)

// Validator evaluates the ledger rules. The zero value uses time.Now.
type Validator struct {
	Now func() time.Time
}

// NewValidator creates a validator bound to the given clock
func NewValidator(now func() time.Time) *Validator {
	return &Validator{Now: now}
}

func (v *Validator) today() time.Time {
	now := time.Now
	if v != nil && v.Now != nil {
		now = v.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidCampaignID reports whether id is exactly 8 digits with a non-zero lead
func (v *Validator) ValidCampaignID(id string) bool {
	return campaignIDPattern.MatchString(id)
}

// PositiveGoal reports whether goal > 0
func (v *Validator) PositiveGoal(goal decimal.Decimal) bool {
	return goal.IsPositive()
}

// IsFutureDeadline reports whether deadline falls strictly after today.
// A campaign whose deadline is today is closed; a missing deadline is closed.
func (v *Validator) IsFutureDeadline(deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	d := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	return d.After(v.today())
}

// MeetsMinAmount reports whether amount satisfies tier's minimum. Without a
// tier any positive amount is enough.
func (v *Validator) MeetsMinAmount(amount decimal.Decimal, tier *model.RewardTier) bool {
	if tier == nil {
		return amount.IsPositive()
	}
	return amount.GreaterThanOrEqual(tier.MinAmount)
}

// HasQuota reports whether tier is absent or still has remaining quota
func (v *Validator) HasQuota(tier *model.RewardTier) bool {
	return tier == nil || tier.HasQuota()
}
