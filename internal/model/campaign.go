package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk layout of campaign deadlines
const DateLayout = "2006-01-02"

// Campaign represents a funding campaign in the ledger
type Campaign struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Goal        decimal.Decimal `json:"goal"`
	RaisedTotal decimal.Decimal `json:"raised_total"`
	Deadline    time.Time       `json:"deadline"` // zero when unknown
	Category    string          `json:"category"`
}

// HasDeadline reports whether the campaign carries a parsed deadline
func (c Campaign) HasDeadline() bool {
	return !c.Deadline.IsZero()
}

// Progress returns raised/goal as a fraction, 0 when the goal is not positive
func (c Campaign) Progress() float64 {
	if !c.Goal.IsPositive() {
		return 0
	}
	f, _ := c.RaisedTotal.Div(c.Goal).Float64()
	return f
}

// RewardTier represents a pledge bracket of a campaign, keyed by (CampaignID, Name)
type RewardTier struct {
	CampaignID     string          `json:"campaign_id"`
	Name           string          `json:"name"`
	MinAmount      decimal.Decimal `json:"min_amount"`
	RemainingQuota int             `json:"remaining_quota"`
}

// HasQuota reports whether the tier can still be claimed
func (t RewardTier) HasQuota() bool {
	return t.RemainingQuota > 0
}

// TierKey is the composite key of a reward tier
type TierKey struct {
	CampaignID string
	Name       string
}

// Key returns the composite key of the tier
func (t RewardTier) Key() TierKey {
	return TierKey{CampaignID: t.CampaignID, Name: t.Name}
}
