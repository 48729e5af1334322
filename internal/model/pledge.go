package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the final state of a pledge request
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeRejected Outcome = "REJECTED"
)

// ParseOutcome maps the persisted outcome token. The legacy token REJECT is
// accepted as REJECTED.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case string(OutcomeSuccess):
		return OutcomeSuccess, nil
	case string(OutcomeRejected), "REJECT":
		return OutcomeRejected, nil
	}
	return "", fmt.Errorf("unknown pledge outcome %q", s)
}

// AnonymousUserID is recorded as the user of pledges made without a session
const AnonymousUserID = "-"

// Pledge is an immutable record of one pledge request
type Pledge struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	CampaignID string          `json:"campaign_id"`
	Amount     decimal.Decimal `json:"amount"`
	TierName   string          `json:"tier_name,omitempty"` // empty when no tier was chosen
	Outcome    Outcome         `json:"outcome"`
	CreatedAt  time.Time       `json:"created_at"`
}

// HasTier reports whether the pledge names a reward tier
func (p Pledge) HasTier() bool {
	return p.TierName != ""
}

// Succeeded reports whether the pledge was accepted
func (p Pledge) Succeeded() bool {
	return p.Outcome == OutcomeSuccess
}
