package repository

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/model"
)

// AddPledge records p whatever its outcome. A successful pledge also adds
// its amount to the campaign's raised total and, when it names a tier,
// consumes one unit of that tier's quota (never below zero). The pledges
// file is always rewritten; campaigns and tiers only when they changed.
//
// The whole operation holds the write lock, so readers observe either none
// or all of its effects. If persisting fails, in-memory state is rolled back
// and an ErrStorage error is returned.
func (r *Repository) AddPledge(p model.Pledge) error {
	if p.ID == "" {
		return fmt.Errorf("failed to add pledge: %w", ErrInvalidKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pledges[p.ID]; exists {
		return fmt.Errorf("failed to add pledge %s: %w", p.ID, ErrDuplicatePledge)
	}

	r.pledges[p.ID] = p
	r.pledgeOrder = append(r.pledgeOrder, p.ID)

	var (
		prevCampaign  model.Campaign
		campaignTouch bool
		prevTier      model.RewardTier
		tierTouch     bool
	)
	if p.Succeeded() {
		if c, ok := r.campaigns[p.CampaignID]; ok {
			prevCampaign, campaignTouch = c, true
			c.RaisedTotal = c.RaisedTotal.Add(p.Amount)
			r.campaigns[c.ID] = c
		}
		if p.HasTier() {
			key := model.TierKey{CampaignID: p.CampaignID, Name: p.TierName}
			if t, ok := r.tiers[key]; ok {
				prevTier, tierTouch = t, true
				if t.RemainingQuota > 0 {
					t.RemainingQuota--
				}
				r.tiers[key] = t
			}
		}
	}

	rollback := func() {
		delete(r.pledges, p.ID)
		r.pledgeOrder = r.pledgeOrder[:len(r.pledgeOrder)-1]
		if campaignTouch {
			r.campaigns[prevCampaign.ID] = prevCampaign
		}
		if tierTouch {
			r.tiers[prevTier.Key()] = prevTier
		}
	}

	// The pledge is written first: it is the audit record for any aggregate change.
	if err := r.savePledges(); err != nil {
		rollback()
		return fmt.Errorf("failed to add pledge %s: %w", p.ID, err)
	}
	if p.Succeeded() {
		err := r.saveCampaigns()
		if err == nil {
			err = r.saveRewardTiers()
		}
		if err != nil {
			rollback()
			r.restoreAfterFailedWrite()
			return fmt.Errorf("failed to add pledge %s: %w", p.ID, err)
		}
	}
	return nil
}

// restoreAfterFailedWrite tries to bring the files back in line with the
// rolled-back in-memory state. Errors are only logged: the caller already
// reports the original failure.
func (r *Repository) restoreAfterFailedWrite() {
	for _, save := range []func() error{r.savePledges, r.saveCampaigns, r.saveRewardTiers} {
		if err := save(); err != nil {
			r.logger.Error().Err(err).Msg("failed to restore storage after aborted pledge")
		}
	}
}

// ListPledges returns every pledge in recording order
func (r *Repository) ListPledges() []model.Pledge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Pledge, 0, len(r.pledgeOrder))
	for _, id := range r.pledgeOrder {
		out = append(out, r.pledges[id])
	}
	return out
}

// PledgeCount returns the number of recorded pledges
func (r *Repository) PledgeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pledgeOrder)
}

// HasPledge reports whether a pledge with id is recorded
func (r *Repository) HasPledge(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pledges[id]
	return ok
}

// CountPledgesByOutcome counts recorded pledges with the given outcome
func (r *Repository) CountPledgesByOutcome(outcome model.Outcome) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.pledges {
		if p.Outcome == outcome {
			n++
		}
	}
	return n
}

// Drift describes a campaign whose stored raised total differs from the sum
// of its successful pledges
type Drift struct {
	CampaignID string
	Stored     decimal.Decimal
	Pledged    decimal.Decimal
}

// Verify compares each campaign's stored raised total with the sum of its
// successful pledges. Stored totals are authoritative and are never
// recomputed from history, so drift is only reported.
func (r *Repository) Verify() []Drift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sums := make(map[string]decimal.Decimal, len(r.campaigns))
	for _, p := range r.pledges {
		if p.Succeeded() {
			sums[p.CampaignID] = sums[p.CampaignID].Add(p.Amount)
		}
	}

	var drift []Drift
	for _, id := range r.campaignOrder {
		c := r.campaigns[id]
		if !c.RaisedTotal.Equal(sums[id]) {
			drift = append(drift, Drift{CampaignID: id, Stored: c.RaisedTotal, Pledged: sums[id]})
		}
	}
	return drift
}

// SuccessfulClaims counts successful pledges that named the given tier
func (r *Repository) SuccessfulClaims(campaignID, tierName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.pledges {
		if p.Succeeded() && p.CampaignID == campaignID && p.TierName == tierName {
			n++
		}
	}
	return n
}

func (r *Repository) loadPledge(row database.Row, fr *FileReport) {
	p := decodePledge(fieldDecoder{row: row, fr: fr})
	if p.ID == "" {
		fr.Skipped++
		fr.notice(fmt.Sprintf("line %d: pledge without id", row.Line))
		return
	}
	if _, ok := r.pledges[p.ID]; ok {
		fr.Skipped++
		fr.notice(fmt.Sprintf("line %d: duplicate pledge id %s ignored", row.Line, p.ID))
		return
	}
	r.pledges[p.ID] = p
	r.pledgeOrder = append(r.pledgeOrder, p.ID)
}
