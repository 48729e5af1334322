package repository

import (
	"fmt"

	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/model"
)

// UpsertRewardTier inserts t, or replaces the tier with the same
// (CampaignID, Name) in place, then rewrites the reward tiers file
func (r *Repository) UpsertRewardTier(t model.RewardTier) error {
	if t.CampaignID == "" || t.Name == "" {
		return fmt.Errorf("failed to upsert reward tier: %w", ErrInvalidKey)
	}
	if t.RemainingQuota < 0 {
		t.RemainingQuota = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := t.Key()
	prev, existed := r.tiers[key]
	r.tiers[key] = t
	if !existed {
		r.tierOrder = append(r.tierOrder, key)
	}

	if err := r.saveRewardTiers(); err != nil {
		if existed {
			r.tiers[key] = prev
		} else {
			delete(r.tiers, key)
			r.tierOrder = r.tierOrder[:len(r.tierOrder)-1]
		}
		return fmt.Errorf("failed to upsert reward tier %s/%s: %w", t.CampaignID, t.Name, err)
	}
	return nil
}

// GetRewardTier retrieves a tier by its composite key
func (r *Repository) GetRewardTier(campaignID, tierName string) (model.RewardTier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tiers[model.TierKey{CampaignID: campaignID, Name: tierName}]
	return t, ok
}

// ListRewardTiers returns the tiers of a campaign in insertion order
func (r *Repository) ListRewardTiers(campaignID string) []model.RewardTier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.RewardTier
	for _, key := range r.tierOrder {
		if key.CampaignID == campaignID {
			out = append(out, r.tiers[key])
		}
	}
	return out
}

func (r *Repository) loadRewardTier(row database.Row, fr *FileReport) {
	t := decodeRewardTier(fieldDecoder{row: row, fr: fr})
	if t.CampaignID == "" || t.Name == "" {
		fr.Skipped++
		fr.notice(fmt.Sprintf("line %d: reward tier without campaign id or name", row.Line))
		return
	}
	key := t.Key()
	if _, ok := r.tiers[key]; !ok {
		r.tierOrder = append(r.tierOrder, key)
	}
	r.tiers[key] = t
}
