package repository

import (
	"fmt"

	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/model"
)

// UpsertCampaign inserts c, or replaces the campaign with the same ID in
// place, then rewrites the campaigns file. Replacing is not an error;
// callers wanting create-if-absent must check GetCampaign first.
func (r *Repository) UpsertCampaign(c model.Campaign) error {
	if c.ID == "" {
		return fmt.Errorf("failed to upsert campaign: %w", ErrInvalidKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.campaigns[c.ID]
	r.campaigns[c.ID] = c
	if !existed {
		r.campaignOrder = append(r.campaignOrder, c.ID)
	}

	if err := r.saveCampaigns(); err != nil {
		if existed {
			r.campaigns[c.ID] = prev
		} else {
			delete(r.campaigns, c.ID)
			r.campaignOrder = r.campaignOrder[:len(r.campaignOrder)-1]
		}
		return fmt.Errorf("failed to upsert campaign %s: %w", c.ID, err)
	}
	return nil
}

// GetCampaign retrieves a campaign by ID
func (r *Repository) GetCampaign(id string) (model.Campaign, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	return c, ok
}

// ListCampaigns returns every campaign in insertion order
func (r *Repository) ListCampaigns() []model.Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Campaign, 0, len(r.campaignOrder))
	for _, id := range r.campaignOrder {
		out = append(out, r.campaigns[id])
	}
	return out
}

func (r *Repository) loadCampaign(row database.Row, fr *FileReport) {
	c := decodeCampaign(fieldDecoder{row: row, fr: fr})
	if c.ID == "" {
		fr.Skipped++
		fr.notice(fmt.Sprintf("line %d: campaign without id", row.Line))
		return
	}
	if _, ok := r.campaigns[c.ID]; !ok {
		r.campaignOrder = append(r.campaignOrder, c.ID)
	}
	r.campaigns[c.ID] = c
}
