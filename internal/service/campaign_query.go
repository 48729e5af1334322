package service

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kkkkikiki/crowdfund/internal/model"
)

// SortMode orders campaign listings
type SortMode int

const (
	// SortNewest orders by descending numeric campaign id
	SortNewest SortMode = iota
	// SortClosingSoon orders by soonest deadline, campaigns without one last
	SortClosingSoon
	// SortTopFunded orders by highest raised total
	SortTopFunded
)

func (m SortMode) String() string {
	switch m {
	case SortNewest:
		return "newest"
	case SortClosingSoon:
		return "closing_soon"
	case SortTopFunded:
		return "top_funded"
	}
	return "unknown"
}

// CampaignQuery filters and orders ListCampaigns. Empty filters match everything.
type CampaignQuery struct {
	Sort     SortMode
	Category string // case-insensitive substring of the category
	Keyword  string // case-insensitive substring of the name
}

// ListCampaigns returns the campaigns matching q in q.Sort order
func (s *PledgeService) ListCampaigns(q CampaignQuery) []model.Campaign {
	all := s.store.ListCampaigns()

	fold := cases.Fold()
	category := fold.String(strings.TrimSpace(q.Category))
	keyword := fold.String(strings.TrimSpace(q.Keyword))

	out := all[:0]
	for _, c := range all {
		if category != "" && !strings.Contains(fold.String(c.Category), category) {
			continue
		}
		if keyword != "" && !strings.Contains(fold.String(c.Name), keyword) {
			continue
		}
		out = append(out, c)
	}

	switch q.Sort {
	case SortClosingSoon:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if !a.HasDeadline() || !b.HasDeadline() {
				return a.HasDeadline() && !b.HasDeadline()
			}
			return a.Deadline.Before(b.Deadline)
		})
	case SortTopFunded:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RaisedTotal.GreaterThan(out[j].RaisedTotal)
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return numericID(out[i].ID) > numericID(out[j].ID)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ID < out[j].ID
		})
	}
	return out
}

// numericID parses a campaign id, treating unparsable ids as 0
func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
