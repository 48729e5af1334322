package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kkkkikiki/crowdfund/internal/model"
)

type memStore struct {
	Store
	campaigns []model.Campaign
}

func (m memStore) ListCampaigns() []model.Campaign {
	return append([]model.Campaign(nil), m.campaigns...)
}

func ids(cs []model.Campaign) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func queryFixture() *PledgeService {
	d := func(m time.Month, day int) time.Time { return time.Date(2030, m, day, 0, 0, 0, 0, time.UTC) }
	return NewPledgeService(memStore{campaigns: []model.Campaign{
		{ID: "10000001", Name: "Smart Hydro Farm", Category: "TECH", Deadline: d(time.March, 1), RaisedTotal: dec("4200")},
		{ID: "10000002", Name: "Indie Board Game", Category: "ART", Deadline: d(time.February, 1), RaisedTotal: dec("1800")},
		{ID: "10000003", Name: "Community Clinic", Category: "HEALTH", RaisedTotal: dec("3700")},
		{ID: "10000007", Name: "Open Source IDE", Category: "Tech Tools", Deadline: d(time.January, 15), RaisedTotal: dec("3000")},
		{ID: "legacy", Name: "Farm Stand", Category: "FOOD", Deadline: d(time.April, 1), RaisedTotal: dec("0")},
	}}, zerolog.Nop())
}

func TestListCampaignsOrdering(t *testing.T) {
	svc := queryFixture()
	tests := []struct {
		name string
		sort SortMode
		want []string
	}{
		{"newest by numeric id, unparsable last", SortNewest, []string{"10000007", "10000003", "10000002", "10000001", "legacy"}},
		{"closing soon, no deadline last", SortClosingSoon, []string{"10000007", "10000002", "10000001", "legacy", "10000003"}},
		{"top funded", SortTopFunded, []string{"10000001", "10000003", "10000007", "10000002", "legacy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(svc.ListCampaigns(CampaignQuery{Sort: tt.sort}))
			if !equalIDs(got, tt.want) {
				t.Fatalf("order mismatch: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestListCampaignsFilters(t *testing.T) {
	svc := queryFixture()
	tests := []struct {
		name  string
		query CampaignQuery
		want  []string
	}{
		{"category is case-insensitive substring", CampaignQuery{Sort: SortNewest, Category: " tech "}, []string{"10000007", "10000001"}},
		{"keyword matches name", CampaignQuery{Sort: SortNewest, Keyword: "FARM"}, []string{"10000001", "legacy"}},
		{"both filters", CampaignQuery{Sort: SortNewest, Category: "food", Keyword: "farm"}, []string{"legacy"}},
		{"no match", CampaignQuery{Sort: SortNewest, Keyword: "rocket"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(svc.ListCampaigns(tt.query))
			if !equalIDs(got, tt.want) {
				t.Fatalf("filter mismatch: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestSortModeString(t *testing.T) {
	if SortClosingSoon.String() != "closing_soon" || SortMode(42).String() != "unknown" {
		t.Fatalf("unexpected SortMode strings")
	}
}
