package seed

import "github.com/kkkkikiki/crowdfund/internal/model"

var demoUsers = []model.User{
	{ID: "U001", Username: "alice", DisplayName: "Alice", Credential: "alice123"},
	{ID: "U002", Username: "bob", DisplayName: "Bob", Credential: "bob123"},
	{ID: "U003", Username: "charlie", DisplayName: "Charlie", Credential: "charlie123"},
	{ID: "U004", Username: "diana", DisplayName: "Diana", Credential: "diana123"},
	{ID: "U005", Username: "eric", DisplayName: "Eric", Credential: "eric123"},
	{ID: "U006", Username: "fiona", DisplayName: "Fiona", Credential: "fiona123"},
	{ID: "U007", Username: "george", DisplayName: "George", Credential: "george123"},
	{ID: "U008", Username: "helen", DisplayName: "Helen", Credential: "helen123"},
	{ID: "U009", Username: "ivan", DisplayName: "Ivan", Credential: "ivan123"},
	{ID: "U010", Username: "jane", DisplayName: "Jane", Credential: "jane123"},
}

var demoCampaigns = []struct {
	id       string
	name     string
	goal     int64
	days     int // deadline offset from today
	category string
}{
	{"10000001", "Smart Hydro Farm", 150000, 30, "TECH"},
	{"10000002", "Indie Board Game", 50000, 25, "ART"},
	{"10000003", "Community Clinic", 200000, 45, "HEALTH"},
	{"10000004", "After-School Program", 80000, 40, "EDUCATION"},
	{"10000005", "Green City Trees", 120000, 35, "ENV"},
	{"10000006", "Street Food Festival", 60000, 20, "FOOD"},
	{"10000007", "Open Source IDE", 180000, 55, "TECH"},
	{"10000008", "Local Band Album", 70000, 28, "MUSIC"},
}

var demoTiers = []struct {
	campaignID string
	name       string
	min        int64
	quota      int
}{
	{"10000001", "Supporter", 200, 500},
	{"10000001", "Starter Kit", 1000, 50},
	{"10000001", "Pro Kit", 3000, 10},
	{"10000002", "Early Bird", 300, 100},
	{"10000002", "Collector", 1200, 20},
	{"10000003", "Donor", 500, 400},
	{"10000003", "Sponsor", 3000, 40},
	{"10000004", "Backer", 250, 200},
	{"10000004", "Patron", 1500, 30},
	{"10000005", "Sapling", 300, 300},
	{"10000005", "Groves", 2000, 25},
	{"10000006", "Taster", 150, 300},
	{"10000006", "VIP Pass", 900, 40},
	{"10000007", "Contributor", 400, 300},
	{"10000007", "Sponsor", 2500, 25},
	{"10000008", "Fan", 200, 300},
	{"10000008", "Producer", 1800, 20},
}

// demoPledges mixes accepted and rejected requests
var demoPledges = []struct {
	username   string
	password   string
	campaignID string
	amount     int64
	tier       string
}{
	{"alice", "alice123", "10000001", 1000, "Starter Kit"},
	{"alice", "alice123", "10000001", 100, "Supporter"}, // below minimum
	{"bob", "bob123", "10000002", 300, "Early Bird"},
	{"bob", "bob123", "10000002", 200, "Early Bird"}, // below minimum
	{"charlie", "charlie123", "10000003", 700, ""},
	{"diana", "diana123", "10000004", 100, "Backer"}, // below minimum
	{"eric", "eric123", "10000005", 2200, "Groves"},
	{"fiona", "fiona123", "10000006", 900, "VIP Pass"},
	{"george", "george123", "10000007", 500, "Contributor"},
	{"helen", "helen123", "10000008", 1800, "Producer"},
	{"ivan", "ivan123", "10000001", 200, "Supporter"},
	{"jane", "jane123", "10000002", 1200, "Collector"},
	{"alice", "alice123", "10000007", 2500, "Sponsor"},
	{"bob", "bob123", "10000008", 200, "Fan"},
	{"charlie", "charlie123", "10000005", 300, "Sapling"},
	{"diana", "diana123", "10000006", 150, "Taster"},
	{"eric", "eric123", "10000003", 3000, "Sponsor"},
	{"fiona", "fiona123", "10000004", 250, "Backer"},
	{"george", "george123", "10000002", 300, "Early Bird"},
	{"helen", "helen123", "10000001", 3000, "Pro Kit"},
}
