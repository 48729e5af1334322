package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T, opts Options) *DB {
	t.Helper()
	db, err := Open(context.Background(), t.TempDir(), opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadRowsCreatesMissingFileWithHeader(t *testing.T) {
	db := openTestDB(t, Options{})

	rows, err := db.Campaigns.ReadRows()
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty table, got rows=%d", len(rows))
	}

	data, err := os.ReadFile(db.Campaigns.Path)
	if err != nil {
		t.Fatalf("expected file to be created: %v", err)
	}
	want := "campaignId,name,goal,deadline,category,raisedTotal\n"
	if string(data) != want {
		t.Fatalf("file content mismatch: got %q want %q", data, want)
	}
}

func TestReadRowsPadsShortRowsAndSkipsBlankLines(t *testing.T) {
	db := openTestDB(t, Options{})
	content := "projectId,tierName,minAmount,quota\n" +
		"10000001,Supporter,200,500\n" +
		"\n" +
		"10000001,Starter Kit\n"
	if err := os.WriteFile(db.RewardTiers.Path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rows, err := db.RewardTiers.ReadRows()
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Padded != 0 {
		t.Fatalf("first row should not be padded")
	}
	if rows[1].Padded != 2 || len(rows[1].Fields) != 4 {
		t.Fatalf("second row should be padded to 4 fields, got %#v", rows[1])
	}
	if rows[1].Fields[2] != "" || rows[1].Fields[3] != "" {
		t.Fatalf("padding should be empty strings, got %#v", rows[1].Fields)
	}
	if rows[1].Line != 4 {
		t.Fatalf("line number mismatch: got %d want 4", rows[1].Line)
	}
}

func TestWriteRowsQuotesDelimiters(t *testing.T) {
	db := openTestDB(t, Options{})
	records := [][]string{{"U001", "alice", "Alice, the first", "secret"}}
	if err := db.Users.WriteRows(records); err != nil {
		t.Fatalf("WriteRows returned error: %v", err)
	}

	rows, err := db.Users.ReadRows()
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Fields[2] != "Alice, the first" {
		t.Fatalf("display name did not survive round trip: %#v", rows)
	}
}

func TestWriteRowsLegacyEscaping(t *testing.T) {
	db := openTestDB(t, Options{LegacyEscaping: true})
	records := [][]string{{"U001", "alice", "Alice, the first", "secret"}}
	if err := db.Users.WriteRows(records); err != nil {
		t.Fatalf("WriteRows returned error: %v", err)
	}

	data, err := os.ReadFile(db.Users.Path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	want := "userId,username,displayName,credential\nU001,alice,Alice  the first,secret\n"
	if string(data) != want {
		t.Fatalf("legacy content mismatch: got %q want %q", data, want)
	}
}

func TestWriteRowsLeavesNoTempFiles(t *testing.T) {
	db := openTestDB(t, Options{})
	for i := 0; i < 3; i++ {
		if err := db.Pledges.WriteRows([][]string{{"P001", "U001", "10000001", "10", "", "SUCCESS", "2026-01-01T10:00:00"}}); err != nil {
			t.Fatalf("WriteRows returned error: %v", err)
		}
	}
	entries, err := os.ReadDir(db.Dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestOpenCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	db, err := Open(context.Background(), dir, Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected directory to exist: %v", err)
	}
	if db.Pledges.Path != filepath.Join(dir, "pledges.csv") {
		t.Fatalf("unexpected pledges path %q", db.Pledges.Path)
	}
}

func TestOpenRequiresDirectory(t *testing.T) {
	if _, err := Open(context.Background(), "", Options{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestReadRowsUnbalancedQuoteOnlyAffectsItsLine(t *testing.T) {
	db := openTestDB(t, Options{})
	content := "campaignId,name,goal,deadline,category,raisedTotal\n" +
		"10000001,\"Best\" Farm,150000,2030-01-31,TECH,0\n" +
		"10000002,\"Open,50000,2030-01-31,ART,0\n" +
		"10000003,Community Clinic,200000,2030-02-01,HEALTH,0\n" +
		"10000004,\"Quoted, properly\",1000,2030-02-01,ART,0\r\n"
	if err := os.WriteFile(db.Campaigns.Path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rows, err := db.Campaigns.ReadRows()
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %#v", len(rows), rows)
	}
	tests := []struct {
		id      string
		name    string
		resplit bool
		line    int
	}{
		{"10000001", `"Best" Farm`, true, 2},
		{"10000002", `"Open`, true, 3},
		{"10000003", "Community Clinic", false, 4},
		{"10000004", "Quoted, properly", false, 5},
	}
	for i, tt := range tests {
		row := rows[i]
		if row.Fields[0] != tt.id || row.Fields[1] != tt.name || row.Resplit != tt.resplit || row.Line != tt.line {
			t.Fatalf("row %d mismatch: got %#v", i, row)
		}
		if len(row.Fields) != 6 || row.Padded != 0 {
			t.Fatalf("row %d should have 6 fields, got %#v", i, row.Fields)
		}
	}
}

func TestWriteRowsLegacyEscapingReplacesQuotes(t *testing.T) {
	db := openTestDB(t, Options{LegacyEscaping: true})
	records := [][]string{
		{"10000001", `"Quoted" Game`, "100", "2030-01-31", "ART", "0"},
		{"10000002", "Second", "200", "2030-01-31", "ART", "0"},
	}
	if err := db.Campaigns.WriteRows(records); err != nil {
		t.Fatalf("WriteRows returned error: %v", err)
	}

	rows, err := db.Campaigns.ReadRows()
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Fields[1] != "'Quoted' Game" || rows[0].Resplit {
		t.Fatalf("unexpected first row: %#v", rows[0])
	}
}

func TestWriteRowsKeepsRecordsOnOneLine(t *testing.T) {
	db := openTestDB(t, Options{})
	records := [][]string{
		{"U001", "alice", "Alice\nSecond line", "secret"},
		{"U002", "bob", `Bob "the" Builder`, "secret"},
	}
	if err := db.Users.WriteRows(records); err != nil {
		t.Fatalf("WriteRows returned error: %v", err)
	}

	rows, err := db.Users.ReadRows()
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Fields[2] != "Alice Second line" {
		t.Fatalf("line break should become a space, got %q", rows[0].Fields[2])
	}
	if rows[1].Fields[2] != `Bob "the" Builder` || rows[1].Resplit {
		t.Fatalf("quoted name did not survive round trip: %#v", rows[1])
	}
}
