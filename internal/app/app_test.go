package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/common"
)

const fixtureLog = "2015-08-01 00:03:44\tfoo\n" +
	"2015-08-01 00:03:44\tbar\n" +
	"2015-08-01 00:04:00\tfoo\n" +
	"2015-08-02 10:15:00\tbaz\n" +
	"2015-08-02 10:15:00\tfoo\n" +
	"2015-08-02 11:00:00\tfoo\n" +
	"not a well-formed line\n"

func buildTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	logPath := filepath.Join(dir, "queries.tsv")
	if err := os.WriteFile(logPath, []byte(fixtureLog), 0644); err != nil {
		t.Fatalf("failed to write fixture log: %v", err)
	}

	cfg := common.NewDefaultConfig()
	cfg.Ingest.LogPath = logPath
	cfg.Ledger.Path = filepath.Join(dir, "ledger")
	cfg.Scheduler.Enabled = false

	a, err := New(cfg, arbor.NewLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewWiresEngineAndLedgerTogether(t *testing.T) {
	a := buildTestApp(t)

	if a.LoadSummary.TotalLines != 7 {
		t.Fatalf("TotalLines = %d, want 7", a.LoadSummary.TotalLines)
	}
	if a.LoadSummary.MalformedLines != 1 {
		t.Fatalf("MalformedLines = %d, want 1", a.LoadSummary.MalformedLines)
	}
	if a.Engine.Count(0, 1<<40) != 6 {
		t.Fatalf("engine did not ingest the 6 well-formed lines")
	}
}

func TestNewWiresAllHandlers(t *testing.T) {
	a := buildTestApp(t)

	if a.HealthHandler == nil {
		t.Fatal("HealthHandler not wired")
	}
	if a.WSHandler == nil {
		t.Fatal("WSHandler not wired")
	}
	if a.QueryHandler == nil {
		t.Fatal("QueryHandler not wired")
	}
}
