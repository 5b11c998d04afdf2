package engine

import (
	"strings"
	"testing"
)

const sampleLog = "2026-07-01 10:00:00\tgolang tutorial\n" +
	"2026-07-01 10:00:00\tgolang tutorial\n" +
	"2026-07-01 10:05:00\trust vs go\n" +
	"2026-07-02 09:00:00\tgolang tutorial\n" +
	"2026-07-02 09:00:00\tsegment tree\n" +
	"2026-07-03 23:59:00\trange tree\n" +
	"malformed line with no tab\n" +
	"2026-07-04 08:00:00\tgolang tutorial\n"

func buildTestEngine(t *testing.T) (*Engine, *LoadSummary) {
	t.Helper()
	e, summary, err := Load(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return e, summary
}

func TestLoadSummary(t *testing.T) {
	_, summary := buildTestEngine(t)

	if summary.TotalLines != 8 {
		t.Fatalf("TotalLines = %d, want 8", summary.TotalLines)
	}
	if summary.IngestedLines != 7 {
		t.Fatalf("IngestedLines = %d, want 7", summary.IngestedLines)
	}
	if summary.MalformedLines != 1 {
		t.Fatalf("MalformedLines = %d, want 1", summary.MalformedLines)
	}
	if summary.DistinctTimestamps != 5 {
		t.Fatalf("DistinctTimestamps = %d, want 5", summary.DistinctTimestamps)
	}
	if summary.DistinctQueries != 4 {
		t.Fatalf("DistinctQueries = %d, want 4", summary.DistinctQueries)
	}
}

func TestLoadMalformedSink(t *testing.T) {
	var captured []MalformedLineRecord
	_, _, err := Load(strings.NewReader(sampleLog), WithMalformedSink(func(r MalformedLineRecord) {
		captured = append(captured, r)
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(captured) != 1 {
		t.Fatalf("got %d malformed records, want 1", len(captured))
	}
	if captured[0].LineNumber != 7 {
		t.Fatalf("LineNumber = %d, want 7", captured[0].LineNumber)
	}
}

func TestEngineCount(t *testing.T) {
	e, _ := buildTestEngine(t)

	from, to, err := ParseTimeRange("2026-07-01")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := e.Count(from, to); got != 3 {
		t.Fatalf("Count(2026-07-01) = %d, want 3", got)
	}

	from, to, err = ParseTimeRange("2026-07")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := e.Count(from, to); got != 7 {
		t.Fatalf("Count(2026-07) = %d, want 7", got)
	}

	from, to, err = ParseTimeRange("2026-06")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := e.Count(from, to); got != 0 {
		t.Fatalf("Count(2026-06) = %d, want 0 (no observations)", got)
	}
}

func TestEngineDistinctCount(t *testing.T) {
	e, _ := buildTestEngine(t)

	from, to, err := ParseTimeRange("2026-07")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := e.DistinctCount(from, to); got != 4 {
		t.Fatalf("DistinctCount(2026-07) = %d, want 4", got)
	}
}

func TestEngineTopK(t *testing.T) {
	e, _ := buildTestEngine(t)

	from, to, err := ParseTimeRange("2026-07")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	top := e.TopK(from, to, 2)
	if len(top) != 2 {
		t.Fatalf("got %d results, want 2", len(top))
	}
	if top[0].Text != "golang tutorial" || top[0].Count != 4 {
		t.Fatalf("top[0] = %+v, want golang tutorial with count 4", top[0])
	}
}

func TestEngineTopKZero(t *testing.T) {
	e, _ := buildTestEngine(t)
	from, to, _ := ParseTimeRange("2026-07")
	if got := e.TopK(from, to, 0); got != nil {
		t.Fatalf("TopK with k=0 = %+v, want nil", got)
	}
}

func TestEngineEmptyRangeIsTotal(t *testing.T) {
	e, _ := buildTestEngine(t)
	from, to, err := ParseTimeRange("1999")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := e.Count(from, to); got != 0 {
		t.Fatalf("Count(1999) = %d, want 0", got)
	}
	if got := e.DistinctCount(from, to); got != 0 {
		t.Fatalf("DistinctCount(1999) = %d, want 0", got)
	}
	if got := e.TopK(from, to, 5); got != nil {
		t.Fatalf("TopK(1999) = %+v, want nil", got)
	}
}
