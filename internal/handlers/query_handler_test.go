package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/engine"
)

const fixtureLog = "2015-08-01 00:03:44\tfoo\n" +
	"2015-08-01 00:03:44\tbar\n" +
	"2015-08-01 00:04:00\tfoo\n" +
	"2015-08-02 10:15:00\tbaz\n" +
	"2015-08-02 10:15:00\tfoo\n" +
	"2015-08-02 11:00:00\tfoo\n"

func buildFixtureHandler(t *testing.T) *QueryHandler {
	t.Helper()
	e, _, err := engine.Load(strings.NewReader(fixtureLog))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return NewQueryHandler(e, arbor.NewLogger())
}

func TestCountHandler(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/count/2015-08", nil)
	rec := httptest.NewRecorder()
	h.CountHandler(rec, req, "2015-08")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body countResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 6 {
		t.Fatalf("count = %d, want 6", body.Count)
	}
}

func TestCountHandlerDistinct(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/count/2015-08?distinct", nil)
	rec := httptest.NewRecorder()
	h.CountHandler(rec, req, "2015-08")

	var body countResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 3 {
		t.Fatalf("distinct count = %d, want 3", body.Count)
	}
}

func TestCountHandlerParseFailure(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/count/2015-13", nil)
	rec := httptest.NewRecorder()
	h.CountHandler(rec, req, "2015-13")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCountHandlerEmptyRangeIsZeroNotError(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/count/2014", nil)
	rec := httptest.NewRecorder()
	h.CountHandler(rec, req, "2014")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body countResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 0 {
		t.Fatalf("count = %d, want 0", body.Count)
	}
}

func TestPopularHandler(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/popular/2015-08?size=2", nil)
	rec := httptest.NewRecorder()
	h.PopularHandler(rec, req, "2015-08")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body popularResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Queries) != 2 {
		t.Fatalf("got %d queries, want 2", len(body.Queries))
	}
	if body.Queries[0].Query != "foo" || body.Queries[0].Count != 4 {
		t.Fatalf("top query = %+v, want foo/4", body.Queries[0])
	}
	second := body.Queries[1].Query
	if second != "bar" && second != "baz" {
		t.Fatalf("rank-2 query = %q, want bar or baz", second)
	}
}

func TestPopularHandlerDefaultSize(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/popular/2015-08", nil)
	rec := httptest.NewRecorder()
	h.PopularHandler(rec, req, "2015-08")

	var body popularResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Queries) != 3 {
		t.Fatalf("got %d queries, want 3 (all distinct queries in range)", len(body.Queries))
	}
}

func TestExportHandlerIncludesEpochMinutes(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/1/queries/export/2015-08-02?size=1", nil)
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, req, "2015-08-02")

	var body exportResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.FromMinute == 0 || body.ToMinute == 0 {
		t.Fatalf("expected non-zero epoch minutes, got %+v", body)
	}
	if len(body.Queries) != 1 || body.Queries[0].Query != "foo" {
		t.Fatalf("queries = %+v, want [{foo 2}]", body.Queries)
	}
}

func TestUsageHandler(t *testing.T) {
	h := buildFixtureHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.UsageHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "logrange") {
		t.Fatalf("usage body missing product name: %q", rec.Body.String())
	}
}
