package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/engine"
)

// defaultPopularSize is the "size" query-param default for the popular
// and export endpoints, matching the spec's documented default of 10.
const defaultPopularSize = 10

// usageText is served at GET /, mirroring the service's plain-text
// usage banner.
const usageText = `logrange - query-log range/top-k analytics

  GET /<version>/queries/count/<range>[?distinct]
  GET /<version>/queries/popular/<range>[?size=<n>]
  GET /<version>/queries/export/<range>[?size=<n>]
  GET /healthz

<range> follows the grammar YYYY[-MM[-DD[ hh[:mm]]]], percent-encoded.
`

// QueryHandler serves the engine's count/distinct-count/top-k operations
// over HTTP. It holds a read-only reference to the frozen Engine -
// published once at startup and never reassigned - so concurrent
// requests need no locking here either.
type QueryHandler struct {
	engine *engine.Engine
	logger arbor.ILogger
}

// NewQueryHandler binds a QueryHandler to e. e must already be fully
// constructed (engine.Load must have returned) before any handler method
// is reachable from the router.
func NewQueryHandler(e *engine.Engine, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{engine: e, logger: logger}
}

// rangeResponse renders [from,to] the way the external interface
// requires: "YYYY-MM-DD hh:mm:ss" strings.
type rangeResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newRangeResponse(from, to engine.Minute) rangeResponse {
	return rangeResponse{From: from.String(), To: to.String()}
}

// UsageHandler serves GET /.
func (h *QueryHandler) UsageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(usageText))
}

// countResponse is the JSON body of GET /{version}/queries/count/{range}.
type countResponse struct {
	rangeResponse
	Count int `json:"count"`
}

// CountHandler serves GET /{version}/queries/count/{range}[?distinct].
func (h *QueryHandler) CountHandler(w http.ResponseWriter, r *http.Request, rangeExpr string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from, to, err := engine.ParseTimeRange(rangeExpr)
	if err != nil {
		writeParseError(w, err)
		return
	}

	var count int
	if _, distinct := r.URL.Query()["distinct"]; distinct {
		count = h.engine.DistinctCount(from, to)
	} else {
		count = h.engine.Count(from, to)
	}

	writeJSON(w, http.StatusOK, countResponse{rangeResponse: newRangeResponse(from, to), Count: count})
}

// countedQueryJSON is one entry of the "queries" array in popular/export
// responses.
type countedQueryJSON struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// popularResponse is the JSON body of GET /{version}/queries/popular/{range}.
type popularResponse struct {
	rangeResponse
	Queries []countedQueryJSON `json:"queries"`
}

// PopularHandler serves GET /{version}/queries/popular/{range}[?size=n].
func (h *QueryHandler) PopularHandler(w http.ResponseWriter, r *http.Request, rangeExpr string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from, to, err := engine.ParseTimeRange(rangeExpr)
	if err != nil {
		writeParseError(w, err)
		return
	}

	size := parseSize(r, defaultPopularSize)
	top := h.engine.TopK(from, to, size)

	writeJSON(w, http.StatusOK, popularResponse{
		rangeResponse: newRangeResponse(from, to),
		Queries:       toCountedQueryJSON(top),
	})
}

// exportResponse extends popularResponse with Unix-epoch-minute
// timestamps alongside the formatted strings, for consumers that prefer
// numeric time (supplemented from the original source's JSON shape, not
// present in the distilled spec).
type exportResponse struct {
	rangeResponse
	FromMinute int64              `json:"from_minute"`
	ToMinute   int64              `json:"to_minute"`
	Queries    []countedQueryJSON `json:"queries"`
}

// ExportHandler serves GET /{version}/queries/export/{range}[?size=n].
func (h *QueryHandler) ExportHandler(w http.ResponseWriter, r *http.Request, rangeExpr string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from, to, err := engine.ParseTimeRange(rangeExpr)
	if err != nil {
		writeParseError(w, err)
		return
	}

	size := parseSize(r, defaultPopularSize)
	top := h.engine.TopK(from, to, size)

	writeJSON(w, http.StatusOK, exportResponse{
		rangeResponse: newRangeResponse(from, to),
		FromMinute:    int64(from),
		ToMinute:      int64(to),
		Queries:       toCountedQueryJSON(top),
	})
}

func toCountedQueryJSON(top []engine.CountedQuery) []countedQueryJSON {
	out := make([]countedQueryJSON, len(top))
	for i, c := range top {
		out[i] = countedQueryJSON{Query: c.Text, Count: c.Count}
	}
	return out
}

func parseSize(r *http.Request, def int) int {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeParseError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
