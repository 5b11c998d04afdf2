package engine

import (
	"errors"
	"io"
	"time"
)

// ErrNoWellFormedLines is returned by Load when every line in the input
// was malformed, leaving nothing to index.
var ErrNoWellFormedLines = errors.New("no well-formed lines ingested")

// Engine is the immutable, concurrency-safe query-log index. It is built
// once from a log stream (Load) and thereafter answers count,
// distinct-count, and top-k queries from any number of goroutines with no
// synchronization beyond the shared pointer: construction and serving are
// strictly separated phases.
type Engine struct {
	dates     []Minute
	dateIndex map[Minute]int
	buckets   [][]uint64
	textOf    map[uint64]string
	rangeTree *RangeTree
	segTree   *SegmentTree[int]
}

// LoadOption customizes a Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	onMalformed func(MalformedLineRecord)
}

// WithMalformedSink registers a callback invoked once per malformed input
// line encountered during ingestion, in line order. It is the engine's
// only hook into the outside world: callers use it to persist a tally
// (e.g. into a ledger) without the engine itself knowing persistence
// exists.
func WithMalformedSink(fn func(MalformedLineRecord)) LoadOption {
	return func(o *loadOptions) { o.onMalformed = fn }
}

// Load performs the full one-shot ingestion pipeline (parse, intern,
// sort, group, build) and returns a ready-to-serve Engine plus a summary
// of the run. It is the only place state is mutated; the returned Engine
// is frozen from the moment Load returns.
func Load(r io.Reader, opts ...LoadOption) (*Engine, *LoadSummary, error) {
	cfg := loadOptions{}
	for _, opt := range opts {
		opt(&cfg)
	}

	started := clockFunc()
	result, err := load(r)
	if err != nil {
		return nil, nil, err
	}
	if result.totalLines > 0 && result.ingestedLines == 0 {
		return nil, nil, ErrNoWellFormedLines
	}

	if cfg.onMalformed != nil {
		for _, m := range result.malformed {
			cfg.onMalformed(m)
		}
	}

	dateIndex := make(map[Minute]int, len(result.dates))
	for i, d := range result.dates {
		dateIndex[d] = i
	}

	distinctQueries := len(result.textOf)

	e := &Engine{
		dates:     result.dates,
		dateIndex: dateIndex,
		buckets:   result.buckets,
		textOf:    result.textOf,
		rangeTree: NewRangeTree(result.dates),
		segTree:   NewSegmentTree[int](result.countAt, IntSum{}),
	}

	summary := &LoadSummary{
		TotalLines:         result.totalLines,
		IngestedLines:      result.ingestedLines,
		MalformedLines:     len(result.malformed),
		DistinctTimestamps: len(result.dates),
		DistinctQueries:    distinctQueries,
		BuildDuration:      clockFunc().Sub(started),
		LoadedAt:           clockFunc(),
	}

	return e, summary, nil
}

// observedSpan maps a requested [from, to] onto the bucket index range
// that actually holds observed timestamps. ok is false when no
// observation falls in [from, to].
func (e *Engine) observedSpan(from, to Minute) (lo, hi int, ok bool) {
	a, b, ok := e.rangeTree.LargestRange(from, to)
	if !ok {
		return 0, 0, false
	}
	return e.dateIndex[a], e.dateIndex[b], true
}

// Count returns the number of logged queries with timestamp in the
// inclusive interval [from, to].
func (e *Engine) Count(from, to Minute) int {
	lo, hi, ok := e.observedSpan(from, to)
	if !ok {
		return 0
	}
	return e.segTree.Query(lo, hi)
}

// DistinctCount returns the number of distinct queries logged in the
// inclusive interval [from, to].
func (e *Engine) DistinctCount(from, to Minute) int {
	lo, hi, ok := e.observedSpan(from, to)
	if !ok {
		return 0
	}
	seen := make(map[uint64]struct{})
	for d := lo; d <= hi; d++ {
		for _, id := range e.buckets[d] {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// TopK returns the k most frequent queries in the inclusive interval
// [from, to], ordered by descending count (ties broken by query id).
// Returns an empty slice when the interval has no observations or k is 0.
func (e *Engine) TopK(from, to Minute, k int) []CountedQuery {
	if k <= 0 {
		return nil
	}
	lo, hi, ok := e.observedSpan(from, to)
	if !ok {
		return nil
	}

	freq := make(map[uint64]int)
	for d := lo; d <= hi; d++ {
		for _, id := range e.buckets[d] {
			freq[id]++
		}
	}

	h := newTopKHeap(k)
	for id, count := range freq {
		h.Offer(CountedQuery{QueryID: id, Text: e.textOf[id], Count: count})
	}
	return h.Drain()
}

// NewMinuteAt is a convenience wrapper over NewMinute for callers that
// only have a time.Time in hand (e.g. HTTP handlers echoing "now").
func NewMinuteAt(t time.Time) Minute {
	return NewMinute(t)
}
