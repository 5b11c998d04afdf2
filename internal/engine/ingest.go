package engine

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// MalformedLineRecord describes one input line rejected during ingestion.
// Load collects these instead of aborting, so a single bad line never
// loses the rest of the file.
type MalformedLineRecord struct {
	LineNumber int
	RawLine    string
	Reason     string
	ObservedAt time.Time
}

// LoadSummary reports the outcome of a one-shot ingestion run.
type LoadSummary struct {
	TotalLines         int
	IngestedLines      int
	MalformedLines     int
	DistinctTimestamps int
	DistinctQueries    int
	BuildDuration      time.Duration
	LoadedAt           time.Time
}

// occurrence is a single (timestamp, interned query) pair read off one
// input line, buffered before the sort-and-group step.
type occurrence struct {
	at Minute
	id uint64
}

// loadResult holds everything the engine needs after ingestion: the
// sorted distinct timestamps, the per-timestamp query-id buckets, the
// intern table, and the derived counts used to build the trees.
type loadResult struct {
	dates     []Minute
	buckets   [][]uint64
	textOf    map[uint64]string
	countAt   []int
	malformed []MalformedLineRecord
	totalLines,
	ingestedLines int
}

// clockFunc is swappable so tests can pin ObservedAt; production callers
// never need to set it.
var clockFunc = time.Now

// load reads a tab-separated stream of "timestamp\tquery_text" lines,
// tolerating malformed lines by skipping and recording them rather than
// aborting the whole load. It performs steps 1-6 of the ingestion
// pipeline: parse, intern, buffer, sort by (timestamp, query id), group
// by timestamp, and materialize per-bucket counts.
func load(r io.Reader) (*loadResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	textOf := make(map[uint64]string)
	var occurrences []occurrence
	var malformed []MalformedLineRecord

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		ts, text, reason := parseLogLine(line)
		if reason != "" {
			malformed = append(malformed, MalformedLineRecord{
				LineNumber: lineNo,
				RawLine:    line,
				Reason:     reason,
				ObservedAt: clockFunc(),
			})
			continue
		}

		id := xxhash.Sum64String(text)
		if _, seen := textOf[id]; !seen {
			textOf[id] = text
		}
		occurrences = append(occurrences, occurrence{at: NewMinute(ts), id: id})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].at != occurrences[j].at {
			return occurrences[i].at < occurrences[j].at
		}
		return occurrences[i].id < occurrences[j].id
	})

	var dates []Minute
	var buckets [][]uint64
	for _, occ := range occurrences {
		if len(dates) == 0 || dates[len(dates)-1] != occ.at {
			dates = append(dates, occ.at)
			buckets = append(buckets, nil)
		}
		last := len(buckets) - 1
		buckets[last] = append(buckets[last], occ.id)
	}

	countAt := make([]int, len(buckets))
	for i, b := range buckets {
		countAt[i] = len(b)
	}

	return &loadResult{
		dates:         dates,
		buckets:       buckets,
		textOf:        textOf,
		countAt:       countAt,
		malformed:     malformed,
		totalLines:    lineNo,
		ingestedLines: len(occurrences),
	}, nil
}

// parseLogLine splits a line into its timestamp and query-text fields.
// reason is non-empty (and the other return values meaningless) when the
// line does not conform to the expected "timestamp\tquery_text" format.
func parseLogLine(line string) (ts time.Time, text string, reason string) {
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return time.Time{}, "", "wrong field count"
	}
	tsField, textField := line[:tab], line[tab+1:]
	if textField == "" || strings.IndexByte(textField, '\t') >= 0 {
		return time.Time{}, "", "wrong field count"
	}

	parsed, err := time.Parse("2006-01-02 15:04:05", tsField)
	if err != nil {
		return time.Time{}, "", "bad timestamp: " + err.Error()
	}
	return parsed.UTC(), textField, ""
}
