package ledger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/logrange/internal/engine"
)

// malformedRecord is the badgerhold-persisted shape of one tolerated bad
// input line, keyed by loadID + line number so repeated loads don't
// collide.
type malformedRecord struct {
	Key        string `badgerholdKey:"Key"`
	LoadID     string `badgerhold:"index"`
	LineNumber int
	RawLine    string
	Reason     string
	ObservedAt int64
}

// RecordMalformed persists one malformed-line record under the given
// load id.
func (s *Store) RecordMalformed(ctx context.Context, loadID string, rec engine.MalformedLineRecord) error {
	key := fmt.Sprintf("%s:%d", loadID, rec.LineNumber)
	row := malformedRecord{
		Key:        key,
		LoadID:     loadID,
		LineNumber: rec.LineNumber,
		RawLine:    rec.RawLine,
		Reason:     rec.Reason,
		ObservedAt: rec.ObservedAt.Unix(),
	}
	if err := s.store.Upsert(key, row); err != nil {
		return fmt.Errorf("failed to record malformed line: %w", err)
	}
	return nil
}

// CountMalformed returns the number of malformed-line records persisted
// under loadID.
func (s *Store) CountMalformed(ctx context.Context, loadID string) (int, error) {
	n, err := s.store.Count(&malformedRecord{}, badgerhold.Where("LoadID").Eq(loadID))
	if err != nil {
		return 0, fmt.Errorf("failed to count malformed lines: %w", err)
	}
	return int(n), nil
}
