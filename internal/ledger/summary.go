package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ternarybob/logrange/internal/engine"
)

// summaryKeyPrefix namespaces load-summary keys in the raw Badger
// keyspace, distinct from badgerhold's own key encoding for
// malformedRecord.
const summaryKeyPrefix = "summary:"

// SaveLoadSummary persists the outcome of one ingestion run under loadID,
// using the raw *badger.DB handle rather than badgerhold's typed layer -
// a single JSON blob under one key needs none of badgerhold's indexing.
func (s *Store) SaveLoadSummary(loadID string, summary engine.LoadSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal load summary: %w", err)
	}
	return s.Badger().Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(summaryKeyPrefix+loadID), data)
	})
}

// LoadSummary reads back the load summary stored under loadID. ok is
// false if no summary has been recorded for that id.
func (s *Store) LoadSummary(loadID string) (summary engine.LoadSummary, ok bool, err error) {
	err = s.Badger().View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(summaryKeyPrefix + loadID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ok = true
			return json.Unmarshal(val, &summary)
		})
	})
	if err != nil {
		return engine.LoadSummary{}, false, fmt.Errorf("failed to read load summary: %w", err)
	}
	return summary, ok, nil
}
