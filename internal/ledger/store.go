package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/logrange/internal/common"
)

// Store is the ingestion ledger: a Badger-backed record of malformed
// input lines and the one-shot load summary. It never holds the query
// index itself (that stays purely in-memory per the engine's
// construction/serving split) - this store is operational diagnostics,
// populated once during ingestion and read-only thereafter.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open opens (creating if absent) the Badger database backing the
// ledger.
func Open(logger arbor.ILogger, cfg common.LedgerConfig) (*Store, error) {
	if cfg.ResetOnStartup {
		if _, err := os.Stat(cfg.Path); err == nil {
			logger.Debug().Str("path", cfg.Path).Msg("Deleting existing ledger database (reset_on_startup=true)")
			if err := os.RemoveAll(cfg.Path); err != nil {
				logger.Warn().Err(err).Str("path", cfg.Path).Msg("Failed to delete ledger directory")
			}
		}
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("Opening ledger database")

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("Ledger database initialized")

	return &Store{store: store, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Badger returns the raw *badger.DB handle, used for single-key
// read/write paths (the load summary, value-log GC) that don't warrant
// badgerhold's typed query layer.
func (s *Store) Badger() *badger.DB {
	return s.store.Badger()
}

// RunValueLogGC runs Badger's recommended periodic value-log compaction.
// discardRatio is the fraction of a value-log file that must be
// reclaimable for the file to be worth rewriting; Badger's own docs
// recommend 0.5. Returns badger.ErrNoRewrite (not a failure) when there
// was nothing to compact.
func (s *Store) RunValueLogGC(discardRatio float64) error {
	return s.Badger().RunValueLogGC(discardRatio)
}
