package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/dgraph-io/badger/v4"

	"github.com/ternarybob/logrange/internal/common"
)

// gc is the interface scheduler needs from ledger.Store, kept narrow so
// tests can swap in a fake rather than opening a real Badger database.
type gc interface {
	RunValueLogGC(discardRatio float64) error
}

// discardRatio is Badger's own recommended threshold for when a
// value-log file is worth rewriting during compaction.
const discardRatio = 0.5

// Scheduler runs the ledger's periodic Badger value-log garbage
// collection. It is the only recurring activity anywhere in the process
// - it touches only the ledger, never the immutable query index, so it
// is explicitly not a "streaming update" in the sense the engine's
// Non-goals exclude.
type Scheduler struct {
	cron   *cron.Cron
	store  gc
	logger arbor.ILogger
}

// New builds a Scheduler bound to store; it does not start running until
// Start is called.
func New(store gc, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		logger: logger,
	}
}

// Start registers the GC job under cfg.Schedule and begins running it in
// the background. A no-op (logged, not an error) when cfg.Enabled is
// false.
func (s *Scheduler) Start(cfg common.SchedulerConfig) error {
	if !cfg.Enabled {
		s.logger.Info().Msg("scheduler disabled, skipping ledger GC registration")
		return nil
	}

	_, err := s.cron.AddFunc(cfg.Schedule, s.runGC)
	if err != nil {
		return fmt.Errorf("failed to register ledger GC job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", cfg.Schedule).Msg("ledger GC scheduler started")
	return nil
}

// runGC performs one compaction pass. badger.ErrNoRewrite is expected
// whenever there is nothing worth compacting and is logged at debug
// rather than warn.
func (s *Scheduler) runGC() {
	if err := s.store.RunValueLogGC(discardRatio); err != nil {
		if err == badger.ErrNoRewrite {
			s.logger.Debug().Msg("ledger value-log GC: nothing to reclaim")
			return
		}
		s.logger.Warn().Err(err).Msg("ledger value-log GC failed")
		return
	}
	s.logger.Info().Msg("ledger value-log GC reclaimed space")
}

// Stop halts the cron scheduler, waiting for any in-flight job to
// finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
