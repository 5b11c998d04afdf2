package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/common"
	"github.com/ternarybob/logrange/internal/engine"
	"github.com/ternarybob/logrange/internal/events"
	"github.com/ternarybob/logrange/internal/handlers"
	"github.com/ternarybob/logrange/internal/ledger"
	"github.com/ternarybob/logrange/internal/scheduler"
)

// App wires together every long-lived component the HTTP server needs:
// the frozen query engine, the ingestion ledger, the event bus, and the
// HTTP handlers bound to all of them. Construction happens once, in
// order, in New; nothing here is mutated afterward except through the
// ledger and scheduler's own internal state.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Engine      *engine.Engine
	LoadSummary *engine.LoadSummary
	Ledger      *ledger.Store
	Events      *events.Service
	Scheduler   *scheduler.Scheduler

	QueryHandler  *handlers.QueryHandler
	HealthHandler *handlers.HealthHandler
	WSHandler     *handlers.WebSocketHandler
}

// New performs the full startup sequence: open the ledger, load the log
// file into a frozen Engine (recording malformed lines as it goes),
// publish one IngestComplete event, then build the HTTP handlers bound to
// the result. No IngestProgress events are published during the load. The returned App's Engine is safe to share across any number
// of concurrent request-serving goroutines from the moment New returns -
// that return is the publication barrier described in the engine's
// concurrency model.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Events: events.NewService(logger),
	}

	store, err := ledger.Open(logger, cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	a.Ledger = store

	loadID := common.NewLoadID()

	f, err := os.Open(cfg.Ingest.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", cfg.Ingest.LogPath, err)
	}
	defer f.Close()

	eng, summary, err := engine.Load(f, engine.WithMalformedSink(func(rec engine.MalformedLineRecord) {
		if err := store.RecordMalformed(context.Background(), loadID, rec); err != nil {
			logger.Warn().Err(err).Int("line", rec.LineNumber).Msg("failed to record malformed line in ledger")
		}
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to load query log: %w", err)
	}
	a.Engine = eng
	a.LoadSummary = summary

	if err := store.SaveLoadSummary(loadID, *summary); err != nil {
		logger.Warn().Err(err).Msg("failed to persist load summary to ledger")
	}

	a.WSHandler = handlers.NewWebSocketHandler(a.Events, logger)
	a.Events.Publish(context.Background(), events.Event{Type: events.IngestComplete, Payload: summary})

	logger.Info().
		Int("total_lines", summary.TotalLines).
		Int("ingested_lines", summary.IngestedLines).
		Int("malformed_lines", summary.MalformedLines).
		Int("distinct_timestamps", summary.DistinctTimestamps).
		Int("distinct_queries", summary.DistinctQueries).
		Dur("build_duration", summary.BuildDuration).
		Msg("query log ingested")

	a.QueryHandler = handlers.NewQueryHandler(a.Engine, logger)
	a.HealthHandler = handlers.NewHealthHandler()
	a.HealthHandler.MarkReady()

	a.Scheduler = scheduler.New(store, logger)
	if err := a.Scheduler.Start(cfg.Scheduler); err != nil {
		logger.Warn().Err(err).Msg("failed to start ledger GC scheduler")
	}

	return a, nil
}

// Close releases the ledger's database handle and stops the scheduler.
// The Engine itself owns no closable resources - it is plain in-memory
// state, consistent with the Non-goal against persisting the index.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Ledger != nil {
		return a.Ledger.Close()
	}
	return nil
}
