package events

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
)

// Type names one kind of progress event broadcast during the
// construction phase. The engine itself never publishes these - that
// would leak async behavior into a synchronous component - so they are
// emitted by the loader that drives engine.Load from the ingest side.
type Type string

const (
	// IngestProgress names a running line-count event carrying
	// *ProgressPayload. The websocket handler subscribes to it, but no
	// code in this repository publishes it: engine.Load has no progress
	// hook.
	IngestProgress Type = "ingest_progress"
	// IngestComplete fires exactly once, after construction finishes and
	// the engine handle is about to be published.
	IngestComplete Type = "ingest_complete"
)

// Event is one message on the bus. Payload's shape depends on Type:
// IngestProgress carries *ProgressPayload, IngestComplete carries
// *engine.LoadSummary (kept as interface{} here so this package does not
// import engine, avoiding a dependency cycle with callers that build the
// engine before wiring events).
type Event struct {
	Type    Type
	Payload interface{}
}

// ProgressPayload is the payload of an IngestProgress event.
type ProgressPayload struct {
	LinesRead int
}

// Handler processes one event. An error is logged, never retried -
// handlers run best-effort.
type Handler func(ctx context.Context, ev Event) error

// Service is a minimal in-process pub/sub bus. It exists purely to
// decouple the one-shot ingestion pass from the websocket handler that
// wants to narrate it; no component other than the HTTP layer's
// websocket handler subscribes, and the engine never does.
type Service struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
	logger      arbor.ILogger
}

// NewService constructs an empty bus.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		subscribers: make(map[Type][]Handler),
		logger:      logger,
	}
}

// Subscribe registers handler to run whenever an event of the given type
// is published. Subscriptions accumulate for the lifetime of the
// service; there is no Unsubscribe because nothing in this system ever
// needs to stop listening before the process exits.
func (s *Service) Subscribe(t Type, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[t] = append(s.subscribers[t], handler)
}

// Publish fans ev out to every handler registered for its type,
// fire-and-forget: each handler runs in its own goroutine so a slow or
// stuck websocket client can never stall ingestion.
func (s *Service) Publish(ctx context.Context, ev Event) {
	s.mu.RLock()
	handlers := append([]Handler(nil), s.subscribers[ev.Type]...)
	s.mu.RUnlock()

	for _, h := range handlers {
		go func(h Handler) {
			if err := h(ctx, ev); err != nil && s.logger != nil {
				s.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("event handler failed")
			}
		}(h)
	}
}
