package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local diagnostic tool, not a public-facing surface
	},
}

// WSMessage is the envelope every frame is wrapped in before being sent
// to a connected client.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// LogEntry is one line surfaced to connected operators, either over the
// websocket stream or via GetRecentLogsHandler's polling fallback.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// WebSocketHandler forwards events from the shared events.Service to
// connected operators. It subscribes at construction time; the HTTP
// server only starts after the log has been loaded, so no client is
// connected while ingestion runs or when IngestComplete is broadcast.
// Nothing about it is specific to HTTP beyond the upgrade itself.
type WebSocketHandler struct {
	logger  arbor.ILogger
	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewWebSocketHandler builds a handler and subscribes it to bus for
// ingest-progress and ingest-complete events.
func NewWebSocketHandler(bus *events.Service, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}

	bus.Subscribe(events.IngestProgress, func(ctx context.Context, ev events.Event) error {
		h.broadcast(WSMessage{Type: "ingest_progress", Payload: ev.Payload})
		return nil
	})
	bus.Subscribe(events.IngestComplete, func(ctx context.Context, ev events.Event) error {
		h.broadcast(WSMessage{Type: "ingest_complete", Payload: ev.Payload})
		return nil
	})

	return h
}

// HandleWebSocket upgrades the connection and keeps it registered until
// the client disconnects. Reads are discarded; this endpoint is
// server-to-client only.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	h.logger.Debug().Int("clients", len(h.clients)).Msg("websocket client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		remaining := len(h.clients)
		h.mu.Unlock()
		conn.Close()
		h.logger.Debug().Int("clients", remaining).Msg("websocket client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// BroadcastLog pushes one LogEntry to every connected client. Nothing in
// this repository calls it, so log lines do not reach the socket;
// GetRecentLogsHandler serves them over plain HTTP.
func (h *WebSocketHandler) BroadcastLog(entry LogEntry) {
	h.broadcast(WSMessage{Type: "log", Payload: entry})
}

func (h *WebSocketHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for c, m := range h.clients {
		conns = append(conns, c)
		mutexes = append(mutexes, m)
	}
	h.mu.RUnlock()

	for i, conn := range conns {
		mutexes[i].Lock()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Msg("failed to write websocket message")
		}
		mutexes[i].Unlock()
	}
}

// GetRecentLogsHandler serves GET /logs/recent: a plain-HTTP polling
// fallback over the in-memory log writer's tail, for clients that don't
// want to hold a websocket open.
func (h *WebSocketHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	memWriter := arbor.GetRegisteredMemoryWriter(arbor.WRITER_MEMORY)
	logs := []LogEntry{}

	if memWriter != nil {
		lines, err := memWriter.GetEntriesWithLimit(100)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read memory log entries")
			http.Error(w, "failed to retrieve logs", http.StatusInternalServerError)
			return
		}
		for _, line := range lines {
			if entry, ok := parseLogLine(line); ok {
				logs = append(logs, entry)
			}
		}
	}

	writeJSON(w, http.StatusOK, logs)
}

// parseLogLine parses one arbor console-format line ("LEVEL | time |
// message fields") into a LogEntry. ok is false for lines that don't
// match the expected shape (never an error - they're simply skipped).
func parseLogLine(line string) (LogEntry, bool) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return LogEntry{}, false
	}

	levelStr := strings.TrimSpace(parts[0])
	dateTime := strings.TrimSpace(parts[1])
	message := strings.TrimSpace(parts[2])

	timestamp := time.Now().Format("15:04:05")
	if fields := strings.Fields(dateTime); len(fields) > 0 {
		timestamp = fields[len(fields)-1]
	}

	level := "info"
	switch levelStr {
	case "ERR", "ERROR", "FATAL", "PANIC":
		level = "error"
	case "WRN", "WARN":
		level = "warn"
	case "DBG", "DEBUG":
		level = "debug"
	}

	return LogEntry{Timestamp: timestamp, Level: level, Message: message}, true
}
