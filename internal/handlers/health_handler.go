package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/ternarybob/logrange/internal/common"
)

// HealthHandler answers liveness/version probes. Readiness is tracked
// with a single atomic flag rather than a dependency on the engine.
// app.New creates the handler after engine.Load returns and calls
// MarkReady straight away, before any route can reach it.
type HealthHandler struct {
	ready int32
}

// NewHealthHandler returns a handler that reports not-ready until
// MarkReady is called.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// MarkReady flips the handler to report 200 on /healthz. Must be called
// exactly once, after the engine has been published.
func (h *HealthHandler) MarkReady() {
	atomic.StoreInt32(&h.ready, 1)
}

// HealthzHandler serves GET /healthz.
func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&h.ready) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler serves GET /version.
func (h *HealthHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}
