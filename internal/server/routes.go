// -----------------------------------------------------------------------
// Last Modified: Thursday, 9th October 2025 8:53:55 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
	"strconv"
	"strings"
)

// supportedAPIVersion is the only query-API version currently served;
// any other numeric version in the path yields 404, leaving room to grow
// without breaking the one version that exists today.
const supportedAPIVersion = 1

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.app.HealthHandler.HealthzHandler)
	mux.HandleFunc("/version", s.app.HealthHandler.VersionHandler)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)
	mux.HandleFunc("/logs/recent", s.app.WSHandler.GetRecentLogsHandler)
	mux.HandleFunc("/shutdown", s.ShutdownHandler)

	return mux
}

// handleRoot serves the usage banner at the literal root path and
// dispatches everything else through handleQueriesRoute.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		s.app.QueryHandler.UsageHandler(w, r)
		return
	}
	s.handleQueriesRoute(w, r)
}

// handleQueriesRoute routes GET /{version}/queries/{op}/{range}, per the
// external interface in spec.md §6 / SPEC_FULL.md §4.M. <range> may
// itself contain spaces and colons (decoded already by net/http from
// percent-encoding), but never a slash, so a four-way split on "/"
// isolates it cleanly.
func (s *Server) handleQueriesRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	parts := strings.SplitN(path, "/", 4)
	if len(parts) != 4 || parts[1] != "queries" {
		http.NotFound(w, r)
		return
	}

	version, err := strconv.Atoi(parts[0])
	if err != nil || version != supportedAPIVersion {
		http.NotFound(w, r)
		return
	}

	op, rangeExpr := parts[2], parts[3]
	switch op {
	case "count":
		s.app.QueryHandler.CountHandler(w, r, rangeExpr)
	case "popular":
		s.app.QueryHandler.PopularHandler(w, r, rangeExpr)
	case "export":
		s.app.QueryHandler.ExportHandler(w, r, rangeExpr)
	default:
		http.NotFound(w, r)
	}
}
