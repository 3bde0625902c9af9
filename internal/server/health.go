package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker serves liveness and readiness endpoints for the
// streamable-http transport.
type HealthChecker struct {
	sc        *ServerContext
	version   string
	startTime time.Time
	ready     atomic.Bool
	logger    *slog.Logger
}

// NewHealthChecker creates a health checker bound to the server context.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	return &HealthChecker{
		sc:        sc,
		version:   version,
		startTime: time.Now(),
		logger:    sc.Logger(),
	}
}

// SetReady marks the server as ready to accept traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Register mounts the health endpoints on the given mux.
func (h *HealthChecker) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.handleLiveness)
	mux.HandleFunc("/readyz", h.handleReadiness)
	mux.HandleFunc("/healthz/detailed", h.handleDetailed)
}

// handleLiveness reports that the process is up.
func (h *HealthChecker) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleReadiness reports whether the server is accepting traffic.
func (h *HealthChecker) handleReadiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !h.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// handleDetailed reports runtime details useful for debugging.
func (h *HealthChecker) handleDetailed(w http.ResponseWriter, r *http.Request) {
	sessions := 0
	if store := h.sc.Sessions(); store != nil {
		sessions = store.Len()
	}

	detail := map[string]interface{}{
		"status":             "ok",
		"service":            "meetingagent",
		"version":            h.version,
		"uptime":             time.Since(h.startTime).String(),
		"ready":              h.ready.Load(),
		"read_only":          h.sc.ReadOnly(),
		"api_key_configured": h.sc.HasAPIKey(),
		"active_sessions":    sessions,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(detail); err != nil {
		h.logger.Error("failed to encode health detail", "error", err)
	}
}
