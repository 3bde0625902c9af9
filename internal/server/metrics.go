package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves Prometheus metrics on a dedicated port, separate
// from the MCP transport so that scraping never competes with tool
// traffic.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer creates a metrics server listening on the given
// address, e.g. ":9090".
func NewMetricsServer(addr, endpoint string, logger *slog.Logger) *MetricsServer {
	if logger == nil {
		logger = slog.Default()
	}
	if endpoint == "" {
		endpoint = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.Handler())

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start runs the metrics server until it is shut down. It returns nil on
// graceful shutdown.
func (m *MetricsServer) Start() error {
	m.logger.Info("metrics server listening", "addr", m.server.Addr)
	if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

// StartWithReadySignal runs the metrics server and closes ready once the
// listener is bound, so callers can sequence startup.
func (m *MetricsServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("metrics server failed to listen on %s: %w", m.server.Addr, err)
	}

	m.logger.Info("metrics server listening", "addr", ln.Addr().String())
	close(ready)

	if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

// Shutdown stops the metrics server gracefully.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}
