package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
	"github.com/redcardinal8/MeetingAgent/internal/server"
	"github.com/redcardinal8/MeetingAgent/internal/tools/booking_tools"
)

func newServeCmd() *cobra.Command {
	var (
		configPath     string
		debug          bool
		transport      string
		httpAddr       string
		yolo           bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Serve starts an MCP (Model Context Protocol) server exposing meeting
scheduling tools for Cal.com.

By default the server runs in read-only mode: tools that modify state
(booking and cancelling meetings) are not registered. Use --yolo to
enable them.

Transports:
  stdio            Communicate over stdin/stdout (default)
  streamable-http  Serve MCP over HTTP at /mcp

With the streamable-http transport, health endpoints are served at
/healthz and /readyz, and Prometheus metrics on a separate port
(--metrics-addr) unless disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serveOptions{
				configPath:     configPath,
				debug:          debug,
				transport:      transport,
				httpAddr:       httpAddr,
				yolo:           yolo,
				metricsEnabled: metricsEnabled,
				metricsAddr:    metricsAddr,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type (stdio or streamable-http)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Address for the streamable-http transport")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable tools that modify state (book and cancel meetings)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the Prometheus metrics server (streamable-http only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Address for the Prometheus metrics server")

	return cmd
}

type serveOptions struct {
	configPath     string
	debug          bool
	transport      string
	httpAddr       string
	yolo           bool
	metricsEnabled bool
	metricsAddr    string
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	if opts.transport != "stdio" && opts.transport != "streamable-http" {
		return fmt.Errorf("invalid transport %q: must be stdio or streamable-http", opts.transport)
	}

	cfg, err := loadAppConfig(opts.configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg, opts.debug)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	// The Prometheus registry only has data when instrumentation is on, and
	// with the stdio transport there is no long-lived process worth scraping.
	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() && opts.transport != "stdio" {
		metricsServer = server.NewMetricsServer(opts.metricsAddr, instrConfig.PrometheusEndpoint, logger)

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			metricsErr <- metricsServer.StartWithReadySignal(metricsReady)
		}()

		select {
		case <-metricsReady:
		case err := <-metricsErr:
			return err
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server failed to start within 5 seconds")
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	readOnly := !opts.yolo
	sc := server.NewServerContext(server.Config{
		App:      cfg,
		ReadOnly: readOnly,
		Logger:   logger,
	})
	sc.SetMetrics(provider.Metrics())
	sc.SetAuditLogger(provider.AuditLogger())
	defer func() { _ = sc.Shutdown(context.Background()) }()

	if !sc.HasAPIKey() {
		logger.Warn("no Cal.com API key configured: tool calls will fail",
			"env", server.EnvAPIKey)
	}

	mcpSrv := mcpserver.NewMCPServer(
		"meetingagent",
		version,
		mcpserver.WithToolCapabilities(true),
	)
	booking_tools.RegisterBookingTools(mcpSrv, sc, readOnly)

	logger.Info("starting MCP server",
		"transport", opts.transport,
		"read_only", readOnly,
		"version", version)

	switch opts.transport {
	case "stdio":
		return runStdioServer(ctx, mcpSrv, logger)
	default:
		return runStreamableHTTPServer(ctx, mcpSrv, sc, opts.httpAddr, logger)
	}
}

// runStdioServer serves MCP over stdin/stdout until the context is
// cancelled or the client disconnects.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- mcpserver.ServeStdio(mcpSrv)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down stdio server")
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("stdio server failed: %w", err)
		}
		return nil
	}
}

// runStreamableHTTPServer serves MCP over HTTP at /mcp, together with the
// health endpoints, until the context is cancelled.
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string, logger *slog.Logger) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv)

	health := server.NewHealthChecker(sc, version)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	health.Register(mux)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           server.WithHTTPMetrics(sc.Metrics(), mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("streamable-http server listening", "addr", addr)
		health.SetReady(true)
		serverDone <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down streamable-http server")
		health.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("streamable-http server failed: %w", err)
		}
		return nil
	}
}
