package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/redcardinal8/MeetingAgent/internal/calcom"
	"github.com/redcardinal8/MeetingAgent/internal/chat"
	"github.com/redcardinal8/MeetingAgent/internal/config"
	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
)

// EnvAPIKey is the environment variable holding the Cal.com API key.
const EnvAPIKey = "CAL_COM_API_KEY"

// Config carries the settings needed to build a ServerContext.
type Config struct {
	// APIKey is the Cal.com API key. When empty, it is read from the
	// CAL_COM_API_KEY environment variable on first use.
	APIKey string

	// App is the application configuration. Nil means defaults.
	App *config.Config

	// ReadOnly disables tools that modify state (booking, cancelling).
	ReadOnly bool

	Logger *slog.Logger
}

// ServerContext is the shared state behind all MCP tool handlers and the
// chat surfaces. Clients are created lazily and cached; the first tool
// that needs Cal.com pays the construction cost.
type ServerContext struct {
	mu  sync.Mutex
	cfg Config

	calClient *calcom.Client
	sessions  *chat.Store
	assistant *chat.Assistant

	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger

	logger *slog.Logger
}

// NewServerContext creates a server context with the given configuration.
func NewServerContext(cfg Config) *ServerContext {
	if cfg.App == nil {
		cfg.App = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ServerContext{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// CalClient returns the cached Cal.com client, creating it on first use.
func (sc *ServerContext) CalClient() (*calcom.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.calClientLocked()
}

func (sc *ServerContext) calClientLocked() (*calcom.Client, error) {
	if sc.calClient != nil {
		return sc.calClient, nil
	}

	apiKey := sc.cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, errors.New("Cal.com API key not configured: set " + EnvAPIKey)
	}

	opts := []calcom.Option{calcom.WithLogger(sc.logger)}
	api := sc.cfg.App.API
	if api.V1BaseURL != "" || api.V2BaseURL != "" {
		v1, v2 := api.V1BaseURL, api.V2BaseURL
		if v1 == "" {
			v1 = calcom.DefaultV1BaseURL
		}
		if v2 == "" {
			v2 = calcom.DefaultV2BaseURL
		}
		opts = append(opts, calcom.WithBaseURLs(v1, v2))
	}
	if api.Timeout > 0 {
		opts = append(opts, calcom.WithTimeout(api.Timeout.Std()))
	}

	client, err := calcom.NewClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	sc.calClient = client
	sc.logger.Debug("cal.com client created")
	return client, nil
}

// Assistant returns the cached chat assistant, creating it and its session
// store on first use.
func (sc *ServerContext) Assistant() (*chat.Assistant, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.assistant != nil {
		return sc.assistant, nil
	}

	client, err := sc.calClientLocked()
	if err != nil {
		return nil, err
	}

	sc.sessions = chat.NewStore(sc.cfg.App.Chat.SessionTimeout.Std(), sc.logger)
	sc.assistant = chat.NewAssistant(client, sc.sessions, sc.cfg.App.Booking, sc.logger)
	sc.assistant.SetReadOnly(sc.cfg.ReadOnly)
	if sc.metrics != nil {
		sc.sessions.SetMetrics(sc.metrics)
		sc.assistant.SetMetrics(sc.metrics)
	}
	if sc.audit != nil {
		sc.assistant.SetAuditLogger(sc.audit)
	}
	return sc.assistant, nil
}

// Sessions returns the chat session store, or nil when no assistant has
// been created yet.
func (sc *ServerContext) Sessions() *chat.Store {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sessions
}

// SetMetrics attaches the metrics instance used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
	if sc.sessions != nil {
		sc.sessions.SetMetrics(m)
	}
	if sc.assistant != nil {
		sc.assistant.SetMetrics(m)
	}
}

// Metrics returns the metrics instance, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.metrics
}

// SetAuditLogger attaches the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = al
	if sc.assistant != nil {
		sc.assistant.SetAuditLogger(al)
	}
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.audit
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.cfg.ReadOnly
}

// AppConfig returns the application configuration.
func (sc *ServerContext) AppConfig() *config.Config {
	return sc.cfg.App
}

// Logger returns the context's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// HasAPIKey reports whether a Cal.com API key is available without
// constructing a client.
func (sc *ServerContext) HasAPIKey() bool {
	return sc.cfg.APIKey != "" || os.Getenv(EnvAPIKey) != ""
}

// Shutdown releases resources held by the context.
func (sc *ServerContext) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.sessions != nil {
		sc.sessions.Stop()
		sc.sessions = nil
	}
	sc.assistant = nil
	sc.calClient = nil

	sc.logger.Debug("server context shut down")
	return nil
}
