package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics instruments.
// A zero-value Metrics is safe to use; all Record methods become no-ops when
// the underlying instruments are nil.
type Metrics struct {
	config Config

	// HTTP server metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// Cal.com API metrics
	calAPIOperationsTotal metric.Int64Counter
	calAPIDuration        metric.Float64Histogram

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Chat assistant metrics
	chatTurnsTotal metric.Int64Counter
}

// NewMetrics creates all application metric instruments on the given meter.
func NewMetrics(meter metric.Meter, config Config) (*Metrics, error) {
	m := &Metrics{config: config}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of currently active chat and MCP sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions: %w", err)
	}

	m.calAPIOperationsTotal, err = meter.Int64Counter(
		"cal_api_operations_total",
		metric.WithDescription("Total number of Cal.com API operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cal_api_operations_total: %w", err)
	}

	m.calAPIDuration, err = meter.Float64Histogram(
		"cal_api_operation_duration_seconds",
		metric.WithDescription("Cal.com API operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cal_api_operation_duration_seconds: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds: %w", err)
	}

	m.chatTurnsTotal, err = meter.Int64Counter(
		"chat_turns_total",
		metric.WithDescription("Total number of chat assistant turns by intent"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_turns_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path, status string, duration time.Duration) {
	if m.httpRequestsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", status),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordSessionStart increments the active session counter.
func (m *Metrics) RecordSessionStart(ctx context.Context, kind string) {
	if m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordSessionEnd decrements the active session counter.
func (m *Metrics) RecordSessionEnd(ctx context.Context, kind string) {
	if m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordCalAPIOperation records metrics for a Cal.com API operation.
// The attendeeEmail is reduced to its domain to keep cardinality bounded.
func (m *Metrics) RecordCalAPIOperation(ctx context.Context, service, operation, status, attendeeEmail string, duration time.Duration) {
	if m.calAPIOperationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	}
	if m.config.DetailedLabels {
		attrs = append(attrs, attribute.String("user_domain", ExtractUserDomain(attendeeEmail)))
	}

	m.calAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calAPIDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records metrics for an MCP tool invocation.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool", toolName),
		attribute.String("status", status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordChatTurn records a single chat assistant turn with the detected
// intent and outcome status.
func (m *Metrics) RecordChatTurn(ctx context.Context, intent, status string) {
	if m.chatTurnsTotal == nil {
		return
	}

	m.chatTurnsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	))
}
