// Package instrumentation provides OpenTelemetry instrumentation for the
// meetingagent MCP server and chat assistant.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, Cal.com API calls, MCP tool
//     invocations, and chat turns
//   - Distributed tracing for request flows and Cal.com API calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total, http_request_duration_seconds
//   - active_sessions
//
// Cal.com API:
//   - cal_api_operations_total, cal_api_operation_duration_seconds
//
// MCP tools:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// Chat assistant:
//   - chat_turns_total (by intent and status)
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate 0.0-1.0 (default: 0.1)
//   - OTEL_SERVICE_NAME: service name (default: meetingagent)
package instrumentation
