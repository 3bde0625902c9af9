package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
)

// ToolHandler is the signature of an MCP tool handler. It is an alias so
// wrapped handlers stay assignable to mcp-go's server.ToolHandlerFunc.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with tracing, metrics, and
// audit logging. Nil metrics or audit loggers disable the respective
// concern; the handler itself always runs.
func InstrumentedToolHandler(toolName string, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger, handler ToolHandler) ToolHandler {
	return instrumentedHandler(toolName, "", "", metrics, audit, handler)
}

// InstrumentedToolHandlerWithService additionally records the wrapped call
// as a Cal.com API operation with the given service and operation labels.
func InstrumentedToolHandlerWithService(toolName, service, operation string, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger, handler ToolHandler) ToolHandler {
	return instrumentedHandler(toolName, service, operation, metrics, audit, handler)
}

func instrumentedHandler(toolName, service, operation string, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		spanCtx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		attendee := AttendeeEmailFromRequest(request)

		inv := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(spanCtx).
			WithAttendee(attendee)
		if operation != "" {
			inv.WithOperation(operation)
		}

		result, err := handler(spanCtx, request)
		duration := time.Since(start)

		outcome := err
		if outcome == nil && result != nil && result.IsError {
			outcome = errToolResult
		}

		status := instrumentation.StatusSuccess
		if outcome != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, outcome)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocation(spanCtx, toolName, status, duration)
			if service != "" {
				metrics.RecordCalAPIOperation(spanCtx, service, operation, status, attendee, duration)
			}
		}
		if audit != nil {
			inv.Complete(audit, outcome)
		}

		return result, err
	}
}

// AttendeeEmailFromRequest extracts the attendee email argument from a
// tool request, if present.
func AttendeeEmailFromRequest(request mcp.CallToolRequest) string {
	args := request.GetArguments()
	for _, key := range []string{"attendee_email", "email"} {
		if v, ok := args[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// errToolResult marks handler results that carry an in-band tool error.
var errToolResult = toolResultError("tool returned an error result")

type toolResultError string

func (e toolResultError) Error() string { return string(e) }
