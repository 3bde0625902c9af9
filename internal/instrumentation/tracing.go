package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope name used for all tracers and
// meters in this application.
const TracerName = "github.com/redcardinal8/MeetingAgent"

// StartToolSpan starts a new span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(TracerName)
	return tracer.Start(ctx, "mcp.tool."+toolName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("mcp.tool.name", toolName),
		),
	)
}

// StartCalAPISpan starts a new span for a Cal.com API operation.
func StartCalAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	tracer := otel.Tracer(TracerName)
	return tracer.Start(ctx, "calcom."+service+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("calcom.service", service),
			attribute.String("calcom.operation", operation),
		),
	)
}

// StartChatSpan starts a new span for a chat assistant turn.
func StartChatSpan(ctx context.Context, intent string) (context.Context, trace.Span) {
	tracer := otel.Tracer(TracerName)
	return tracer.Start(ctx, "chat.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("chat.intent", intent),
		),
	)
}

// SetSpanError marks a span as failed and records the error.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanSuccess marks a span as successful.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID extracts the trace ID from the context, if present.
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// GetSpanID extracts the span ID from the context, if present.
func GetSpanID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasSpanID() {
		return ""
	}
	return spanCtx.SpanID().String()
}
