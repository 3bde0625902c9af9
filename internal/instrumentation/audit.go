package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/redcardinal8/MeetingAgent/internal/logging"
)

// AuditLogger writes structured audit records for tool invocations and
// scheduling operations. Unlike metrics, audit logs are per-event and may
// carry enough detail to reconstruct what happened and for whom.
type AuditLogger struct {
	config AuditLoggingConfig
	logger *slog.Logger
}

// NewAuditLogger creates an audit logger with the given configuration.
func NewAuditLogger(config AuditLoggingConfig) *AuditLogger {
	return &AuditLogger{
		config: config,
		logger: slog.Default().With(slog.String("log_type", "audit")),
	}
}

// ToolInvocation is an audit record for a single MCP tool invocation or
// chat-initiated scheduling operation. Build it with NewToolInvocation and
// the With* methods, then emit it via Complete.
type ToolInvocation struct {
	ToolName      string
	Operation     string
	AttendeeEmail string
	BookingID     int64
	SessionID     string
	TraceID       string
	SpanID        string
	StartTime     time.Time
	Duration      time.Duration
	Status        string
	Error         string
}

// NewToolInvocation starts a new audit record for the named tool.
func NewToolInvocation(toolName string) *ToolInvocation {
	return &ToolInvocation{
		ToolName:  toolName,
		StartTime: time.Now(),
		Status:    StatusUnknown,
	}
}

// WithOperation sets the scheduling operation (create, list, cancel, slots).
func (t *ToolInvocation) WithOperation(operation string) *ToolInvocation {
	t.Operation = operation
	return t
}

// WithAttendee sets the attendee email for the operation.
func (t *ToolInvocation) WithAttendee(email string) *ToolInvocation {
	t.AttendeeEmail = email
	return t
}

// WithBookingID sets the Cal.com booking ID affected by the operation.
func (t *ToolInvocation) WithBookingID(id int64) *ToolInvocation {
	t.BookingID = id
	return t
}

// WithSessionID sets the chat or MCP session identifier.
func (t *ToolInvocation) WithSessionID(sessionID string) *ToolInvocation {
	t.SessionID = sessionID
	return t
}

// WithSpanContext captures trace and span IDs from the context for log and
// trace correlation.
func (t *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	t.TraceID = GetTraceID(ctx)
	t.SpanID = GetSpanID(ctx)
	return t
}

// Complete finalizes the invocation record and emits it through the audit
// logger. A nil err marks the invocation successful.
func (t *ToolInvocation) Complete(al *AuditLogger, err error) {
	t.Duration = time.Since(t.StartTime)
	if err != nil {
		t.Status = StatusError
		t.Error = err.Error()
	} else {
		t.Status = StatusSuccess
	}
	al.LogToolInvocation(t)
}

// LogToolInvocation writes the audit record. When IncludePII is disabled,
// attendee emails are anonymized before logging.
func (al *AuditLogger) LogToolInvocation(inv *ToolInvocation) {
	if !al.config.Enabled {
		return
	}

	attrs := []any{
		slog.String("tool", inv.ToolName),
		slog.String("status", inv.Status),
		slog.Duration("duration", inv.Duration),
	}
	if inv.Operation != "" {
		attrs = append(attrs, slog.String("operation", inv.Operation))
	}
	if inv.AttendeeEmail != "" {
		if al.config.IncludePII {
			attrs = append(attrs, slog.String("attendee", inv.AttendeeEmail))
		} else {
			attrs = append(attrs, slog.String("attendee", logging.AnonymizeEmail(inv.AttendeeEmail)))
		}
	}
	if inv.BookingID != 0 {
		attrs = append(attrs, slog.Int64("booking_id", inv.BookingID))
	}
	if inv.SessionID != "" {
		attrs = append(attrs, slog.String("session", inv.SessionID))
	}
	if inv.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", inv.TraceID))
	}
	if inv.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", inv.SpanID))
	}
	if inv.Error != "" {
		attrs = append(attrs, slog.String("error", inv.Error))
	}

	if inv.Status == StatusError {
		al.logger.Error("tool invocation", attrs...)
	} else {
		al.logger.Info("tool invocation", attrs...)
	}
}
