package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToolInvocationBuilder(t *testing.T) {
	inv := NewToolInvocation("scheduler_book_meeting").
		WithOperation(OperationCreate).
		WithAttendee("jane@example.com").
		WithBookingID(42).
		WithSessionID("session-1")

	assert.Equal(t, "scheduler_book_meeting", inv.ToolName)
	assert.Equal(t, OperationCreate, inv.Operation)
	assert.Equal(t, "jane@example.com", inv.AttendeeEmail)
	assert.Equal(t, int64(42), inv.BookingID)
	assert.Equal(t, "session-1", inv.SessionID)
	assert.Equal(t, StatusUnknown, inv.Status)
	assert.False(t, inv.StartTime.IsZero())
}

func TestToolInvocationComplete(t *testing.T) {
	al := NewAuditLogger(AuditLoggingConfig{Enabled: true})

	inv := NewToolInvocation("scheduler_list_meetings").WithOperation(OperationList)
	time.Sleep(time.Millisecond)
	inv.Complete(al, nil)

	assert.Equal(t, StatusSuccess, inv.Status)
	assert.Empty(t, inv.Error)
	assert.Greater(t, inv.Duration, time.Duration(0))
}

func TestToolInvocationCompleteWithError(t *testing.T) {
	al := NewAuditLogger(AuditLoggingConfig{Enabled: true})

	inv := NewToolInvocation("scheduler_cancel_meeting").WithOperation(OperationCancel)
	inv.Complete(al, errors.New("booking not found"))

	assert.Equal(t, StatusError, inv.Status)
	assert.Equal(t, "booking not found", inv.Error)
}

func TestToolInvocationWithSpanContextNoSpan(t *testing.T) {
	inv := NewToolInvocation("scheduler_chat").WithSpanContext(context.Background())

	assert.Empty(t, inv.TraceID)
	assert.Empty(t, inv.SpanID)
}

func TestAuditLoggerDisabled(t *testing.T) {
	al := NewAuditLogger(AuditLoggingConfig{Enabled: false})

	// Must not panic and must still finalize the record.
	inv := NewToolInvocation("scheduler_book_meeting")
	inv.Complete(al, nil)
	assert.Equal(t, StatusSuccess, inv.Status)
}
