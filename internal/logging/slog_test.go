package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	hashed := AnonymizeEmail("jane@example.com")
	assert.True(t, strings.HasPrefix(hashed, "user:"))
	assert.NotContains(t, hashed, "jane")
	assert.NotContains(t, hashed, "example.com")

	// Stable across calls so log entries correlate.
	assert.Equal(t, hashed, AnonymizeEmail("jane@example.com"))
	assert.NotEqual(t, hashed, AnonymizeEmail("john@example.com"))

	assert.Empty(t, AnonymizeEmail(""))
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeKey(""))

	masked := SanitizeKey("cal_live_abc123")
	assert.NotContains(t, masked, "cal_live")
	assert.NotContains(t, masked, "abc123")
	assert.Contains(t, masked, "15")
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomain("jane@example.com"))
	assert.Empty(t, ExtractDomain("not-an-email"))
	assert.Empty(t, ExtractDomain(""))
	assert.Empty(t, ExtractDomain("a@b@c"))
}

func TestErrNilOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("operation finished", Err(nil))

	assert.NotContains(t, buf.String(), KeyError)
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithTool(WithSession(logger, "abc"), "scheduler_chat").Info("handled")

	out := buf.String()
	assert.Contains(t, out, "session=abc")
	assert.Contains(t, out, "tool=scheduler_chat")
}
