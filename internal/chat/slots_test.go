package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday.
var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestFindEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", FindEmail("book it for jane@example.com please"))
	assert.Equal(t, "a.b+c@sub.example.org", FindEmail("email: a.b+c@sub.example.org"))
	assert.Empty(t, FindEmail("no email here"))
}

func TestFindDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso date", "on 2026-09-15 please", "2026-09-15"},
		{"today", "sometime today", "2026-09-01"},
		{"tomorrow", "tomorrow at 10", "2026-09-02"},
		{"day after tomorrow", "the day after tomorrow", "2026-09-03"},
		{"next friday", "on Friday", "2026-09-04"},
		{"same weekday rolls a week", "on Tuesday", "2026-09-08"},
		{"nothing", "whenever", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindDate(tt.input, testNow, time.UTC))
		})
	}
}

func TestFindTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"24 hour", "at 14:30", "14:30"},
		{"leading zero kept", "at 09:05", "09:05"},
		{"pm", "at 2:30pm", "14:30"},
		{"pm no minutes", "around 3 pm", "15:00"},
		{"noon", "at 12pm", "12:00"},
		{"midnight", "at 12am", "00:00"},
		{"nothing", "sometime", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindTime(tt.input))
		})
	}
}

func TestFindTimeZone(t *testing.T) {
	assert.Equal(t, "Europe/Berlin", FindTimeZone("in Europe/Berlin please"))
	assert.Equal(t, "America/New_York", FindTimeZone("timezone America/New_York"))
	assert.Equal(t, "UTC", FindTimeZone("keep it in UTC"))
	assert.Empty(t, FindTimeZone("in Atlantis/Underwater"))
	assert.Empty(t, FindTimeZone("no timezone"))
}

func TestFindDurationMinutes(t *testing.T) {
	assert.Equal(t, 45, FindDurationMinutes("a 45 minute chat"))
	assert.Equal(t, 30, FindDurationMinutes("30 mins"))
	assert.Equal(t, 120, FindDurationMinutes("for 2 hours"))
	assert.Equal(t, 60, FindDurationMinutes("1 hour sync"))
	assert.Zero(t, FindDurationMinutes("a quick chat"))
}

func TestFindAttendeeName(t *testing.T) {
	assert.Equal(t, "Jane", FindAttendeeName("book a meeting with Jane tomorrow"))
	assert.Equal(t, "Jane Doe", FindAttendeeName("schedule a call with Jane Doe at 10"))
	assert.Empty(t, FindAttendeeName("book a meeting with jane@example.com"))
	assert.Empty(t, FindAttendeeName("book a meeting"))
}

func TestFindQuotedTitle(t *testing.T) {
	assert.Equal(t, "Q3 Planning", FindQuotedTitle(`book "Q3 Planning" tomorrow`))
	assert.Equal(t, "1:1 with Jane", FindQuotedTitle("call it '1:1 with Jane'"))
	assert.Empty(t, FindQuotedTitle("no quotes here"))
}

func TestFindReason(t *testing.T) {
	assert.Equal(t, "I'm double booked",
		FindReason("cancel it because I'm double booked"))
	assert.Equal(t, "illness", FindReason("reason: illness"))
	assert.Empty(t, FindReason("cancel my meeting"))
}

func TestFindDateRespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	// 12:00 UTC on Sep 1 is already Sep 2 in Auckland.
	assert.Equal(t, "2026-09-02", FindDate("today", testNow, loc))
}
