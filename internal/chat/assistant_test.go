package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redcardinal8/MeetingAgent/internal/calcom"
	"github.com/redcardinal8/MeetingAgent/internal/config"
)

// stubAPI is a SchedulerAPI stub recording the calls it receives.
type stubAPI struct {
	createInput    calcom.BookingInput
	createBooking  *calcom.Booking
	createErr      error
	listEmail      string
	listBookings   []calcom.Booking
	listErr        error
	cancelEmail    string
	cancelDate     string
	cancelStart    string
	cancelTimeZone string
	cancelReason   string
	cancelBooking  *calcom.Booking
	cancelErr      error
	slots          []calcom.Slot
	slotsErr       error
}

func (s *stubAPI) CreateBooking(_ context.Context, in calcom.BookingInput) (*calcom.Booking, error) {
	s.createInput = in
	return s.createBooking, s.createErr
}

func (s *stubAPI) ListBookings(_ context.Context, email string) ([]calcom.Booking, error) {
	s.listEmail = email
	return s.listBookings, s.listErr
}

func (s *stubAPI) CancelBookingAt(_ context.Context, email, date, start, tz, reason string) (*calcom.Booking, error) {
	s.cancelEmail = email
	s.cancelDate = date
	s.cancelStart = start
	s.cancelTimeZone = tz
	s.cancelReason = reason
	return s.cancelBooking, s.cancelErr
}

func (s *stubAPI) GetSlots(_ context.Context, _ int64, from, to, _ string) ([]calcom.Slot, error) {
	return s.slots, s.slotsErr
}

func newTestAssistant(t *testing.T, api *stubAPI) *Assistant {
	t.Helper()

	store := NewStore(time.Minute, nil)
	t.Cleanup(store.Stop)

	a := NewAssistant(api, store, config.BookingConfig{
		EventTypeID:     7,
		DurationMinutes: 30,
		Language:        "en",
		TimeZone:        "UTC",
	}, nil)
	a.now = func() time.Time { return testNow }
	return a
}

func TestHandleTurnHelp(t *testing.T) {
	a := newTestAssistant(t, &stubAPI{})

	turn := a.HandleTurn(context.Background(), "", "hello")
	assert.Equal(t, IntentHelp, turn.Intent)
	assert.Contains(t, turn.Reply, "I can help you")
	assert.NotEmpty(t, turn.SessionID)
}

func TestHandleTurnUnknown(t *testing.T) {
	a := newTestAssistant(t, &stubAPI{})

	turn := a.HandleTurn(context.Background(), "", "what's the weather like?")
	assert.Equal(t, IntentUnknown, turn.Intent)
	assert.Contains(t, turn.Reply, "not sure")
}

func TestBookingOneShot(t *testing.T) {
	api := &stubAPI{
		createBooking: &calcom.Booking{
			ID:        101,
			Title:     "Q3 Planning",
			StartTime: time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 2, 10, 45, 0, 0, time.UTC),
		},
	}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "",
		`book "Q3 Planning" with Jane jane@example.com tomorrow at 10:00 for 45 minutes`)

	assert.Equal(t, IntentBook, turn.Intent)
	assert.Contains(t, turn.Reply, "successfully booked")
	assert.Contains(t, turn.Reply, "Q3 Planning")

	assert.Equal(t, int64(7), api.createInput.EventTypeID)
	assert.Equal(t, "jane@example.com", api.createInput.AttendeeEmail)
	assert.Equal(t, "2026-09-02", api.createInput.Date)
	assert.Equal(t, "10:00", api.createInput.Start)
	assert.Equal(t, 45, api.createInput.DurationMinutes)
	assert.Equal(t, "Q3 Planning", api.createInput.Title)
}

func TestBookingSlotFilling(t *testing.T) {
	api := &stubAPI{
		createBooking: &calcom.Booking{ID: 5, Title: "Meeting with Jane Doe"},
	}
	a := newTestAssistant(t, api)
	ctx := context.Background()

	turn := a.HandleTurn(ctx, "", "I'd like to book a meeting")
	sid := turn.SessionID
	assert.Contains(t, turn.Reply, "email address")

	turn = a.HandleTurn(ctx, sid, "jane@example.com")
	assert.Equal(t, sid, turn.SessionID)
	assert.Contains(t, turn.Reply, "name")

	turn = a.HandleTurn(ctx, sid, "Jane Doe")
	assert.Contains(t, turn.Reply, "date")

	turn = a.HandleTurn(ctx, sid, "tomorrow")
	assert.Contains(t, turn.Reply, "time")

	turn = a.HandleTurn(ctx, sid, "at 14:30")
	assert.Contains(t, turn.Reply, "successfully booked")

	assert.Equal(t, "jane@example.com", api.createInput.AttendeeEmail)
	assert.Equal(t, "Jane Doe", api.createInput.AttendeeName)
	assert.Equal(t, "2026-09-02", api.createInput.Date)
	assert.Equal(t, "14:30", api.createInput.Start)
	// Defaults fill what the user never mentioned.
	assert.Equal(t, 30, api.createInput.DurationMinutes)
	assert.Equal(t, "UTC", api.createInput.TimeZone)
	assert.Equal(t, "Meeting with Jane Doe", api.createInput.Title)
}

func TestBookingConflictReply(t *testing.T) {
	api := &stubAPI{
		createErr: &calcom.APIError{StatusCode: 409, Message: "slot taken"},
	}
	a := newTestAssistant(t, api)
	ctx := context.Background()

	turn := a.HandleTurn(ctx, "", "book a meeting with jane@example.com tomorrow at 10:00")
	assert.Contains(t, turn.Reply, "name")

	turn = a.HandleTurn(ctx, turn.SessionID, "Jane")
	assert.Contains(t, turn.Reply, "unavailable or conflicts")
}

func TestBookingAbort(t *testing.T) {
	a := newTestAssistant(t, &stubAPI{})
	ctx := context.Background()

	turn := a.HandleTurn(ctx, "", "book a meeting")
	sid := turn.SessionID

	turn = a.HandleTurn(ctx, sid, "never mind")
	assert.Contains(t, turn.Reply, "dropped that request")

	// The session is back to a clean slate.
	turn = a.HandleTurn(ctx, sid, "show my meetings for jane@example.com")
	assert.Equal(t, IntentList, turn.Intent)
}

func TestListMeetings(t *testing.T) {
	api := &stubAPI{
		listBookings: []calcom.Booking{
			{
				ID:        1,
				Title:     "Standup",
				StartTime: time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2026, 9, 2, 9, 15, 0, 0, time.UTC),
				Attendees: []calcom.Attendee{{Name: "Jane", Email: "jane@example.com"}},
			},
		},
	}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "", "show meetings for jane@example.com")
	assert.Equal(t, IntentList, turn.Intent)
	assert.Contains(t, turn.Reply, "Standup")
	assert.Contains(t, turn.Reply, "jane@example.com")
	assert.Equal(t, "jane@example.com", api.listEmail)
}

func TestListMeetingsEmpty(t *testing.T) {
	a := newTestAssistant(t, &stubAPI{})

	turn := a.HandleTurn(context.Background(), "", "list meetings for nobody@example.com")
	assert.Contains(t, turn.Reply, "No meetings found for nobody@example.com")
}

func TestListMeetingsAsksForEmail(t *testing.T) {
	api := &stubAPI{}
	a := newTestAssistant(t, api)
	ctx := context.Background()

	turn := a.HandleTurn(ctx, "", "show my meetings")
	assert.Contains(t, turn.Reply, "email")

	turn = a.HandleTurn(ctx, turn.SessionID, "jane@example.com")
	assert.Equal(t, "jane@example.com", api.listEmail)
}

func TestCancelMeeting(t *testing.T) {
	api := &stubAPI{
		cancelBooking: &calcom.Booking{ID: 12, Title: "Planning"},
	}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "",
		"cancel the meeting for jane@example.com on 2026-09-02 at 10:00 because I'm double booked")

	assert.Equal(t, IntentCancel, turn.Intent)
	assert.Contains(t, turn.Reply, "Successfully cancelled meeting 'Planning'")
	assert.Equal(t, "jane@example.com", api.cancelEmail)
	assert.Equal(t, "2026-09-02", api.cancelDate)
	assert.Equal(t, "10:00", api.cancelStart)
	assert.Equal(t, "I'm double booked", api.cancelReason)
}

func TestCancelWithoutReasonSucceeds(t *testing.T) {
	api := &stubAPI{
		cancelBooking: &calcom.Booking{ID: 12, Title: "Planning"},
	}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "",
		"cancel the meeting for jane@example.com on 2026-09-02 at 10:00")

	assert.Contains(t, turn.Reply, "Successfully cancelled")
	assert.Empty(t, api.cancelReason)
}

func TestCancelAlreadyGone(t *testing.T) {
	api := &stubAPI{cancelErr: &calcom.APIError{StatusCode: 404, Message: "booking not found"}}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "",
		"cancel the meeting for jane@example.com on 2026-09-02 at 10:00")

	assert.Contains(t, turn.Reply, "no longer exists")
	assert.Contains(t, turn.Reply, "already been cancelled")
}

func TestReadOnlyRefusesWrites(t *testing.T) {
	api := &stubAPI{
		createBooking: &calcom.Booking{ID: 9},
		cancelBooking: &calcom.Booking{ID: 9},
	}
	a := newTestAssistant(t, api)
	a.SetReadOnly(true)
	ctx := context.Background()

	turn := a.HandleTurn(ctx, "",
		"book a meeting with Jane jane@example.com tomorrow at 10:00")
	assert.Contains(t, turn.Reply, "read-only mode")
	assert.Empty(t, api.createInput.AttendeeEmail, "booking must not reach the API")

	turn = a.HandleTurn(ctx, turn.SessionID,
		"cancel the meeting for jane@example.com on 2026-09-02 at 10:00")
	assert.Contains(t, turn.Reply, "read-only mode")
	assert.Empty(t, api.cancelEmail, "cancellation must not reach the API")

	// Read operations still work.
	turn = a.HandleTurn(ctx, turn.SessionID, "show meetings for jane@example.com")
	assert.Equal(t, IntentList, turn.Intent)
	assert.Equal(t, "jane@example.com", api.listEmail)
}

func TestHandleTurnConcurrentSameSession(t *testing.T) {
	a := newTestAssistant(t, &stubAPI{})
	ctx := context.Background()

	sid := a.HandleTurn(ctx, "", "book a meeting").SessionID

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.HandleTurn(ctx, sid, "jane@example.com")
		}()
	}
	wg.Wait()

	// The draft absorbed the email exactly once and moved on to the name.
	turn := a.HandleTurn(ctx, sid, "Jane Doe")
	assert.Contains(t, turn.Reply, "date")
}

func TestCancelNoMatch(t *testing.T) {
	api := &stubAPI{cancelErr: calcom.ErrNoMatchingBooking}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "",
		"cancel the meeting for jane@example.com on 2026-09-02 at 10:00")

	assert.Contains(t, turn.Reply, "No meeting found for jane@example.com")
}

func TestCheckAvailability(t *testing.T) {
	api := &stubAPI{
		slots: []calcom.Slot{
			{Time: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)},
			{Time: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
	a := newTestAssistant(t, api)

	turn := a.HandleTurn(context.Background(), "", "check availability")
	assert.Equal(t, IntentAvailability, turn.Intent)
	assert.Contains(t, turn.Reply, "Available slots")
	assert.Contains(t, turn.Reply, "09:00")
	assert.Contains(t, turn.Reply, "10:00")
}

func TestBookingWithoutEventType(t *testing.T) {
	store := NewStore(time.Minute, nil)
	t.Cleanup(store.Stop)

	a := NewAssistant(&stubAPI{}, store, config.BookingConfig{
		DurationMinutes: 30,
		TimeZone:        "UTC",
	}, nil)
	a.now = func() time.Time { return testNow }

	turn := a.HandleTurn(context.Background(), "",
		"book a meeting with Jane jane@example.com tomorrow at 10:00")
	require.Contains(t, turn.Reply, "no Cal.com event type is configured")
}
