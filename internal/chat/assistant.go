package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redcardinal8/MeetingAgent/internal/calcom"
	"github.com/redcardinal8/MeetingAgent/internal/config"
	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
	"github.com/redcardinal8/MeetingAgent/internal/logging"
)

// SchedulerAPI is the scheduling surface the assistant drives. It is
// implemented by *calcom.Client.
type SchedulerAPI interface {
	CreateBooking(ctx context.Context, in calcom.BookingInput) (*calcom.Booking, error)
	ListBookings(ctx context.Context, attendeeEmail string) ([]calcom.Booking, error)
	CancelBookingAt(ctx context.Context, attendeeEmail, date, start, timeZone, reason string) (*calcom.Booking, error)
	GetSlots(ctx context.Context, eventTypeID int64, dateFrom, dateTo, timeZone string) ([]calcom.Slot, error)
}

// Assistant turns free-text chat into scheduling operations.
type Assistant struct {
	api      SchedulerAPI
	store    *Store
	defaults config.BookingConfig
	logger   *slog.Logger

	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger

	// readOnly refuses intents that would modify bookings.
	readOnly bool

	// now is overridable in tests so relative dates are stable.
	now func() time.Time
}

// NewAssistant creates an assistant backed by the given scheduling API.
func NewAssistant(api SchedulerAPI, store *Store, defaults config.BookingConfig, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		api:      api,
		store:    store,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// SetMetrics attaches metrics recording to the assistant.
func (a *Assistant) SetMetrics(m *instrumentation.Metrics) {
	a.metrics = m
}

// SetAuditLogger attaches audit logging to the assistant.
func (a *Assistant) SetAuditLogger(al *instrumentation.AuditLogger) {
	a.audit = al
}

// SetReadOnly controls whether booking and cancelling are refused. The
// read-only server mode shares the assistant with chat callers, so the
// write restriction has to hold here too, not just at tool registration.
func (a *Assistant) SetReadOnly(v bool) {
	a.readOnly = v
}

// Turn is the outcome of a single chat exchange.
type Turn struct {
	SessionID string
	Reply     string
	Intent    Intent
}

// HandleTurn processes one user utterance. An empty sessionID starts a new
// conversation; the returned Turn carries the ID to use for follow-ups.
func (a *Assistant) HandleTurn(ctx context.Context, sessionID, input string) Turn {
	sess := a.store.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var intent Intent
	var reply string

	switch {
	case sess.Draft != nil && isAbort(input):
		sess.Draft = nil
		intent = IntentUnknown
		reply = "Okay, I've dropped that request. " + shortHelp

	case sess.Draft != nil:
		intent = sess.Draft.intent()
		a.absorbAnswer(sess.Draft, input)
		reply = a.advance(ctx, sess)

	default:
		intent = DetectIntent(input)
		reply = a.startIntent(ctx, sess, intent, input)
	}

	if a.metrics != nil {
		a.metrics.RecordChatTurn(ctx, string(intent), instrumentation.StatusSuccess)
	}
	a.logger.Debug("chat turn handled",
		logging.Intent(string(intent)),
		"session", sess.ID)

	return Turn{SessionID: sess.ID, Reply: reply, Intent: intent}
}

// startIntent begins a new draft for the detected intent, seeding it with
// whatever slots the utterance already carries.
func (a *Assistant) startIntent(ctx context.Context, sess *Session, intent Intent, input string) string {
	if a.readOnly && (intent == IntentBook || intent == IntentCancel) {
		return "I'm running in read-only mode, so I can't book or cancel meetings. " +
			"I can still list meetings and check availability."
	}

	switch intent {
	case IntentBook:
		sess.Draft = &Draft{
			Kind:            draftBook,
			TimeZone:        a.defaults.TimeZone,
			DurationMinutes: a.defaults.DurationMinutes,
		}
	case IntentList:
		sess.Draft = &Draft{Kind: draftList}
	case IntentCancel:
		sess.Draft = &Draft{Kind: draftCancel, TimeZone: a.defaults.TimeZone}
	case IntentAvailability:
		sess.Draft = &Draft{Kind: draftAvailability, TimeZone: a.defaults.TimeZone}
	case IntentHelp:
		return WelcomeMessage()
	default:
		return "I'm not sure what you'd like to do. " + shortHelp
	}

	a.extractSlots(sess.Draft, input)
	return a.advance(ctx, sess)
}

// absorbAnswer applies the utterance to the field the assistant last asked
// about, then picks up any other slots mentioned along the way.
func (a *Assistant) absorbAnswer(d *Draft, input string) {
	trimmed := strings.TrimSpace(input)

	switch d.Asked {
	case fieldEmail:
		if email := FindEmail(trimmed); email != "" {
			d.AttendeeEmail = email
		}
	case fieldName:
		if title := FindQuotedTitle(trimmed); title != "" {
			d.AttendeeName = title
		} else if trimmed != "" && FindEmail(trimmed) == "" {
			d.AttendeeName = trimmed
		}
	case fieldDate:
		// handled by extractSlots below
	case fieldTime:
		// handled by extractSlots below
	}

	a.extractSlots(d, input)
}

// extractSlots fills any empty draft fields with values found in the text.
func (a *Assistant) extractSlots(d *Draft, input string) {
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil || d.TimeZone == "" {
		loc = time.UTC
	}

	if d.AttendeeEmail == "" {
		d.AttendeeEmail = FindEmail(input)
	}
	if d.Date == "" {
		d.Date = FindDate(input, a.now(), loc)
	}
	if d.Start == "" {
		d.Start = FindTime(input)
	}
	if tz := FindTimeZone(input); tz != "" {
		d.TimeZone = tz
	}
	if d.Title == "" {
		d.Title = FindQuotedTitle(input)
	}
	if d.Kind == draftBook && d.AttendeeName == "" {
		d.AttendeeName = FindAttendeeName(input)
	}
	if d.Kind == draftBook {
		if minutes := FindDurationMinutes(input); minutes > 0 {
			d.DurationMinutes = minutes
		}
	}
	if d.Kind == draftCancel && d.Reason == "" {
		d.Reason = FindReason(input)
	}
}

// advance asks for the next missing field or, when the draft is complete,
// executes the operation and clears the draft.
func (a *Assistant) advance(ctx context.Context, sess *Session) string {
	d := sess.Draft

	if field := d.nextMissing(); field != "" {
		d.Asked = field
		return questionFor(d.Kind, field)
	}

	reply := a.execute(ctx, sess.ID, d)
	sess.Draft = nil
	return reply
}

// execute performs the completed draft's operation against the API.
func (a *Assistant) execute(ctx context.Context, sessionID string, d *Draft) string {
	spanCtx, span := instrumentation.StartChatSpan(ctx, string(d.intent()))
	defer span.End()

	inv := instrumentation.NewToolInvocation("chat_assistant").
		WithSessionID(sessionID).
		WithAttendee(d.AttendeeEmail)

	var reply string
	var err error

	switch d.Kind {
	case draftBook:
		inv.WithOperation(instrumentation.OperationCreate)
		reply, err = a.executeBook(spanCtx, d, inv)
	case draftList:
		inv.WithOperation(instrumentation.OperationList)
		reply, err = a.executeList(spanCtx, d)
	case draftCancel:
		inv.WithOperation(instrumentation.OperationCancel)
		reply, err = a.executeCancel(spanCtx, d)
	case draftAvailability:
		inv.WithOperation(instrumentation.OperationSlots)
		reply, err = a.executeAvailability(spanCtx, d)
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	if a.audit != nil {
		inv.WithSpanContext(spanCtx).Complete(a.audit, err)
	}
	return reply
}

func (a *Assistant) executeBook(ctx context.Context, d *Draft, inv *instrumentation.ToolInvocation) (string, error) {
	if a.defaults.EventTypeID == 0 {
		return "I can't book meetings yet: no Cal.com event type is configured. " +
			"Please set booking.event_type_id in the configuration.", errors.New("event type not configured")
	}

	title := d.Title
	if title == "" {
		title = "Meeting with " + d.AttendeeName
	}

	booking, err := a.api.CreateBooking(ctx, calcom.BookingInput{
		EventTypeID:     a.defaults.EventTypeID,
		Title:           title,
		Date:            d.Date,
		Start:           d.Start,
		TimeZone:        d.TimeZone,
		DurationMinutes: d.DurationMinutes,
		Language:        a.defaults.Language,
		AttendeeName:    d.AttendeeName,
		AttendeeEmail:   d.AttendeeEmail,
		Location:        a.defaults.Location,
		LocationOption:  a.defaults.LocationOption,
	})
	if err != nil {
		if calcom.IsConflict(err) {
			return "The requested time slot is unavailable or conflicts with booking rules on Cal.com. " +
				"Would you like to try a different time?", err
		}
		return "Failed to book the meeting: " + err.Error(), err
	}

	inv.WithBookingID(booking.ID)
	return FormatBookingConfirmation(booking, d.TimeZone), nil
}

func (a *Assistant) executeList(ctx context.Context, d *Draft) (string, error) {
	bookings, err := a.api.ListBookings(ctx, d.AttendeeEmail)
	if err != nil {
		return "Failed to retrieve meetings from Cal.com: " + err.Error(), err
	}
	return FormatBookingList(d.AttendeeEmail, bookings), nil
}

func (a *Assistant) executeCancel(ctx context.Context, d *Draft) (string, error) {
	booking, err := a.api.CancelBookingAt(ctx, d.AttendeeEmail, d.Date, d.Start, d.TimeZone, d.Reason)
	if err != nil {
		if errors.Is(err, calcom.ErrNoMatchingBooking) {
			return fmt.Sprintf("No meeting found for %s on %s at %s %s.",
				d.AttendeeEmail, d.Date, d.Start, d.TimeZone), err
		}
		if calcom.IsNotFound(err) {
			return "That meeting no longer exists on Cal.com; it may have already been cancelled.", err
		}
		return "Failed to cancel the meeting: " + err.Error(), err
	}
	return FormatCancellation(booking, d.Date, d.Start, d.TimeZone), nil
}

func (a *Assistant) executeAvailability(ctx context.Context, d *Draft) (string, error) {
	if a.defaults.EventTypeID == 0 {
		return "I can't check availability yet: no Cal.com event type is configured.", errors.New("event type not configured")
	}

	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	from := d.Date
	if from == "" {
		from = a.now().In(loc).Format("2006-01-02")
	}
	fromDay, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return "I couldn't make sense of that date. Please use YYYY-MM-DD.", err
	}
	to := fromDay.AddDate(0, 0, 7).Format("2006-01-02")

	slots, err := a.api.GetSlots(ctx, a.defaults.EventTypeID, from, to, d.TimeZone)
	if err != nil {
		return "Failed to check availability on Cal.com: " + err.Error(), err
	}
	return FormatSlots(from, to, d.TimeZone, slots), nil
}

// Field names used for slot-filling questions.
const (
	fieldEmail = "email"
	fieldName  = "name"
	fieldDate  = "date"
	fieldTime  = "time"
)

// intent maps the draft kind back to the user-facing intent.
func (d *Draft) intent() Intent {
	switch d.Kind {
	case draftBook:
		return IntentBook
	case draftList:
		return IntentList
	case draftCancel:
		return IntentCancel
	case draftAvailability:
		return IntentAvailability
	}
	return IntentUnknown
}

// nextMissing returns the first required field the draft still lacks.
func (d *Draft) nextMissing() string {
	switch d.Kind {
	case draftBook:
		switch {
		case d.AttendeeEmail == "":
			return fieldEmail
		case d.AttendeeName == "":
			return fieldName
		case d.Date == "":
			return fieldDate
		case d.Start == "":
			return fieldTime
		}
	case draftList:
		if d.AttendeeEmail == "" {
			return fieldEmail
		}
	case draftCancel:
		switch {
		case d.AttendeeEmail == "":
			return fieldEmail
		case d.Date == "":
			return fieldDate
		case d.Start == "":
			return fieldTime
		}
	case draftAvailability:
		// date is optional, defaults to today
	}
	return ""
}

// questionFor renders the re-prompt for a missing field.
func questionFor(kind draftKind, field string) string {
	cancelling := kind == draftCancel

	switch field {
	case fieldEmail:
		if cancelling {
			return "Which attendee's meeting should I cancel? Please give me their email address."
		}
		return "What's the attendee's email address?"
	case fieldName:
		return "Who is the meeting with? Please give me the attendee's name."
	case fieldDate:
		if cancelling {
			return "What date is the meeting you'd like to cancel? (YYYY-MM-DD, or say 'tomorrow')"
		}
		return "What date should the meeting be on? (YYYY-MM-DD, or say 'tomorrow')"
	case fieldTime:
		if cancelling {
			return "What time does that meeting start? (HH:MM, 24-hour)"
		}
		return "What time should it start? (HH:MM, 24-hour)"
	}
	return "Could you tell me more?"
}

// isAbort reports whether the utterance abandons the current draft.
func isAbort(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "never mind", "nevermind", "forget it", "stop", "abort", "start over":
		return true
	}
	return false
}
