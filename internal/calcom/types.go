package calcom

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Booking represents a scheduled meeting on Cal.com.
type Booking struct {
	ID          int64      `json:"id"`
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     time.Time  `json:"endTime"`
	Status      string     `json:"status,omitempty"`
	EventTypeID int64      `json:"eventTypeId,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

// Attendee is a participant of a booking.
type Attendee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone,omitempty"`
}

// BookingInput describes a meeting to be created. Date and Start are given
// in the attendee's local time; the client localizes them using TimeZone
// before sending them to Cal.com.
type BookingInput struct {
	EventTypeID     int64
	Title           string
	Description     string
	Date            string // YYYY-MM-DD
	Start           string // HH:MM, 24-hour
	TimeZone        string // IANA name, e.g. Europe/Berlin
	DurationMinutes int
	Language        string
	AttendeeName    string
	AttendeeEmail   string
	Location        string // location type, e.g. "online" or "in-person"
	LocationOption  string // extra location detail, e.g. an address or link
}

// Slot is a single available start time for an event type.
type Slot struct {
	Time time.Time `json:"time"`
}

// APIError represents an error response from the Cal.com API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cal.com API error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("cal.com API error: HTTP %d", e.StatusCode)
}

// IsConflict reports whether the error is an HTTP 409, which Cal.com
// returns when the requested slot is unavailable or conflicts with booking
// rules.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsConflict reports whether err is a Cal.com slot conflict (HTTP 409).
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsConflict()
}

// IsNotFound reports whether err is a Cal.com HTTP 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ErrNoMatchingBooking is returned when no booking matches the requested
// attendee, date and time.
var ErrNoMatchingBooking = errors.New("no matching booking found")

// v1 request and response shapes.

type bookingRequest struct {
	EventTypeID int64                  `json:"eventTypeId"`
	Start       string                 `json:"start"`
	End         string                 `json:"end"`
	Responses   bookingResponses       `json:"responses"`
	TimeZone    string                 `json:"timeZone"`
	Language    string                 `json:"language"`
	Title       string                 `json:"title"`
	Metadata    map[string]interface{} `json:"metadata"`
	Status      string                 `json:"status"`
}

type bookingResponses struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Location bookingLocation `json:"location"`
}

type bookingLocation struct {
	Value       string `json:"value"`
	OptionValue string `json:"optionValue"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// slotsResponse maps dates to the available slots on that date.
type slotsResponse struct {
	Slots map[string][]Slot `json:"slots"`
}

// v2 response envelope. The bookings list is nested under data.bookings.

type listBookingsResponse struct {
	Status string           `json:"status"`
	Data   listBookingsData `json:"data"`
}

type listBookingsData struct {
	Bookings []Booking `json:"bookings"`
}
