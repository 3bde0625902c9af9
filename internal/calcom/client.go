package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"

	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
	"github.com/redcardinal8/MeetingAgent/internal/logging"
)

const (
	// DefaultV1BaseURL is the Cal.com v1 API endpoint (bookings, slots).
	DefaultV1BaseURL = "https://api.cal.com/v1"

	// DefaultV2BaseURL is the Cal.com v2 API endpoint (booking lookups).
	DefaultV2BaseURL = "https://api.cal.com/v2"

	// liveKeyPrefix is the expected prefix of production Cal.com API keys.
	liveKeyPrefix = "cal_live_"

	defaultTimeout  = 30 * time.Second
	defaultMaxTries = 4
)

// Client is a Cal.com API client covering the booking lifecycle.
type Client struct {
	apiKey    string
	v1BaseURL string
	v2BaseURL string

	// v1Client carries no credentials; v1 authenticates via query param.
	// v2Client injects the API key as a Bearer token on every request.
	v1Client *http.Client
	v2Client *http.Client

	logger   *slog.Logger
	maxTries uint
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides the v1 and v2 API base URLs. Used in tests to
// point the client at a local server.
func WithBaseURLs(v1, v2 string) Option {
	return func(c *Client) {
		c.v1BaseURL = strings.TrimRight(v1, "/")
		c.v2BaseURL = strings.TrimRight(v2, "/")
	}
}

// WithHTTPClient sets the base HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.v1Client = hc
	}
}

// WithTimeout sets the per-request timeout for API calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.v1Client.Timeout = d
		}
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxTries sets the maximum number of attempts per API call.
func WithMaxTries(n uint) Option {
	return func(c *Client) {
		c.maxTries = n
	}
}

// NewClient creates a Cal.com API client with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("cal.com API key is required")
	}

	c := &Client{
		apiKey:    apiKey,
		v1BaseURL: DefaultV1BaseURL,
		v2BaseURL: DefaultV2BaseURL,
		v1Client:  &http.Client{Timeout: defaultTimeout},
		logger:    slog.Default(),
		maxTries:  defaultMaxTries,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !strings.HasPrefix(apiKey, liveKeyPrefix) {
		c.logger.Warn("Cal.com API key format may be incorrect",
			"expected_prefix", liveKeyPrefix,
			"key", logging.SanitizeKey(apiKey))
	}

	// The v2 surface wants the key as a Bearer token. Reuse the base
	// client's transport and timeout underneath the oauth2 wrapper.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.v1Client)
	c.v2Client = oauth2.NewClient(tokenCtx,
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey}))
	c.v2Client.Timeout = c.v1Client.Timeout

	return c, nil
}

// CreateBooking creates a new booking on Cal.com. The input's date and
// start time are interpreted in the input's timezone.
func (c *Client) CreateBooking(ctx context.Context, in BookingInput) (*Booking, error) {
	ctx, span := instrumentation.StartCalAPISpan(ctx,
		instrumentation.ServiceBookings, instrumentation.OperationCreate)
	defer span.End()

	loc, err := time.LoadLocation(in.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", in.TimeZone, err)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date or time, expected YYYY-MM-DD and HH:MM: %w", err)
	}
	end := start.Add(time.Duration(in.DurationMinutes) * time.Minute)

	metadata := map[string]interface{}{}
	if in.Description != "" {
		metadata["description"] = in.Description
	}

	payload := bookingRequest{
		EventTypeID: in.EventTypeID,
		Start:       start.Format(time.RFC3339),
		End:         end.Format(time.RFC3339),
		Responses: bookingResponses{
			Name:     in.AttendeeName,
			Email:    in.AttendeeEmail,
			Location: bookingLocation{Value: in.Location, OptionValue: in.LocationOption},
		},
		TimeZone: in.TimeZone,
		Language: in.Language,
		Title:    in.Title,
		Metadata: metadata,
		Status:   "ACCEPTED",
	}

	var booking Booking
	if err := c.doV1(ctx, http.MethodPost, "/bookings", nil, payload, &booking); err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, errors.New("cal.com returned a booking without an id")
	}

	c.logger.Info("booking created",
		logging.BookingID(booking.ID),
		logging.UserHash(in.AttendeeEmail),
		"event_type_id", in.EventTypeID,
		"start", booking.StartTime)

	return &booking, nil
}

// ListBookings returns all bookings that have the given attendee.
func (c *Client) ListBookings(ctx context.Context, attendeeEmail string) ([]Booking, error) {
	ctx, span := instrumentation.StartCalAPISpan(ctx,
		instrumentation.ServiceBookings, instrumentation.OperationList)
	defer span.End()

	query := url.Values{"attendeeEmail": {attendeeEmail}}

	var resp listBookingsResponse
	if err := c.doV2(ctx, http.MethodGet, "/bookings", query, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("unexpected cal.com response status %q", resp.Status)
	}

	return resp.Data.Bookings, nil
}

// CancelBooking cancels the booking with the given ID.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64, reason string) error {
	ctx, span := instrumentation.StartCalAPISpan(ctx,
		instrumentation.ServiceBookings, instrumentation.OperationCancel)
	defer span.End()

	path := "/bookings/" + strconv.FormatInt(bookingID, 10)
	if err := c.doV1(ctx, http.MethodDelete, path, nil, cancelRequest{Reason: reason}, nil); err != nil {
		return err
	}

	c.logger.Info("booking cancelled", logging.BookingID(bookingID))
	return nil
}

// FindBookingAt looks up the attendee's booking that starts at the given
// local date and time. Returns ErrNoMatchingBooking when nothing matches.
func (c *Client) FindBookingAt(ctx context.Context, attendeeEmail, date, start, timeZone string) (*Booking, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timeZone, err)
	}
	target, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date or time, expected YYYY-MM-DD and HH:MM: %w", err)
	}

	bookings, err := c.ListBookings(ctx, attendeeEmail)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if bookings[i].StartTime.Equal(target) {
			return &bookings[i], nil
		}
	}
	return nil, ErrNoMatchingBooking
}

// CancelBookingAt cancels the attendee's booking at the given local date
// and time and returns the booking that was cancelled.
func (c *Client) CancelBookingAt(ctx context.Context, attendeeEmail, date, start, timeZone, reason string) (*Booking, error) {
	booking, err := c.FindBookingAt(ctx, attendeeEmail, date, start, timeZone)
	if err != nil {
		return nil, err
	}
	if err := c.CancelBooking(ctx, booking.ID, reason); err != nil {
		return nil, err
	}
	return booking, nil
}

// GetSlots returns the available start times for an event type between
// dateFrom and dateTo (inclusive, YYYY-MM-DD), sorted chronologically.
func (c *Client) GetSlots(ctx context.Context, eventTypeID int64, dateFrom, dateTo, timeZone string) ([]Slot, error) {
	ctx, span := instrumentation.StartCalAPISpan(ctx,
		instrumentation.ServiceSlots, instrumentation.OperationSlots)
	defer span.End()

	query := url.Values{
		"eventTypeId": {strconv.FormatInt(eventTypeID, 10)},
		"startTime":   {dateFrom},
		"endTime":     {dateTo},
	}
	if timeZone != "" {
		query.Set("timeZone", timeZone)
	}

	var resp slotsResponse
	if err := c.doV1(ctx, http.MethodGet, "/slots", query, nil, &resp); err != nil {
		return nil, err
	}

	var slots []Slot
	for _, daySlots := range resp.Slots {
		slots = append(slots, daySlots...)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time.Before(slots[j].Time) })

	return slots, nil
}

// doV1 performs a v1 API request, authenticating via the apiKey query
// parameter. A non-nil body is JSON-encoded; a non-nil out receives the
// decoded response.
func (c *Client) doV1(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	return c.execute(ctx, c.v1Client, method, c.v1BaseURL+path, query, payload, out)
}

// doV2 performs a v2 API request; the oauth2 client adds the Bearer token.
func (c *Client) doV2(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	return c.execute(ctx, c.v2Client, method, c.v2BaseURL+path, query, nil, out)
}

// execute runs the request with retries. Network errors, HTTP 429 and 5xx
// are retried with exponential backoff; all other HTTP errors are permanent.
func (c *Client) execute(ctx context.Context, hc *http.Client, method, rawURL string, query url.Values, payload []byte, out interface{}) error {
	operation := func() ([]byte, error) {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if len(query) > 0 {
			req.URL.RawQuery = query.Encode()
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Message:    extractErrorMessage(data),
				Body:       string(data),
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, apiErr
			}
			return nil, backoff.Permanent(apiErr)
		}

		return data, nil
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries))
	if err != nil {
		c.logger.Debug("cal.com request failed",
			"method", method,
			"url", rawURL,
			logging.Err(err))
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode cal.com response: %w", err)
		}
	}
	return nil
}

// extractErrorMessage pulls a human-readable message out of an error
// response body, falling back to the raw text.
func extractErrorMessage(data []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
