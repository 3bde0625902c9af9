// Package calcom provides a client for the Cal.com scheduling API.
//
// The client speaks to two API surfaces, mirroring how Cal.com splits its
// functionality today:
//
//   - The v1 API (https://api.cal.com/v1) is used for creating and
//     cancelling bookings and for querying availability slots. It
//     authenticates via an apiKey query parameter.
//   - The v2 API (https://api.cal.com/v2) is used for listing bookings by
//     attendee, which v1 does not support filtering for. It authenticates
//     via a Bearer token carried by an oauth2 static token source.
//
// All operations retry transient failures (network errors, HTTP 429 and
// 5xx) with exponential backoff. Client errors such as HTTP 409 (slot
// conflict) are returned immediately as *APIError so callers can inspect
// the status code.
package calcom
