package booking_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/redcardinal8/MeetingAgent/internal/calcom"
	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
	"github.com/redcardinal8/MeetingAgent/internal/server"
	"github.com/redcardinal8/MeetingAgent/internal/tools/common"
)

// registerBookMeetingTool registers the tool that creates a new booking.
func registerBookMeetingTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("scheduler_book_meeting",
		mcp.WithDescription("Book a new meeting on Cal.com. Date and time are interpreted in the given timezone."),
		mcp.WithString("attendee_name", mcp.Required(),
			mcp.Description("Full name of the meeting attendee")),
		mcp.WithString("attendee_email", mcp.Required(),
			mcp.Description("Email address of the meeting attendee")),
		mcp.WithString("date", mcp.Required(),
			mcp.Description("Meeting date in YYYY-MM-DD format")),
		mcp.WithString("start", mcp.Required(),
			mcp.Description("Start time in HH:MM format (24-hour)")),
		mcp.WithString("title",
			mcp.Description("Meeting title; defaults to 'Meeting with <attendee_name>'")),
		mcp.WithString("time_zone",
			mcp.Description("IANA timezone for date and start, e.g. Europe/Berlin; defaults to the configured timezone")),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Meeting length in minutes; defaults to the configured duration")),
		mcp.WithNumber("event_type_id",
			mcp.Description("Cal.com event type ID; defaults to the configured event type")),
		mcp.WithString("location",
			mcp.Description("Location type, e.g. 'online' or 'in-person'; defaults to the configured location")),
		mcp.WithString("location_option",
			mcp.Description("Extra location detail, e.g. an address or meeting link")),
		mcp.WithString("description",
			mcp.Description("Optional meeting description or notes")),
	)

	handler := common.InstrumentedToolHandlerWithService("scheduler_book_meeting",
		instrumentation.ServiceBookings, instrumentation.OperationCreate,
		sc.Metrics(), sc.AuditLogger(), makeBookMeetingHandler(sc))
	s.AddTool(tool, handler)
}

func makeBookMeetingHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		booking := sc.AppConfig().Booking

		attendeeName, ok := args["attendee_name"].(string)
		if !ok || attendeeName == "" {
			return mcp.NewToolResultError("attendee_name is required"), nil
		}
		attendeeEmail, ok := args["attendee_email"].(string)
		if !ok || attendeeEmail == "" {
			return mcp.NewToolResultError("attendee_email is required"), nil
		}
		date, ok := args["date"].(string)
		if !ok || date == "" {
			return mcp.NewToolResultError("date is required (YYYY-MM-DD)"), nil
		}
		start, ok := args["start"].(string)
		if !ok || start == "" {
			return mcp.NewToolResultError("start is required (HH:MM)"), nil
		}

		in := calcom.BookingInput{
			EventTypeID:     booking.EventTypeID,
			Date:            date,
			Start:           start,
			TimeZone:        booking.TimeZone,
			DurationMinutes: booking.DurationMinutes,
			Language:        booking.Language,
			AttendeeName:    attendeeName,
			AttendeeEmail:   attendeeEmail,
			Location:        booking.Location,
			LocationOption:  booking.LocationOption,
		}

		if v, ok := args["title"].(string); ok && v != "" {
			in.Title = v
		} else {
			in.Title = "Meeting with " + attendeeName
		}
		if v, ok := args["time_zone"].(string); ok && v != "" {
			in.TimeZone = v
		}
		if v, ok := args["duration_minutes"].(float64); ok && v > 0 {
			in.DurationMinutes = int(v)
		}
		if v, ok := args["event_type_id"].(float64); ok && v > 0 {
			in.EventTypeID = int64(v)
		}
		if v, ok := args["location"].(string); ok && v != "" {
			in.Location = v
		}
		if v, ok := args["location_option"].(string); ok && v != "" {
			in.LocationOption = v
		}
		if v, ok := args["description"].(string); ok {
			in.Description = v
		}

		if in.EventTypeID == 0 {
			return mcp.NewToolResultError("no event type configured: pass event_type_id or set booking.event_type_id"), nil
		}

		client, err := sc.CalClient()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		created, err := client.CreateBooking(ctx, in)
		if err != nil {
			if calcom.IsConflict(err) {
				return mcp.NewToolResultError(
					"The requested time slot is unavailable or conflicts with booking rules on Cal.com."), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to book meeting: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"status":  "success",
			"message": "Meeting successfully booked on Cal.com.",
			"meeting_details": map[string]interface{}{
				"booking_id":         created.ID,
				"title":              created.Title,
				"start_time_utc":     created.StartTime,
				"end_time_utc":       created.EndTime,
				"event_type_id":      in.EventTypeID,
				"requested_timezone": in.TimeZone,
				"duration_minutes":   in.DurationMinutes,
				"attendee_email":     attendeeEmail,
			},
		})
	}
}

// registerListMeetingsTool registers the tool that lists an attendee's
// bookings.
func registerListMeetingsTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("scheduler_list_meetings",
		mcp.WithDescription("List all meetings scheduled on Cal.com for an attendee."),
		mcp.WithString("attendee_email", mcp.Required(),
			mcp.Description("Email address the meetings were booked with")),
	)

	handler := common.InstrumentedToolHandlerWithService("scheduler_list_meetings",
		instrumentation.ServiceBookings, instrumentation.OperationList,
		sc.Metrics(), sc.AuditLogger(), makeListMeetingsHandler(sc))
	s.AddTool(tool, handler)
}

func makeListMeetingsHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		attendeeEmail, ok := args["attendee_email"].(string)
		if !ok || attendeeEmail == "" {
			return mcp.NewToolResultError("attendee_email is required"), nil
		}

		client, err := sc.CalClient()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		bookings, err := client.ListBookings(ctx, attendeeEmail)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to retrieve meetings: %v", err)), nil
		}

		message := fmt.Sprintf("Scheduled Cal.com events for %s.", attendeeEmail)
		if len(bookings) == 0 {
			message = fmt.Sprintf("No meetings found for %s.", attendeeEmail)
		}

		return jsonResult(map[string]interface{}{
			"status":  "success",
			"message": message,
			"events":  bookings,
		})
	}
}

// registerCancelMeetingTool registers the tool that cancels a booking by
// attendee, date and time.
func registerCancelMeetingTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("scheduler_cancel_meeting",
		mcp.WithDescription("Cancel a meeting on Cal.com, identified by attendee email, date and start time."),
		mcp.WithString("attendee_email", mcp.Required(),
			mcp.Description("Email address the meeting was booked with")),
		mcp.WithString("date", mcp.Required(),
			mcp.Description("Date of the meeting to cancel in YYYY-MM-DD format")),
		mcp.WithString("start", mcp.Required(),
			mcp.Description("Start time of the meeting to cancel in HH:MM format (24-hour)")),
		mcp.WithString("time_zone",
			mcp.Description("IANA timezone for date and start; defaults to the configured timezone")),
		mcp.WithString("reason",
			mcp.Description("Optional reason for cancelling the meeting")),
	)

	handler := common.InstrumentedToolHandlerWithService("scheduler_cancel_meeting",
		instrumentation.ServiceBookings, instrumentation.OperationCancel,
		sc.Metrics(), sc.AuditLogger(), makeCancelMeetingHandler(sc))
	s.AddTool(tool, handler)
}

func makeCancelMeetingHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		attendeeEmail, ok := args["attendee_email"].(string)
		if !ok || attendeeEmail == "" {
			return mcp.NewToolResultError("attendee_email is required"), nil
		}
		date, ok := args["date"].(string)
		if !ok || date == "" {
			return mcp.NewToolResultError("date is required (YYYY-MM-DD)"), nil
		}
		start, ok := args["start"].(string)
		if !ok || start == "" {
			return mcp.NewToolResultError("start is required (HH:MM)"), nil
		}

		timeZone := sc.AppConfig().Booking.TimeZone
		if v, ok := args["time_zone"].(string); ok && v != "" {
			timeZone = v
		}
		reason, _ := args["reason"].(string)

		client, err := sc.CalClient()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cancelled, err := client.CancelBookingAt(ctx, attendeeEmail, date, start, timeZone, reason)
		if err != nil {
			if errors.Is(err, calcom.ErrNoMatchingBooking) {
				return mcp.NewToolResultError(fmt.Sprintf(
					"No meeting found for %s on %s at %s %s.", attendeeEmail, date, start, timeZone)), nil
			}
			if calcom.IsNotFound(err) {
				return mcp.NewToolResultError("The meeting no longer exists on Cal.com; it may have already been cancelled."), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to cancel meeting: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"status": "success",
			"message": fmt.Sprintf("Successfully cancelled meeting '%s' scheduled for %s at %s %s.",
				cancelled.Title, date, start, timeZone),
			"booking_details": cancelled,
		})
	}
}

// jsonResult marshals the payload as an indented JSON tool result.
func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
