package booking_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
	"github.com/redcardinal8/MeetingAgent/internal/server"
	"github.com/redcardinal8/MeetingAgent/internal/tools/common"
)

// registerCheckAvailabilityTool registers the tool that queries open slots
// for an event type.
func registerCheckAvailabilityTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("scheduler_check_availability",
		mcp.WithDescription("Check available time slots on Cal.com for an event type within a date range."),
		mcp.WithString("date_from",
			mcp.Description("First date to check in YYYY-MM-DD format; defaults to today")),
		mcp.WithString("date_to",
			mcp.Description("Last date to check in YYYY-MM-DD format; defaults to a week after date_from")),
		mcp.WithString("time_zone",
			mcp.Description("IANA timezone for the returned slot times; defaults to the configured timezone")),
		mcp.WithNumber("event_type_id",
			mcp.Description("Cal.com event type ID; defaults to the configured event type")),
	)

	handler := common.InstrumentedToolHandlerWithService("scheduler_check_availability",
		instrumentation.ServiceSlots, instrumentation.OperationSlots,
		sc.Metrics(), sc.AuditLogger(), makeCheckAvailabilityHandler(sc))
	s.AddTool(tool, handler)
}

func makeCheckAvailabilityHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		booking := sc.AppConfig().Booking

		eventTypeID := booking.EventTypeID
		if v, ok := args["event_type_id"].(float64); ok && v > 0 {
			eventTypeID = int64(v)
		}
		if eventTypeID == 0 {
			return mcp.NewToolResultError("no event type configured: pass event_type_id or set booking.event_type_id"), nil
		}

		timeZone := booking.TimeZone
		if v, ok := args["time_zone"].(string); ok && v != "" {
			timeZone = v
		}
		loc, err := time.LoadLocation(timeZone)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid time_zone %q", timeZone)), nil
		}

		dateFrom, _ := args["date_from"].(string)
		if dateFrom == "" {
			dateFrom = time.Now().In(loc).Format("2006-01-02")
		}
		fromDay, err := time.ParseInLocation("2006-01-02", dateFrom, loc)
		if err != nil {
			return mcp.NewToolResultError("date_from must be in YYYY-MM-DD format"), nil
		}

		dateTo, _ := args["date_to"].(string)
		if dateTo == "" {
			dateTo = fromDay.AddDate(0, 0, 7).Format("2006-01-02")
		} else if _, err := time.ParseInLocation("2006-01-02", dateTo, loc); err != nil {
			return mcp.NewToolResultError("date_to must be in YYYY-MM-DD format"), nil
		}

		client, err := sc.CalClient()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		slots, err := client.GetSlots(ctx, eventTypeID, dateFrom, dateTo, timeZone)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to check availability: %v", err)), nil
		}

		times := make([]string, 0, len(slots))
		for _, slot := range slots {
			times = append(times, slot.Time.In(loc).Format(time.RFC3339))
		}

		return jsonResult(map[string]interface{}{
			"status":        "success",
			"event_type_id": eventTypeID,
			"date_from":     dateFrom,
			"date_to":       dateTo,
			"time_zone":     timeZone,
			"slots":         times,
		})
	}
}
