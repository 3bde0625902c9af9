package booking_tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/redcardinal8/MeetingAgent/internal/server"
)

// RegisterBookingTools registers all scheduling tools on the MCP server.
// When readOnly is true, tools that modify bookings are left out.
func RegisterBookingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	registerListMeetingsTool(s, sc)
	registerCheckAvailabilityTool(s, sc)
	registerChatTool(s, sc)

	if readOnly {
		sc.Logger().Info("read-only mode: booking and cancellation tools disabled")
		return
	}

	registerBookMeetingTool(s, sc)
	registerCancelMeetingTool(s, sc)
}
