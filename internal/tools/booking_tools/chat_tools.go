package booking_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/redcardinal8/MeetingAgent/internal/server"
	"github.com/redcardinal8/MeetingAgent/internal/tools/common"
)

// registerChatTool registers the conversational entry point. It exposes
// the same assistant that backs the interactive chat command, so MCP
// clients can drive scheduling with free text instead of structured
// arguments.
func registerChatTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("scheduler_chat",
		mcp.WithDescription("Talk to the meeting assistant in free text. "+
			"It books, lists, and cancels Cal.com meetings, asking follow-up questions when details are missing. "+
			"Pass the returned session_id on follow-up calls to continue the conversation."),
		mcp.WithString("message", mcp.Required(),
			mcp.Description("The user's message")),
		mcp.WithString("session_id",
			mcp.Description("Session ID from a previous call; omit to start a new conversation")),
	)

	handler := common.InstrumentedToolHandler("scheduler_chat",
		sc.Metrics(), sc.AuditLogger(), makeChatHandler(sc))
	s.AddTool(tool, handler)
}

func makeChatHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		message, ok := args["message"].(string)
		if !ok || message == "" {
			return mcp.NewToolResultError("message is required"), nil
		}
		sessionID, _ := args["session_id"].(string)

		assistant, err := sc.Assistant()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		turn := assistant.HandleTurn(ctx, sessionID, message)

		return jsonResult(map[string]interface{}{
			"session_id": turn.SessionID,
			"intent":     string(turn.Intent),
			"reply":      turn.Reply,
		})
	}
}
