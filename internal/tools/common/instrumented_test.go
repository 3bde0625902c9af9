package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wrapped handlers must register directly with the mcp-go server.
var _ mcpserver.ToolHandlerFunc = InstrumentedToolHandler("test_tool", nil, nil, nil)

func TestInstrumentedToolHandlerRegistersWithServer(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "dev", mcpserver.WithToolCapabilities(true))

	handler := InstrumentedToolHandler("test_tool", nil, nil,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		})
	s.AddTool(mcp.NewTool("test_tool"), handler)

	require.Len(t, s.ListTools(), 1)
}

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "test_tool"
	req.Params.Arguments = args
	return req
}

func TestAttendeeEmailFromRequest(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"attendee_email": "jane@example.com"})
	assert.Equal(t, "jane@example.com", AttendeeEmailFromRequest(req))

	req = requestWithArgs(map[string]interface{}{"email": "bob@example.com"})
	assert.Equal(t, "bob@example.com", AttendeeEmailFromRequest(req))

	req = requestWithArgs(map[string]interface{}{"name": "Jane"})
	assert.Empty(t, AttendeeEmailFromRequest(req))

	req = requestWithArgs(nil)
	assert.Empty(t, AttendeeEmailFromRequest(req))
}

func TestInstrumentedToolHandlerPassesThrough(t *testing.T) {
	var called bool
	handler := InstrumentedToolHandler("test_tool", nil, nil,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			called = true
			return mcp.NewToolResultText("ok"), nil
		})

	result, err := handler(context.Background(), requestWithArgs(nil))
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, result.IsError)
}

func TestInstrumentedToolHandlerPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	handler := InstrumentedToolHandler("test_tool", nil, nil,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, wantErr
		})

	_, err := handler(context.Background(), requestWithArgs(nil))
	assert.ErrorIs(t, err, wantErr)
}

func TestInstrumentedToolHandlerKeepsErrorResult(t *testing.T) {
	handler := InstrumentedToolHandlerWithService("test_tool", "bookings", "create", nil, nil,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("bad input"), nil
		})

	result, err := handler(context.Background(), requestWithArgs(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
