// Package booking_tools registers the MCP tools for scheduling meetings
// through Cal.com: booking, listing, cancelling, availability checks, and
// a conversational entry point that drives the same operations from free
// text.
//
// Write tools (booking and cancelling) are only registered when the server
// runs with writes enabled; in read-only mode the toolset is limited to
// listing, availability, and chat.
package booking_tools
