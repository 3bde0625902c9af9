// Package server holds the shared runtime state of the meetingagent MCP
// server: lazily constructed Cal.com clients, the chat assistant and its
// session store, health endpoints, and the dedicated metrics listener.
package server
