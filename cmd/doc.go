// Package cmd implements the command-line interface for meetingagent.
//
// This package provides the following commands:
//   - chat: Interactive conversation with the scheduling assistant
//   - serve: Start the MCP server to provide scheduling tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The chat command is the default command when no subcommand is specified.
package cmd
