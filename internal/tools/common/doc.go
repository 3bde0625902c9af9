// Package common holds helpers shared by the MCP tool packages, chiefly
// the instrumentation wrapper applied to every registered tool handler.
package common
