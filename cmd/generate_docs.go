package cmd

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/redcardinal8/MeetingAgent/internal/server"
	"github.com/redcardinal8/MeetingAgent/internal/tools/booking_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// No credentials needed: the tool definitions are static and clients
	// are created lazily on first call.
	sc := server.NewServerContext(server.Config{})

	mcpSrv := mcpserver.NewMCPServer("meetingagent", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register in write mode so the documentation covers all tools,
	// including those hidden in read-only mode.
	booking_tools.RegisterBookingTools(mcpSrv, sc, false)

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// writeTools are hidden unless the server runs with --yolo.
var writeTools = []string{
	"scheduler_book_meeting",
	"scheduler_cancel_meeting",
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running meetingagent as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Read-Only Mode\n\n")
	sb.WriteString("By default the server runs in read-only mode. Tools marked *write* below are only available when the server is started with `--yolo`.\n\n")

	sb.WriteString("## Scheduler Tools\n\n")
	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	if slices.Contains(writeTools, tool.Name) {
		sb.WriteString(fmt.Sprintf("### %s (write)\n\n", tool.Name))
	} else {
		sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))
	}

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			propMap, ok := tool.InputSchema.Properties[name].(map[string]interface{})
			if !ok {
				continue
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s): ", name, requiredStr))
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else if t, ok := propMap["type"].(string); ok {
				sb.WriteString(fmt.Sprintf("%s parameter", t))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
