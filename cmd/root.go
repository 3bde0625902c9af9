package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the meetingagent application
var rootCmd = &cobra.Command{
	Use:   "meetingagent",
	Short: "Conversational meeting scheduling on Cal.com",
	Long: `meetingagent books, lists, and cancels Cal.com meetings through a
conversational assistant.

It can run as:
  - An interactive chat assistant in the terminal (default)
  - An MCP (Model Context Protocol) server for AI assistants

A Cal.com API key must be provided via the CAL_COM_API_KEY environment
variable.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetingagent version %s\n" .Version}}`)

	// If no subcommand is provided, run the chat command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
