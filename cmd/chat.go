package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redcardinal8/MeetingAgent/internal/chat"
	"github.com/redcardinal8/MeetingAgent/internal/config"
	"github.com/redcardinal8/MeetingAgent/internal/logging"
	"github.com/redcardinal8/MeetingAgent/internal/server"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive scheduling conversation",
		Long: `Chat starts an interactive conversation with the meeting assistant on
standard input. The assistant understands free-text requests to book,
list, and cancel meetings and to check availability, and asks follow-up
questions when details are missing.

Type "exit" or "quit" (or press Ctrl-D) to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath, debug)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

func runChat(cmd *cobra.Command, configPath string, debug bool) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg, debug)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := server.NewServerContext(server.Config{
		App:    cfg,
		Logger: slog.Default(),
	})
	defer func() { _ = sc.Shutdown(ctx) }()

	if !sc.HasAPIKey() {
		return fmt.Errorf("no Cal.com API key found: set the %s environment variable", server.EnvAPIKey)
	}

	assistant, err := sc.Assistant()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, chat.WelcomeMessage())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	sessionID := ""
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		turn := assistant.HandleTurn(ctx, sessionID, line)
		sessionID = turn.SessionID
		fmt.Fprintf(out, "\n%s\n", turn.Reply)
	}

	fmt.Fprintln(out, "\nGoodbye!")
	return scanner.Err()
}

// loadAppConfig loads the YAML configuration file, or returns defaults when
// no path is given.
func loadAppConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// setupLogging installs the default slog handler from the configuration,
// with the debug flag overriding the configured level.
func setupLogging(cfg *config.Config, debug bool) {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logging.Setup(level, cfg.Logging.Format)
}
