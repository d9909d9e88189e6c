package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

// rootCmd is the base command. Running it without a subcommand opens the
// dashboard.
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Live sensor telemetry in your terminal",
	Long: `pulse connects to a telemetry server over Socket.IO, buffers the most
recent readings per sensor channel, and renders them as live charts.

Authenticate with 'pulse login' or set PULSE_AUTH_TOKEN, then run
'pulse watch'. When stdout isn't a terminal, readings are printed one
per line instead.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd)
	},
}

func init() {
	AddGlobalFlags(rootCmd, &globalFlags)
	rootCmd.SuggestionsMinimumDistance = 2
}

// setupGlobals applies presentation flags that every command honors.
func setupGlobals(cmd *cobra.Command, args []string) error {
	if globalFlags.NoColor || os.Getenv("NO_COLOR") != "" {
		ui.DisableColors()
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if MachineMode() {
			_ = WriteJSONFromError(os.Stdout, err)
			os.Exit(1)
		}

		fmt.Fprint(os.Stderr, ui.ErrorStyle().Render(strings.TrimRight(err.Error(), "\n")))
		fmt.Fprintln(os.Stderr)
		if isUnknownCommandError(err) {
			fmt.Fprintln(os.Stderr, ui.MutedStyle().Render("Run 'pulse --help' to see available commands."))
		}
		os.Exit(1)
	}
}

// isUnknownCommandError reports whether err came from cobra's argument
// parsing rather than from a command.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// initLogging points the process logger at the configured destination.
// Interactive commands pass quiet so log lines never land on the alt-screen;
// they go to log.file when set and are dropped otherwise.
func initLogging(cfg *config.Config, quiet bool) (func(), error) {
	lc := logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON}
	if globalFlags.Verbose {
		lc.Level = "debug"
	}

	closeFn := func() {}
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.Log.File, err)
		}
		lc.Output = f
		closeFn = func() { _ = f.Close() }
	case quiet:
		lc.Output = io.Discard
	}

	logger.Init(lc)
	logger.SetDefault(logger.WithComponent("cli"))
	return closeFn, nil
}
