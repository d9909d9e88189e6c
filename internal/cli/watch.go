package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// watchCommand runs the dashboard TUI until the user quits.
func watchCommand(cmd *cobra.Command) error {
	if MachineMode() || !term.IsTerminal(int(os.Stdout.Fd())) {
		return tailCommand(cmd)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := initLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	sc, err := startStream(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	model := monitor.NewModel(sc.Controller, monitor.Options{Logout: sc.Logout})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Dashboard exited unexpectedly",
			"Try 'pulse tail' if your terminal doesn't support full-screen mode.")
	}
	return nil
}
