package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginResult is the --json payload of a successful login.
type loginResult struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	SavedTo  string `json:"saved_to,omitempty"`
}

// loginCommand exchanges credentials for a token, prompting for whatever the
// flags and config don't supply.
func loginCommand(cmd *cobra.Command, username string, passwordStdin, save bool) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if username == "" {
		username = cfg.Auth.Username
	}

	var password string
	if passwordStdin {
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	if (username == "" || password == "") && !MachineMode() && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := promptCredentials(&username, &password); err != nil {
			return err
		}
	}

	client := newAPIClient(cfg)
	if MachineMode() {
		cred, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		result := loginResult{Username: username, Token: cred.Token}
		if save {
			if result.SavedTo, err = saveToken(path, username, cred.Token); err != nil {
				return err
			}
		}
		return WriteJSONSuccess(cmd.OutOrStdout(), result)
	}

	spinner := ui.NewSpinnerTo("Logging in as "+username, cmd.ErrOrStderr())
	spinner.Start()
	cred, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()

	out := cmd.OutOrStdout()
	if save {
		saved, err := saveToken(path, username, cred.Token)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess+" Token saved to "+saved))
		ui.PrintWarning("The token is stored in plain text. Keep " + saved + " private.")
		return nil
	}
	fmt.Fprintf(out, "export PULSE_AUTH_TOKEN=%s\n", cred.Token)
	return nil
}

// promptCredentials asks for the missing username and password.
func promptCredentials(username, password *string) error {
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(required("password")),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrAuth,
			"Failed to get user input",
			"Pass --username and --password-stdin instead")
	}
	return nil
}

// readPassword reads the first line of r, without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.WrapWithCode(err, errors.ErrAuth,
			"Couldn't read the password from stdin", "")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New(errors.ErrAuth,
			"No password on stdin",
			"Pipe the password in, e.g. echo \"$PASSWORD\" | pulse login --password-stdin")
	}
	return password, nil
}

// saveToken stores the token (and the username it belongs to) in the active
// config file, creating the global config when there is none. It returns the
// file written.
func saveToken(path, username, token string) (string, error) {
	if path == "" {
		path = config.GlobalConfigPath()
		if path == "" {
			return "", errors.New(errors.ErrConfig,
				"Can't locate a home directory for the global config",
				"Pass --config to choose a file, or export PULSE_AUTH_TOKEN instead")
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.WriteDefault(path, config.DefaultConfig(), false); err != nil {
				return "", errors.WrapWithCode(err, errors.ErrConfig, "Couldn't create "+path, "")
			}
		}
	}

	if err := config.SetValue(path, "auth.token", token); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Couldn't save the token to "+path, "")
	}
	if username != "" {
		if err := config.SetValue(path, "auth.username", username); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig, "Couldn't save the username to "+path, "")
		}
	}
	return path, nil
}
