package cli

import (
	"os"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	loginUsernameFlag      string
	loginPasswordStdinFlag bool
	loginSaveFlag          bool
	configInitForce        bool
	configInitGlobal       bool
)

// watchCmd opens the interactive dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of sensor channels",
	Long: `Connect to the telemetry stream and render every sensor channel as a
live chart. Channels appear as their first reading arrives.

Falls back to 'pulse tail' output when stdout isn't a terminal.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Redraw from the latest snapshot
  s           Cycle sort order (key/name/latest)
  up/k        Select previous channel
  down/j      Select next channel
  Enter       Open channel history
  Esc         Back to the channel list
  L           Log out (drops the token for this run)
  ?           Show help

Examples:
  pulse watch
  pulse watch --server http://sensors.local:3000 --capacity 500
  PULSE_AUTH_TOKEN=... pulse watch --interval 250ms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd)
	},
}

// tailCmd prints readings as they arrive
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print readings as they arrive",
	Long: `Connect to the telemetry stream and print one line per reading.

With --json every reading and status change is a JSON object on its own
line, suitable for jq or a log shipper. Exits non-zero if the stream
closes or reconnects are exhausted.

Examples:
  pulse tail
  pulse tail --json | jq 'select(.type == "sample")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tailCommand(cmd)
	},
}

// loginCmd exchanges credentials for a token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print an auth token",
	Long: `Exchange a username and password for a bearer token.

Prompts for anything not passed as a flag. The token is printed so it can
be exported as PULSE_AUTH_TOKEN, or stored in the config file with --save.

Examples:
  pulse login
  pulse login --username admin --save
  echo "$PASSWORD" | pulse login --username admin --password-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginCommand(cmd, loginUsernameFlag, loginPasswordStdinFlag, loginSaveFlag)
	},
}

// devicesCmd lists device metadata
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices known to the server",
	Long: `Fetch device metadata (channel key, display name, unit) from the REST API.

Examples:
  pulse devices
  pulse devices --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return devicesCommand(cmd)
	},
}

// configCmd groups config file management
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pulse config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with defaults",
	Long: `Write .pulse.yaml in the current directory (or the global config with
--global) populated with default values.

Examples:
  pulse config init
  pulse config init --global --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitCommand(cmd, configInitForce, configInitGlobal)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one value in the config file",
	Long: `Set a dotted key in the active config file, keeping comments intact.

Examples:
  pulse config set server.url http://sensors.local:3000
  pulse config set buffer.capacity 500`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd, args[0], args[1])
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for pulse.

Examples:
  # Bash
  pulse completion bash > /etc/bash_completion.d/pulse

  # Zsh
  pulse completion zsh > "${fpath[1]}/_pulse"

  # Fish
  pulse completion fish > ~/.config/fish/completions/pulse.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// login command flags
	loginCmd.Flags().StringVarP(&loginUsernameFlag, "username", "u", "", "account name (default auth.username)")
	loginCmd.Flags().BoolVar(&loginPasswordStdinFlag, "password-stdin", false, "read the password from stdin")
	loginCmd.Flags().BoolVar(&loginSaveFlag, "save", false, "store the token in the config file")

	// config init flags
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite existing config")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/pulse/config.yaml")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)

	// Register all commands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}
