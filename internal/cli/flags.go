package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/spf13/cobra"
)

// GlobalFlags holds flags shared by every command. Non-zero values override
// the config file and PULSE_* environment variables.
type GlobalFlags struct {
	Config      string
	Server      string
	Token       string
	Capacity    int
	Interval    time.Duration
	MetricsAddr string
	NoColor     bool
	Verbose     bool
	JSON        bool
}

var globalFlags GlobalFlags

// AddGlobalFlags registers the shared flags as persistent flags on cmd.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.Config, "config", "", "config file (default ./.pulse.yaml, then ~/.config/pulse/config.yaml)")
	pf.StringVar(&flags.Server, "server", "", "telemetry server URL (e.g. http://localhost:3000)")
	pf.StringVar(&flags.Token, "token", "", "auth token (prefer PULSE_AUTH_TOKEN)")
	pf.IntVar(&flags.Capacity, "capacity", 0, "samples kept per channel")
	pf.DurationVar(&flags.Interval, "interval", 0, "dashboard refresh interval (e.g. 500ms, 2s)")
	pf.StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&flags.JSON, "json", false, "machine-readable JSON output")
}

// Apply copies set flags over cfg.
func (f GlobalFlags) Apply(cfg *config.Config) {
	if f.Server != "" {
		cfg.Server.URL = f.Server
	}
	if f.Token != "" {
		cfg.Auth.Token = f.Token
	}
	if f.Capacity != 0 {
		cfg.Buffer.Capacity = f.Capacity
	}
	if f.Interval != 0 {
		cfg.Dashboard.PublishInterval = f.Interval
	}
	if f.MetricsAddr != "" {
		cfg.Metrics.Addr = f.MetricsAddr
	}
}

// loadConfig resolves config from file, env and flags, then validates it.
// The returned path is empty when no config file exists.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(globalFlags.Config)
	if err != nil {
		return nil, "", err
	}

	globalFlags.Apply(cfg)

	if err := config.Validate(cfg); err != nil {
		if path == "" {
			return nil, "", err
		}
		return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Config in %s isn't valid", path),
			"Fix the value above, or override it with a flag.")
	}
	return cfg, path, nil
}

// MachineMode returns true if machine-readable output is enabled.
func MachineMode() bool {
	return globalFlags.JSON
}
