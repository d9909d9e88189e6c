package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

// configInitCommand writes a default config file.
func configInitCommand(cmd *cobra.Command, force, global bool) error {
	path := globalFlags.Config
	switch {
	case global:
		path = config.GlobalConfigPath()
		if path == "" {
			return errors.New(errors.ErrConfig,
				"Can't locate a home directory for the global config",
				"Use --config to choose a path instead")
		}
	case path == "":
		cwd, err := os.Getwd()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot determine current directory",
				"Check directory permissions")
		}
		path = filepath.Join(cwd, config.ConfigFileName)
	}

	if err := config.WriteDefault(path, config.DefaultConfig(), force); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Pass --force to replace an existing file")
	}

	if MachineMode() {
		return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": path})
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle().Render(ui.SymbolSuccess+" Wrote "+path))
	return nil
}

// configSetCommand changes one key in the active config file. The edit is
// rolled back if the result no longer validates.
func configSetCommand(cmd *cobra.Command, key, value string) error {
	path, err := config.Find(globalFlags.Config)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Config file not found",
			"Run 'pulse config init' to create one")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to read config file", "")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Keys are dotted paths like server.url or buffer.capacity")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, original, 0o600); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Couldn't restore "+path+" after an invalid edit", "")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("%s=%s would make the config invalid", key, value),
			"The file was left unchanged")
	}

	if MachineMode() {
		return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": path, "key": key, "value": value})
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle().Render(fmt.Sprintf("%s Set %s in %s", ui.SymbolSuccess, key, path)))
	return nil
}
