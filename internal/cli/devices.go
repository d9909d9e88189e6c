package cli

import (
	"fmt"
	"sort"

	"github.com/rileyhilliard/pulse/internal/credential"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

// devicesCommand prints the device metadata the dashboard uses for labels.
func devicesCommand(cmd *cobra.Command) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.Token == "" {
		return errors.New(errors.ErrAuth,
			"No auth token configured",
			"Run 'pulse login --save' or set PULSE_AUTH_TOKEN.")
	}

	client := newAPIClient(cfg)
	cred := credential.Credential{Token: cfg.Auth.Token}

	var devices []dashboard.Device
	if MachineMode() {
		devices, err = client.ListDevices(cmd.Context(), cred)
	} else {
		spinner := ui.NewSpinnerTo("Fetching devices from "+cfg.APIURL(), cmd.ErrOrStderr())
		spinner.Start()
		devices, err = client.ListDevices(cmd.Context(), cred)
		if err != nil {
			spinner.Fail()
		} else {
			spinner.Success()
		}
	}
	if err != nil {
		return err
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Key < devices[j].Key })

	out := cmd.OutOrStdout()
	if MachineMode() {
		if devices == nil {
			devices = []dashboard.Device{}
		}
		return WriteJSONSuccess(out, devices)
	}

	if len(devices) == 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render("No devices registered."))
		return nil
	}
	fmt.Fprintln(out, renderDevices(devices))
	return nil
}

// renderDevices formats devices as a table. Missing names and units are
// shown as "-".
func renderDevices(devices []dashboard.Device) string {
	columns := []ui.TableColumn{
		{Title: "KEY", Width: 12},
		{Title: "NAME", Width: 16},
		{Title: "UNIT", Width: 6},
	}
	rows := make([][]string, len(devices))
	for i, d := range devices {
		rows[i] = []string{string(d.Key), orDash(d.DisplayName), orDash(d.Unit)}
	}
	return ui.RenderSimpleTable(columns, rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
