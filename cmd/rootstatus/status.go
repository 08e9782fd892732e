package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/types"
	"github.com/rootstatus/rootstatus/pkg/version"
)

type statusData struct {
	status *types.Status
	config *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{status: st, config: conf}, nil
}

// warnVersionMismatch logs when the daemon runs a different build.
func warnVersionMismatch() {
	daemonVersion, err := apiClient.GetVersion()
	if err != nil || daemonVersion == version.Version {
		return
	}
	logrus.WithFields(logrus.Fields{
		"clientVersion": version.Version,
		"daemonVersion": daemonVersion,
	}).Warn("Version mismatch between client and daemon. Restart the daemon after upgrading.")
}

func NewStatusCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the daemon",
		Long:    `Get the displayed line, sensor health, watcher state and configuration of the running daemon.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(data.status)
			}

			warnVersionMismatch()

			conf := config.NewFileFromConfig(data.config, "")
			st := data.status

			cmd.Println(bold("Status line:"))
			if st.Line == "" {
				cmd.Println("  (nothing rendered yet)")
			} else {
				cmd.Printf("  %s\n", st.Line)
			}
			if st.LastRender != "" {
				cmd.Printf("  Last render: %s\n", bold("%s", st.LastRender))
			}
			cmd.Printf("  Renders in the last 10 minutes: %s\n", bold("%d", len(st.RecentRenders)))
			cmd.Printf("  Redraw pending: %s\n", bool2Text(st.WakePending))

			cmd.Println()

			cmd.Println(bold("Sensors:"))
			names := make([]string, 0, len(st.Sensors))
			for name := range st.Sensors {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				s := st.Sensors[name]
				cmd.Printf("  %-8s %s", name+":", sensorStatusText(s.Status))
				if s.Error != "" {
					cmd.Printf(" (%s)", s.Error)
				}
				cmd.Println()
			}

			cmd.Println()

			cmd.Println(bold("Watcher:"))
			cmd.Printf("  Charging: %s\n", bool2Text(st.Watcher.Charging))
			cmd.Printf("  On full charge: %s\n", bool2Text(st.Watcher.OnFullCharge))
			cmd.Printf("  Connection: %s\n", bold("%s", st.Watcher.Connection))
			interval := conf.ActiveInterval()
			if st.Watcher.OnFullCharge && st.Watcher.Connection != sensor.ConnectionNone.String() {
				interval = conf.IdleInterval()
			}
			cmd.Printf("  Polling every: %s\n", bold("%s", interval))

			cmd.Println()

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Idle interval: %s\n", bold("%s", conf.IdleInterval()))
			cmd.Printf("  Active interval: %s\n", bold("%s", conf.ActiveInterval()))
			cmd.Printf("  Temperature sensor: %s\n", bold("%s", conf.TemperatureSensor()))
			cmd.Printf("  Disk: %s\n", bold("%s", conf.DiskPath()))
			cmd.Printf("  Weather: %s\n", bool2Text(conf.WeatherEnabled()))
			if conf.WeatherEnabled() && conf.WeatherLocation() != "" {
				cmd.Printf("  Weather location: %s\n", bold("%s", conf.WeatherLocation()))
			}
			cmd.Printf("  Display command: %s\n", bold("%s", conf.DisplayCommand()))
			cmd.Printf("  Require battery: %s\n", bool2Text(conf.RequireBattery()))
			cmd.Printf("  Clock format: %s\n", bold("%s", conf.ClockFormat()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the daemon status as JSON")

	return cmd
}

func sensorStatusText(s string) string {
	switch s {
	case sensor.StatusOK.String():
		return color.GreenString(s)
	case sensor.StatusTransient.String():
		return color.YellowString(s)
	case sensor.StatusUnavailable.String():
		return color.RedString(s)
	default:
		return s
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
