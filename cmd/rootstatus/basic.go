package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/daemon"
	"github.com/rootstatus/rootstatus/pkg/display"
	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/format"
	"github.com/rootstatus/rootstatus/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewOnceCommand() *cobra.Command {
	show := false

	cmd := &cobra.Command{
		Use:     "once",
		Short:   "Render the status line once",
		GroupID: gBasic,
		Long: `Render the status line once and print it to stdout.

With --show the line is also written to the root window. The daemon does not
need to be running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			var sink display.Sink
			if show {
				sink = display.NewRootWindow(conf.DisplayCommand())
			}

			loop := daemon.NewLoop(daemon.NewSensors(conf), format.New(conf.ClockFormat()), sink, nil, nil)

			ctx := cmd.Context()
			loop.FetchWeather(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), loop.Tick(ctx))

			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "also write the line to the root window")

	return cmd
}

func NewRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		Short:   "Redraw the status line now",
		GroupID: gBasic,
		Long: `Ask the running daemon to redraw the status line without waiting for the next minute.

Useful from scripts that change something shown on the line, e.g. after switching networks.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.Refresh()
			if err != nil {
				return fmt.Errorf("failed to refresh: %w", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			return nil
		},
	}
}

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		Short:   "Stream daemon events",
		GroupID: gAdvanced,
		Long: `Print state changes and renders of the running daemon as they happen, one per line.

Stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := apiClient.Events(ctx, func(e events.Event) error {
				switch e.Name {
				case events.StateChanged:
					p, err := events.DecodeAs[events.StateChangedEvent](e)
					if err != nil {
						return err
					}
					cmd.Printf("%s %s charging=%t full=%t connection=%s\n",
						bold("%s", e.Name), p.Reason, p.Charging, p.Full, p.Connection)
				case events.LineRendered:
					p, err := events.DecodeAs[events.LineRenderedEvent](e)
					if err != nil {
						return err
					}
					cmd.Printf("%s %q displayed=%s\n", bold("%s", e.Name), p.Line, bool2Text(p.DisplayOK))
				default:
					cmd.Printf("%s %s\n", e.Name, string(e.Data))
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to stream events: %w", err)
			}
			return nil
		},
	}
}
