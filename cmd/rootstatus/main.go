package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rootstatus/rootstatus/pkg/client"
	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/daemon"
)

var (
	logLevel       = "info"
	unixSocketPath = client.DefaultSocketPath()
	configPath     = config.DefaultPath()
)

var apiClient *client.Client

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
		gInstallation,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: rootstatus daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'rootstatus' or install it with 'rootstatus install'.")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintf(os.Stderr, "  - Is %s owned by another user?\n", unixSocketPath)
	case errors.Is(err, daemon.ErrNoBattery):
		fmt.Fprintln(os.Stderr, "\nError: no battery found")
		fmt.Fprintf(os.Stderr, "  - On a desktop, set \"requireBattery\": false in %s\n", configPath)
	}
}

func main() {
	// A status line updater needs very little.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rootstatus",
		Short: "rootstatus writes a status line to the X root window",
		Long: `rootstatus writes a status line to the X root window.

It shows memory, disk, CPU, network, battery, weather and the time, refreshes
at the top of every minute and redraws within seconds when the charger or the
network is plugged in or out.

Running rootstatus without a subcommand starts the daemon in the foreground.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(); err != nil {
				return err
			}
			apiClient = client.NewClient(unixSocketPath)
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDaemon()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "rootstatus daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewOnceCommand(),
		NewRefreshCommand(),
		NewStatusCommand(),
		NewEventsCommand(),
		NewConfigCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
