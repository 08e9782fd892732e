package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	daemonutils "github.com/rootstatus/rootstatus/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install rootstatus as a systemd user service",
		GroupID: gInstallation,
		Long: `Install rootstatus as a systemd user service.

This makes rootstatus start with your graphical session. Do not run this as root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if os.Geteuid() == 0 {
				logrus.Warn("installing a user service as root, it will only run in root's session")
			}

			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := writeDefaultConfig(configPath); err != nil {
					return err
				}
				logrus.Infof("wrote default config to %s", configPath)
			}

			if err := daemonutils.Install(); err != nil {
				return fmt.Errorf("failed to install daemon: %w", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("systemd will use the current binary (%s) at login so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``rootstatus install'' again.\n", exePath)

			return nil
		},
	}
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall the rootstatus systemd user service",
		GroupID: gInstallation,
		Long:    `Stop rootstatus and remove its systemd user service.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := daemonutils.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall daemon: %w", err)
			}

			cmd.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `rootstatus' again. If you want a complete uninstall, you can remove both config file and rootstatus itself manually.\n", configPath)

			return nil
		},
	}
}
