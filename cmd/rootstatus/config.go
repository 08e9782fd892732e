package main

import (
	"encoding/json"
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rootstatus/rootstatus/pkg/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Print the effective configuration",
		GroupID: gAdvanced,
		Long: `Print the effective configuration, defaults included, as read from the config file.

Send SIGHUP to the daemon (or 'systemctl --user reload rootstatus') after editing the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			raw, err := config.NewRawFileConfigFromConfig(conf)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(raw); err != nil {
				return pkgerrors.Wrapf(err, "failed to encode config")
			}
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	force := false

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
			}
			if err := writeDefaultConfig(configPath); err != nil {
				return err
			}
			logrus.Infof("wrote default config to %s", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func writeDefaultConfig(path string) error {
	raw, err := config.NewRawFileConfigFromConfig(config.NewFileFromConfig(nil, path))
	if err != nil {
		return err
	}
	if err := config.NewFileFromConfig(raw, path).Save(); err != nil {
		return pkgerrors.Wrapf(err, "failed to save config")
	}
	return nil
}
