package main

import (
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tscal-dev/tscal/pkg/client"
	"github.com/tscal-dev/tscal/pkg/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage the daemon config file",
		GroupID: gOffline,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				logrus.Infof("%s already exists, use --force to overwrite", configPath)
				return nil
			}
			if err := config.NewFileFromConfig(nil, configPath).Save(); err != nil {
				return err
			}
			logrus.Infof("wrote default config to %s", configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	cmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "show",
			Short: "Print the config the daemon is running with",
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := client.NewClient(unixSocketPath).GetConfig()
				if err != nil {
					return err
				}
				fields := config.NewFileFromConfig(c, "").LogrusFields()
				keys := make([]string, 0, len(fields))
				for k := range fields {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					cmd.Printf("  %s: %s\n", k, bold("%v", fields[k]))
				}
				return nil
			},
		},
	)

	return cmd
}
