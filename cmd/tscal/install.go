package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tscal-dev/tscal/pkg/config"
	daemonutils "github.com/tscal-dev/tscal/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install tscal daemon as a systemd service",
		GroupID: gInstallation,
		Long: `Install tscal daemon as a systemd service.

This makes tscal run in the background and start on boot. A default config
file is written first if none exists. You must run this command as root.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := config.NewFileFromConfig(nil, configPath).Save(); err != nil {
					return err
				}
				logrus.Infof("wrote default config to %s", configPath)
			}

			err := daemonutils.Install(configPath, unixSocketPath)
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()
			cmd.Printf("systemd will start the current binary (%s). If it is moved or deleted, run ``tscal install'' again.\n", exePath)

			return nil
		},
	}
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall tscal daemon",
		GroupID: gInstallation,
		Long: `Stop tscal daemon and remove its systemd service.

Calibration data in flash is left untouched. You must run this command as root.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := daemonutils.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}
			logrus.Infof("successfully uninstalled tscal")
			return nil
		},
	}
}
