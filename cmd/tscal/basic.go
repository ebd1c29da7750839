package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tscal-dev/tscal/pkg/calibration"
	"github.com/tscal-dev/tscal/pkg/client"
	"github.com/tscal-dev/tscal/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)

			daemonVersion, err := apiClient.GetVersion()
			if err != nil {
				logrus.Debugf("failed to get daemon version: %v", err)
				return
			}
			if daemonVersion != version.Version {
				logrus.WithFields(logrus.Fields{
					"clientVersion": version.Version,
					"daemonVersion": daemonVersion,
				}).Warn("version mismatch between client and daemon")
			}
		},
	}
}

func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Short:   "Print the calibration record stored in flash",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := apiClient.GetCalibration()
			if errors.Is(err, client.ErrNoValidRecord) {
				cmd.Println("No calibration stored. The daemon is using defaults.")
				return nil
			}
			if err != nil {
				return err
			}

			cmd.Printf("Key: %s\n", bold("%#08x", rec.Key))
			printTransform(cmd, rec.Transform)
			return nil
		},
	}
}

func NewSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set A B C D E F",
		Short:   "Store a new calibration",
		GroupID: gBasic,
		Long: `Store a new calibration.

Takes the six touch transform coefficients in 16.16 fixed point, decimal
or 0x prefixed hex. The partition is erased and rewritten.`,
		Args: cobra.ExactArgs(6),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := parseTransformArgs(args)
			if err != nil {
				return err
			}

			ret, err := apiClient.SetCalibration(t)
			if err != nil {
				return fmt.Errorf("failed to set calibration: %v", err)
			}
			if ret != "" {
				logrus.Debugf("daemon responded: %s", ret)
			}

			logrus.Infof("successfully stored calibration %v", t)
			return nil
		},
	}
}

func NewEraseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "erase",
		Short:   "Erase the stored calibration",
		GroupID: gBasic,
		Long: `Erase the stored calibration.

The partition is erased and the daemon switches to the identity transform.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.EraseCalibration()
			if err != nil {
				return fmt.Errorf("failed to erase calibration: %v", err)
			}
			if ret != "" {
				logrus.Debugf("daemon responded: %s", ret)
			}

			logrus.Info("successfully erased calibration, defaults are now in use")
			return nil
		},
	}
}

func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "verify",
		Short:   "Check that flash matches the calibration in use",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := apiClient.VerifyCalibration()
			if err != nil {
				return err
			}
			cmd.Printf("Flash matches calibration in use: %s\n", bool2Text(ok))
			if !ok {
				return fmt.Errorf("calibration record lost or changed")
			}
			return nil
		},
	}
}

func NewDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dump",
		Short:   "Hex dump the record page",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := apiClient.GetPage()
			if err != nil {
				return err
			}
			cmd.Print(hex.Dump(page))
			return nil
		},
	}
}

func printTransform(cmd *cobra.Command, t [6]int32) {
	for i, v := range t {
		cmd.Printf("  %c: %s\n", 'A'+i, bold("%s", formatCoefficient(v)))
	}
	if calibration.TouchTransform(t) == calibration.DefaultTransform {
		cmd.Println("  (identity)")
	}
}
