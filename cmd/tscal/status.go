package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Get the current calibration status",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetStatus()
			if err != nil {
				return err
			}

			cmd.Println(bold("Calibration in use:"))
			source := color.YellowString(st.Source)
			if st.Source == "flash" {
				source = color.GreenString(st.Source)
			}
			cmd.Printf("  Source: %s\n", bold("%s", source))
			printTransform(cmd, st.Transform)
			cmd.Printf("  Flash in sync: %s\n", bool2Text(st.Verified))

			cmd.Println()

			p := st.Partition
			cmd.Println(bold("Partition:"))
			cmd.Printf("  Backend: %s\n", bold("%s", p.Backend))
			cmd.Printf("  Region: %s\n", bold("%s @ %#x", p.Region, p.Base))
			cmd.Printf("  Geometry: %s\n", bold("%d pages x %d bytes", p.PageCount, p.PageSize))
			cmd.Printf("  Record size: %s\n", bold("%d bytes", p.RecordSize))
			return nil
		},
	}
}
