package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tscal-dev/tscal/pkg/calibration"
	"github.com/tscal-dev/tscal/pkg/flash"
	"github.com/tscal-dev/tscal/pkg/flash/imagefile"
	"github.com/tscal-dev/tscal/pkg/partition"
)

var (
	imagePageSize  = 256
	imagePageCount = 16
	imageRegion    = "dlog"
	imageBase      int64
)

// NewImageCommand works on flash image files directly, without a daemon.
func NewImageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		Short:   "Work with flash image files",
		GroupID: gOffline,
		// The image commands do not talk to the daemon.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	f := cmd.PersistentFlags()
	f.IntVar(&imagePageSize, "page-size", imagePageSize, "flash page size in bytes")
	f.IntVar(&imagePageCount, "page-count", imagePageCount, "number of pages in the partition")
	f.StringVar(&imageRegion, "region", imageRegion, "partition name")
	f.Int64Var(&imageBase, "base", imageBase, "partition offset inside the image")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create PATH",
			Short: "Create an erased flash image",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				geo := imageGeometry()
				if err := imagefile.Create(args[0], geo); err != nil {
					return err
				}
				logrus.Infof("created %s (%d bytes)", args[0], geo.Size())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show PATH",
			Short: "Print the calibration record stored in an image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withImage(args[0], func(h *partition.Handle) error {
					rec, err := calibration.Read(h)
					if errors.Is(err, calibration.ErrNoValidRecord) {
						cmd.Println("No calibration stored.")
						return nil
					}
					if err != nil {
						return err
					}
					cmd.Printf("Key: %s\n", bold("%#08x", rec.Key))
					printTransform(cmd, rec.Transform())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "write PATH A B C D E F",
			Short: "Store a calibration in an image",
			Args:  cobra.ExactArgs(7),
			RunE: func(_ *cobra.Command, args []string) error {
				t, err := parseTransformArgs(args[1:])
				if err != nil {
					return err
				}
				return withImage(args[0], func(h *partition.Handle) error {
					rec := calibration.NewRecord(t)
					if err := calibration.Write(h, &rec); err != nil {
						return err
					}
					logrus.Infof("stored calibration %v in %s", t, args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "erase PATH",
			Short: "Erase the calibration partition of an image",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return withImage(args[0], calibration.Erase)
			},
		},
	)

	return cmd
}

func imageGeometry() flash.Geometry {
	return flash.Geometry{PageSize: imagePageSize, PageCount: imagePageCount}
}

// withImage opens the partition inside the existing image at path and
// passes it to fn.
func withImage(path string, fn func(h *partition.Handle) error) error {
	drv := imagefile.Open(path, imageGeometry())
	defer func() {
		if err := drv.Close(); err != nil {
			logrus.Errorf("failed to close %s: %v", path, err)
		}
	}()

	h, err := partition.NewManager(drv, flash.Region{Name: imageRegion, Base: imageBase}).Init()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return fn(h)
}
