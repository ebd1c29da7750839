package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

func Uninstall() error {
	logrus.Infof("stopping tscal")

	if err := systemctl("disable", "--now", filepath.Base(UnitPath)); err != nil {
		return fmt.Errorf("%w. Are you root?", err)
	}

	logrus.Infof("removing systemd unit")

	// if the file doesn't exist, we don't need to remove it
	_, err := os.Stat(UnitPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", UnitPath, err)
	}

	err = os.Remove(UnitPath)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w. Are you root?", UnitPath, err)
	}

	return systemctl("daemon-reload")
}
