package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	UnitPath = "/etc/systemd/system/tscal.service"
)

const unitTemplate = `[Unit]
Description=Touchscreen calibration store
After=local-fs.target

[Service]
Type=simple
ExecStart=/path/to/tscal daemon --config /path/to/config --daemon-socket /path/to/socket
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

// RenderUnit fills the systemd unit template.
func RenderUnit(exePath, configPath, socketPath string) string {
	return strings.NewReplacer(
		"/path/to/tscal", exePath,
		"/path/to/config", configPath,
		"/path/to/socket", socketPath,
	).Replace(unitTemplate)
}

func Install(configPath, socketPath string) error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}

	logrus.Infof("current executable path: %s", exePath)

	if err := os.MkdirAll(filepath.Dir(UnitPath), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(UnitPath), err)
	}

	// warn if the file already exists
	if _, err := os.Stat(UnitPath); err == nil {
		logrus.Warnf("%s already exists, overwriting", UnitPath)
	}

	logrus.Infof("writing systemd unit to %s", UnitPath)
	err = os.WriteFile(UnitPath, []byte(RenderUnit(exePath, configPath, socketPath)), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", UnitPath, err)
	}

	logrus.Infof("starting tscal")

	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	return systemctl("enable", "--now", filepath.Base(UnitPath))
}

func systemctl(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
