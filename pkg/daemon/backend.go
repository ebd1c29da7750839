package daemon

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/config"
	"github.com/tscal-dev/tscal/pkg/flash"
	"github.com/tscal-dev/tscal/pkg/flash/badgerflash"
	"github.com/tscal-dev/tscal/pkg/flash/imagefile"
)

// openDriver builds the flash driver selected by c. The returned func
// releases the backing storage.
func openDriver(c config.Config) (flash.Driver, func() error, error) {
	geo := flash.Geometry{PageSize: c.PageSize(), PageCount: c.PageCount()}
	noop := func() error { return nil }

	logrus.WithFields(logrus.Fields{
		"backend":   c.Backend(),
		"pageSize":  geo.PageSize,
		"pageCount": geo.PageCount,
	}).Debug("opening flash backend")

	switch c.Backend() {
	case config.BackendMemory:
		logrus.Warn("memory backend selected, calibration will not survive a restart")
		return flash.NewMemory(geo), noop, nil
	case config.BackendImage:
		if err := os.MkdirAll(filepath.Dir(c.ImagePath()), 0755); err != nil {
			return nil, nil, pkgerrors.Wrapf(err, "failed to create directory for %s", c.ImagePath())
		}
		d := imagefile.New(c.ImagePath(), geo)
		return d, d.Close, nil
	case config.BackendBadger:
		d := badgerflash.New(c.BadgerDir(), geo)
		return d, d.Close, nil
	default:
		return nil, nil, pkgerrors.Errorf("unknown backend %q", c.Backend())
	}
}
