// Package partition owns the flash partition that backs persistent device
// configuration. A Manager initializes the driver once; the Handle it returns
// is passed by reference to whatever stores data in the partition.
package partition

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/flash"
)

// ErrAlreadyInitialized is returned by a second Init on the same Manager.
var ErrAlreadyInitialized = errors.New("partition already initialized")

// InitError means the partition is not usable. Callers treat it as fatal
// for the rest of the session.
type InitError struct {
	Region string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("partition %q unusable: %v", e.Region, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Manager initializes a partition exactly once.
type Manager struct {
	mu     sync.Mutex
	drv    flash.Driver
	region flash.Region
	handle *Handle
}

// NewManager returns a Manager for region on drv.
func NewManager(drv flash.Driver, region flash.Region) *Manager {
	return &Manager{
		drv:    drv,
		region: region,
	}
}

// Init performs the one-time driver initialization and returns the handle.
func (m *Manager) Init() (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return nil, ErrAlreadyInitialized
	}

	dev := flash.NewDevice(m.drv)
	geo, err := dev.Init(m.region)
	if err != nil {
		return nil, &InitError{Region: m.region.Name, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"region":    m.region.Name,
		"pageSize":  geo.PageSize,
		"pageCount": geo.PageCount,
	}).Debug("partition initialized")

	m.handle = &Handle{
		dev:    dev,
		region: m.region,
		geo:    geo,
	}
	return m.handle, nil
}

// Handle is an initialized partition.
type Handle struct {
	dev    *flash.Device
	region flash.Region
	geo    flash.Geometry
}

// Geometry returns the page size and page count reported at init.
func (h *Handle) Geometry() flash.Geometry {
	return h.geo
}

// Region returns the region descriptor the partition was opened with.
func (h *Handle) Region() flash.Region {
	return h.region
}

// Device returns the bounds-checked driver for page operations.
func (h *Handle) Device() *flash.Device {
	return h.dev
}
