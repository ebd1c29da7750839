package flash

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Driver = &Device{}

// Device is a wrapper of a Driver. It checks page bounds and buffer sizes
// before reaching the driver and traces every call.
type Device struct {
	drv    Driver
	region Region
	geo    Geometry
	ready  bool
}

// NewDevice returns a new Device backed by d.
func NewDevice(d Driver) *Device {
	return &Device{
		drv: d,
	}
}

// Init initializes the underlying driver and records its geometry.
func (d *Device) Init(r Region) (Geometry, error) {
	logrus.WithFields(logrus.Fields{
		"region": r.Name,
		"base":   r.Base,
	}).Trace("Trying to init flash partition")

	geo, err := d.drv.Init(r)
	if err != nil {
		return Geometry{}, pkgerrors.Wrapf(err, "failed to init partition %q", r.Name)
	}
	if err := geo.Validate(); err != nil {
		return Geometry{}, pkgerrors.Wrapf(err, "partition %q reported %d pages of %d bytes", r.Name, geo.PageCount, geo.PageSize)
	}

	d.region = r
	d.geo = geo
	d.ready = true

	logrus.WithFields(logrus.Fields{
		"region":    r.Name,
		"pageSize":  geo.PageSize,
		"pageCount": geo.PageCount,
	}).Trace("Init flash partition succeed")

	return geo, nil
}

// Geometry returns the geometry recorded by Init.
func (d *Device) Geometry() Geometry {
	return d.geo
}

// Erase erases the whole partition.
func (d *Device) Erase() error {
	if !d.ready {
		return ErrNotInitialized
	}

	logrus.WithFields(logrus.Fields{
		"region": d.region.Name,
	}).Trace("Trying to erase flash partition")

	if err := d.drv.Erase(); err != nil {
		return pkgerrors.Wrapf(err, "failed to erase partition %q", d.region.Name)
	}

	logrus.WithFields(logrus.Fields{
		"region": d.region.Name,
	}).Trace("Erase flash partition succeed")

	return nil
}

// Program writes buf into page.
func (d *Device) Program(page int, buf []byte) error {
	if err := d.check(page, buf); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"region": d.region.Name,
		"page":   page,
		"len":    len(buf),
	}).Trace("Trying to program flash page")

	if err := d.drv.Program(page, buf); err != nil {
		return pkgerrors.Wrapf(err, "failed to program page %d of partition %q", page, d.region.Name)
	}

	logrus.WithFields(logrus.Fields{
		"region": d.region.Name,
		"page":   page,
	}).Trace("Program flash page succeed")

	return nil
}

// Read reads page into buf.
func (d *Device) Read(page int, buf []byte) error {
	if err := d.check(page, buf); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"region": d.region.Name,
		"page":   page,
		"len":    len(buf),
	}).Trace("Trying to read flash page")

	if err := d.drv.Read(page, buf); err != nil {
		return pkgerrors.Wrapf(err, "failed to read page %d of partition %q", page, d.region.Name)
	}

	logrus.WithFields(logrus.Fields{
		"region": d.region.Name,
		"page":   page,
	}).Trace("Read flash page succeed")

	return nil
}

func (d *Device) check(page int, buf []byte) error {
	if !d.ready {
		return ErrNotInitialized
	}
	if page < 0 || page >= d.geo.PageCount {
		return pkgerrors.Wrapf(ErrOutOfRange, "page %d, partition has %d pages", page, d.geo.PageCount)
	}
	if len(buf) != d.geo.PageSize {
		return pkgerrors.Wrapf(ErrBufferLength, "got %d bytes, page is %d bytes", len(buf), d.geo.PageSize)
	}
	return nil
}
