// Package imagefile implements a flash partition backed by a raw image file,
// the same bytes a programmer would dump from the device. Missing or short
// images are extended with erased pages.
package imagefile

import (
	"io"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/flash"
)

var _ flash.Driver = &Driver{}

// Driver is a flash.Driver over an image file.
type Driver struct {
	mu   sync.Mutex
	path string
	geo  flash.Geometry
	base int64
	f    *os.File

	mustExist bool
}

// New returns a Driver for the image at path. The file is opened by Init.
func New(path string, geo flash.Geometry) *Driver {
	return &Driver{
		path: path,
		geo:  geo,
	}
}

// Open is like New, but Init fails instead of creating a missing image.
func Open(path string, geo flash.Geometry) *Driver {
	d := New(path, geo)
	d.mustExist = true
	return d
}

// Init opens the image and makes sure the region is fully backed.
func (d *Driver) Init(r flash.Region) (flash.Geometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.geo.Validate(); err != nil {
		return flash.Geometry{}, err
	}
	if r.Base < 0 {
		return flash.Geometry{}, pkgerrors.Errorf("negative region base %d", r.Base)
	}

	flag := os.O_RDWR | os.O_CREATE
	if d.mustExist {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(d.path, flag, 0644)
	if err != nil {
		return flash.Geometry{}, pkgerrors.Wrapf(err, "failed to open image %s", d.path)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return flash.Geometry{}, pkgerrors.Wrapf(err, "failed to stat image %s", d.path)
	}

	end := r.Base + d.geo.Size()
	if st.Size() < end {
		logrus.WithFields(logrus.Fields{
			"path": d.path,
			"size": st.Size(),
			"want": end,
		}).Info("extending flash image with erased pages")

		pad := make([]byte, end-st.Size())
		flash.Fill(pad, flash.ErasedByte)
		if _, err := f.WriteAt(pad, st.Size()); err != nil {
			_ = f.Close()
			return flash.Geometry{}, pkgerrors.Wrapf(err, "failed to extend image %s", d.path)
		}
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return flash.Geometry{}, pkgerrors.Wrapf(err, "failed to sync image %s", d.path)
		}
	}

	d.f = f
	d.base = r.Base
	return d.geo, nil
}

// Erase fills the whole region with erased bytes.
func (d *Driver) Erase() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return flash.ErrNotInitialized
	}

	buf := make([]byte, d.geo.Size())
	flash.Fill(buf, flash.ErasedByte)
	if _, err := d.f.WriteAt(buf, d.base); err != nil {
		return pkgerrors.Wrapf(err, "failed to erase image region at %d", d.base)
	}
	return d.f.Sync()
}

// Program ANDs buf into page and syncs the image.
func (d *Driver) Program(page int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return flash.ErrNotInitialized
	}
	if page < 0 || page >= d.geo.PageCount {
		return flash.ErrOutOfRange
	}

	cur := make([]byte, d.geo.PageSize)
	if err := d.readPage(page, cur); err != nil {
		return err
	}
	flash.ProgramBits(cur, buf)

	if _, err := d.f.WriteAt(cur, d.offset(page)); err != nil {
		return pkgerrors.Wrapf(err, "failed to write page %d", page)
	}
	return d.f.Sync()
}

// Read copies page into buf.
func (d *Driver) Read(page int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return flash.ErrNotInitialized
	}
	if page < 0 || page >= d.geo.PageCount {
		return flash.ErrOutOfRange
	}
	return d.readPage(page, buf)
}

// Close closes the image file.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

func (d *Driver) readPage(page int, buf []byte) error {
	n := len(buf)
	if n > d.geo.PageSize {
		n = d.geo.PageSize
	}
	if _, err := d.f.ReadAt(buf[:n], d.offset(page)); err != nil && err != io.EOF {
		return pkgerrors.Wrapf(err, "failed to read page %d", page)
	}
	return nil
}

func (d *Driver) offset(page int) int64 {
	return d.base + int64(page)*int64(d.geo.PageSize)
}

// Create writes a fully erased image of geo at path, replacing any existing file.
func Create(path string, geo flash.Geometry) error {
	if err := geo.Validate(); err != nil {
		return err
	}

	buf := make([]byte, geo.Size())
	flash.Fill(buf, flash.ErasedByte)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to create image %s", path)
	}
	return nil
}
