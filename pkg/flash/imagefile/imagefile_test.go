package imagefile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tscal-dev/tscal/pkg/flash"
)

var geo = flash.Geometry{PageSize: 64, PageCount: 4}

func TestInitCreatesErasedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	d := New(path, geo)
	got, err := d.Init(flash.Region{Name: "dlog"})
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, geo, got)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{flash.ErasedByte}, int(geo.Size())), b)
}

func TestRegionBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	prefix := []byte("bootloader")
	require.NoError(t, os.WriteFile(path, prefix, 0644))

	d := New(path, geo)
	_, err := d.Init(flash.Region{Name: "dlog", Base: int64(len(prefix))})
	require.NoError(t, err)

	page := bytes.Repeat([]byte{0x11}, geo.PageSize)
	require.NoError(t, d.Program(1, page))
	require.NoError(t, d.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prefix, b[:len(prefix)], "bytes before the region are untouched")
	off := len(prefix) + geo.PageSize
	assert.Equal(t, page, b[off:off+geo.PageSize])
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	d := New(path, geo)
	_, err := d.Init(flash.Region{Name: "dlog"})
	require.NoError(t, err)
	page := bytes.Repeat([]byte{0xA5}, geo.PageSize)
	require.NoError(t, d.Program(0, page))
	require.NoError(t, d.Close())

	d = New(path, geo)
	_, err = d.Init(flash.Region{Name: "dlog"})
	require.NoError(t, err)
	defer d.Close()

	out := make([]byte, geo.PageSize)
	require.NoError(t, d.Read(0, out))
	assert.Equal(t, page, out)

	require.NoError(t, d.Erase())
	require.NoError(t, d.Read(0, out))
	assert.Equal(t, bytes.Repeat([]byte{flash.ErasedByte}, geo.PageSize), out)
}

func TestProgramIsNOR(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "flash.bin"), geo)
	_, err := d.Init(flash.Region{Name: "dlog"})
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Program(2, bytes.Repeat([]byte{0xF0}, geo.PageSize)))
	require.NoError(t, d.Program(2, bytes.Repeat([]byte{0x3C}, geo.PageSize)))

	out := make([]byte, geo.PageSize)
	require.NoError(t, d.Read(2, out))
	assert.Equal(t, bytes.Repeat([]byte{0x30}, geo.PageSize), out)
}

func TestNotInitialized(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "flash.bin"), geo)

	assert.ErrorIs(t, d.Erase(), flash.ErrNotInitialized)
	assert.ErrorIs(t, d.Read(0, make([]byte, geo.PageSize)), flash.ErrNotInitialized)
	assert.NoError(t, d.Close())
}

func TestOutOfRange(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "flash.bin"), geo)
	_, err := d.Init(flash.Region{Name: "dlog"})
	require.NoError(t, err)
	defer d.Close()

	assert.ErrorIs(t, d.Read(geo.PageCount, make([]byte, geo.PageSize)), flash.ErrOutOfRange)
	assert.ErrorIs(t, d.Program(-1, make([]byte, geo.PageSize)), flash.ErrOutOfRange)
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0644))

	require.NoError(t, Create(path, geo))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{flash.ErasedByte}, int(geo.Size())), b)

	assert.ErrorIs(t, Create(path, flash.Geometry{}), flash.ErrBadGeometry)
}

func TestOpenMissingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")

	d := Open(path, geo)
	_, err := d.Init(flash.Region{Name: "dlog"})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, d.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "image must not be created")
}

func TestOpenExistingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	require.NoError(t, Create(path, geo))

	d := Open(path, geo)
	_, err := d.Init(flash.Region{Name: "dlog"})
	require.NoError(t, err)
	defer d.Close()

	buf := make([]byte, geo.PageSize)
	require.NoError(t, d.Read(0, buf))
	assert.Equal(t, bytes.Repeat([]byte{flash.ErasedByte}, geo.PageSize), buf)
}
