package flash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) (*Memory, *Device) {
	t.Helper()

	m := NewMemory(Geometry{PageSize: 32, PageCount: 2})
	d := NewDevice(m)
	_, err := d.Init(Region{Name: "test"})
	require.NoError(t, err)
	return m, d
}

func TestDeviceNotInitialized(t *testing.T) {
	d := NewDevice(NewMemory(Geometry{PageSize: 32, PageCount: 2}))

	assert.ErrorIs(t, d.Erase(), ErrNotInitialized)
	assert.ErrorIs(t, d.Program(0, make([]byte, 32)), ErrNotInitialized)
	assert.ErrorIs(t, d.Read(0, make([]byte, 32)), ErrNotInitialized)
}

func TestDeviceBounds(t *testing.T) {
	m, d := newTestDevice(t)

	assert.ErrorIs(t, d.Read(-1, make([]byte, 32)), ErrOutOfRange)
	assert.ErrorIs(t, d.Read(2, make([]byte, 32)), ErrOutOfRange)
	assert.ErrorIs(t, d.Program(0, make([]byte, 31)), ErrBufferLength)
	assert.ErrorIs(t, d.Read(0, make([]byte, 33)), ErrBufferLength)
	assert.Equal(t, 0, m.Count(OpRead)+m.Count(OpProgram), "bad calls never reach the driver")
}

func TestDeviceWrapsDriverErrors(t *testing.T) {
	m, d := newTestDevice(t)
	m.InjectFault(OpRead, nil)

	err := d.Read(0, make([]byte, 32))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Contains(t, err.Error(), `partition "test"`)
}

func TestMemoryNORSemantics(t *testing.T) {
	m, d := newTestDevice(t)

	buf := bytes.Repeat([]byte{0x0F}, 32)
	require.NoError(t, d.Program(1, buf))
	require.NoError(t, d.Program(1, bytes.Repeat([]byte{0xF3}, 32)))
	assert.Equal(t, bytes.Repeat([]byte{0x03}, 32), m.Page(1), "programming only clears bits")

	require.NoError(t, d.Erase())
	out := make([]byte, 32)
	require.NoError(t, d.Read(1, out))
	assert.Equal(t, bytes.Repeat([]byte{ErasedByte}, 32), out)
}

func TestMemoryFaultsAndCounters(t *testing.T) {
	m, d := newTestDevice(t)

	m.InjectFault(OpProgram, nil)
	err := d.Program(0, bytes.Repeat([]byte{0x00}, 32))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, bytes.Repeat([]byte{ErasedByte}, 32), m.Page(0), "failed program leaves page as is")
	assert.Equal(t, make([]byte, 32), m.LastProgram())

	m.ClearFaults()
	require.NoError(t, d.Program(0, make([]byte, 32)))
	assert.Equal(t, 2, m.Count(OpProgram))
	assert.Equal(t, 1, m.Count(OpInit))
}

func TestGeometry(t *testing.T) {
	assert.Equal(t, int64(256*16), Geometry{PageSize: 256, PageCount: 16}.Size())
	assert.NoError(t, Geometry{PageSize: 1, PageCount: 1}.Validate())
	assert.ErrorIs(t, Geometry{}.Validate(), ErrBadGeometry)
}

func TestProgramBits(t *testing.T) {
	dst := []byte{0xFF, 0xF0, 0x0F}
	ProgramBits(dst, []byte{0x3C, 0xFF})
	assert.Equal(t, []byte{0x3C, 0xF0, 0x0F}, dst)
}
