package flash

import "errors"

// ErasedByte is the value every byte of a page holds after an erase.
const ErasedByte = 0xFF

var (
	// ErrNotInitialized is returned when a page operation runs before Init.
	ErrNotInitialized = errors.New("flash partition not initialized")

	// ErrOutOfRange is returned for a page index outside the partition.
	ErrOutOfRange = errors.New("page index out of range")

	// ErrBufferLength is returned when a buffer is not exactly one page long.
	ErrBufferLength = errors.New("buffer length does not match page size")

	// ErrBadGeometry is returned when a driver reports an unusable geometry.
	ErrBadGeometry = errors.New("invalid partition geometry")
)

// Region describes where the partition lives. On a device this is fixed at
// link time; host drivers use Name to namespace their storage and Base as a
// byte offset into their backing medium.
type Region struct {
	Name string `json:"name"`
	Base int64  `json:"base"`
}

// Geometry is the partition layout reported by a driver at init time.
type Geometry struct {
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
}

// Size returns the partition size in bytes.
func (g Geometry) Size() int64 {
	return int64(g.PageSize) * int64(g.PageCount)
}

// Validate reports whether the geometry is usable.
func (g Geometry) Validate() error {
	if g.PageSize <= 0 || g.PageCount <= 0 {
		return ErrBadGeometry
	}
	return nil
}

// Driver is the flash partition capability. Erase always clears the whole
// region; Program and Read move exactly one page.
type Driver interface {
	Init(r Region) (Geometry, error)
	Erase() error
	Program(page int, buf []byte) error
	Read(page int, buf []byte) error
}
