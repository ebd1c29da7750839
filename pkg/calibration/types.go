package calibration

import "encoding/binary"

const (
	// ValidKey marks a page as holding a genuine record.
	ValidKey uint32 = 0xD72F91A3

	// FillByte pads the page beyond the encoded record.
	FillByte byte = 0xFF

	// KeySize is the encoded size of the validity key.
	KeySize = 4

	// PayloadSize is the size of the calibration payload: six 32-bit
	// transform coefficients.
	PayloadSize = 6 * 4

	// RecordSize is the encoded size of a Record.
	RecordSize = KeySize + PayloadSize

	// Page is the page index the record lives in.
	Page = 0
)

// Record is the persisted calibration record. The store treats Payload as
// opaque bytes.
type Record struct {
	Key     uint32
	Payload [PayloadSize]byte
}

// Valid reports whether the record carries the validity key.
func (r Record) Valid() bool {
	return r.Key == ValidKey
}

// TouchTransform holds the touch controller transform matrix registers A..F
// in 16.16 fixed point.
type TouchTransform [6]int32

// DefaultTransform is the identity transform, used until a valid record
// has been read.
var DefaultTransform = TouchTransform{0x10000, 0, 0, 0, 0x10000, 0}

// NewRecord returns an unstamped record carrying t.
func NewRecord(t TouchTransform) Record {
	var r Record
	for i, v := range t {
		binary.LittleEndian.PutUint32(r.Payload[i*4:], uint32(v))
	}
	return r
}

// Transform decodes the payload as a touch transform.
func (r Record) Transform() TouchTransform {
	var t TouchTransform
	for i := range t {
		t[i] = int32(binary.LittleEndian.Uint32(r.Payload[i*4:]))
	}
	return t
}

// Source tells where the current transform came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFlash   Source = "flash"
)
