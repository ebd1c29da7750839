package calibration

import (
	"encoding/binary"

	pkgerrors "github.com/pkg/errors"
)

// NewPageBuffer returns a page-sized buffer with every byte set to fill.
func NewPageBuffer(pageSize int, fill byte) []byte {
	buf := make([]byte, pageSize)
	if fill != 0 {
		for i := range buf {
			buf[i] = fill
		}
	}
	return buf
}

// Encode writes rec into the leading RecordSize bytes of buf. Bytes past
// RecordSize are left untouched.
func Encode(rec Record, buf []byte) error {
	if len(buf) < RecordSize {
		return pkgerrors.Wrapf(ErrBufferTooSmall, "need %d bytes, got %d", RecordSize, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[:KeySize], rec.Key)
	copy(buf[KeySize:RecordSize], rec.Payload[:])
	return nil
}

// Decode reads a record from the leading RecordSize bytes of buf. It does
// not check the key.
func Decode(buf []byte) (Record, error) {
	var rec Record
	if len(buf) < RecordSize {
		return rec, pkgerrors.Wrapf(ErrBufferTooSmall, "need %d bytes, got %d", RecordSize, len(buf))
	}
	rec.Key = binary.LittleEndian.Uint32(buf[:KeySize])
	copy(rec.Payload[:], buf[KeySize:RecordSize])
	return rec, nil
}
