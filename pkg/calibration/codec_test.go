package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLeavesTailUntouched(t *testing.T) {
	buf := NewPageBuffer(64, FillByte)
	rec := sampleRecord()
	rec.Key = ValidKey

	require.NoError(t, Encode(rec, buf))

	for i := RecordSize; i < len(buf); i++ {
		assert.Equal(t, FillByte, buf[i], "byte %d", i)
	}

	out, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, rec, out)
}

func TestEncodeShortBuffer(t *testing.T) {
	err := Encode(sampleRecord(), make([]byte, RecordSize-1))
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = Decode(make([]byte, 3))
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeErasedPage(t *testing.T) {
	rec, err := Decode(NewPageBuffer(RecordSize, 0xFF))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), rec.Key)
	assert.False(t, rec.Valid())
}

func TestNewPageBuffer(t *testing.T) {
	assert.Equal(t, make([]byte, 16), NewPageBuffer(16, 0))
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA}, NewPageBuffer(3, 0xAA))
}

func TestTransformRoundTrip(t *testing.T) {
	tr := TouchTransform{1, -1, 0x7fffffff, -0x80000000, 0x10000, 0}
	rec := NewRecord(tr)

	assert.Equal(t, uint32(0), rec.Key, "new records are unstamped")
	assert.Equal(t, tr, rec.Transform())
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, rec.Payload[4:8])
}
