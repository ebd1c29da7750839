package flash

// ProgramBits programs src over dst the way NOR flash does: a bit can only
// go from 1 to 0, so programming a page that was not erased ANDs the data.
func ProgramBits(dst, src []byte) {
	for i := range dst {
		if i >= len(src) {
			return
		}
		dst[i] &= src[i]
	}
}

// Fill sets every byte of buf to b.
func Fill(buf []byte, b byte) {
	for i := range buf {
		buf[i] = b
	}
}
