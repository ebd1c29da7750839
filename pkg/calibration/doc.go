// Package calibration persists touchscreen calibration in a flash partition.
// It contains:
//
//   - Record: the single fixed-size record kept in page 0 of the partition
//   - Encode/Decode: the byte layout of a Record inside a page buffer
//   - Store: write-with-validity-marking and read-with-validation
//   - Loader: the in-memory current transform, falling back to defaults
//
// The persisted page is the little-endian validity key, then the payload,
// then FillByte up to the page size. A page whose key is anything other than
// ValidKey holds no record; erased flash reads that way.
package calibration
