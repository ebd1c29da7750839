package types

// StoredRecord is the record found in flash.
type StoredRecord struct {
	Key       uint32   `json:"key"`
	Transform [6]int32 `json:"transform"`
}

// CalibrationStatus holds the transform in use and the partition it is kept in.
// This struct is shared between the daemon and client packages.
type CalibrationStatus struct {
	Transform [6]int32      `json:"transform"`
	Source    string        `json:"source"`
	Partition PartitionInfo `json:"partition"`
	// Verified is false when the last integrity check found flash out of
	// sync with the transform in use.
	Verified bool `json:"verified"`
}

// PartitionInfo describes the flash partition backing the store.
type PartitionInfo struct {
	Backend    string `json:"backend"`
	Region     string `json:"region"`
	Base       int64  `json:"base"`
	PageSize   int    `json:"pageSize"`
	PageCount  int    `json:"pageCount"`
	RecordSize int    `json:"recordSize"`
}
