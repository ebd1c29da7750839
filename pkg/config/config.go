package config

import "github.com/sirupsen/logrus"

// Backend selects the flash driver the daemon runs on.
type Backend string

const (
	// BackendMemory keeps the partition in memory. Nothing survives a restart.
	BackendMemory Backend = "memory"
	// BackendImage keeps the partition in a raw flash image file.
	BackendImage Backend = "image"
	// BackendBadger keeps the partition in a Badger database.
	BackendBadger Backend = "badger"
)

// Valid reports whether b is a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendImage, BackendBadger:
		return true
	}
	return false
}

type Config interface {
	Backend() Backend
	ImagePath() string
	BadgerDir() string
	Region() string
	RegionBase() int64
	PageSize() int
	PageCount() int
	// VerifySchedule is a cron spec for the periodic integrity check.
	// Empty disables it.
	VerifySchedule() string

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
