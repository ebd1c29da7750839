package calibration

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidRecord means the page does not carry the validity key. This
	// is the normal state of a fresh or erased partition; callers fall back
	// to defaults.
	ErrNoValidRecord = errors.New("no valid calibration record")

	// ErrDriverFailure is matched by every error caused by the flash driver.
	ErrDriverFailure = errors.New("flash driver failure")

	// ErrPageTooSmall is returned when a record does not fit in one page.
	ErrPageTooSmall = errors.New("page too small for calibration record")

	// ErrBufferTooSmall is returned by Encode and Decode for short buffers.
	ErrBufferTooSmall = errors.New("buffer too small for calibration record")
)

// Stage is the step of a write that failed.
type Stage string

const (
	StageErase   Stage = "erase"
	StageProgram Stage = "program"
)

// WriteError is returned when the record could not be written. After a
// failed program the page is left erased and reads as ErrNoValidRecord.
type WriteError struct {
	Stage Stage
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("calibration write failed at %s: %v", e.Stage, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDriverFailure) hold.
func (e *WriteError) Is(target error) bool {
	return target == ErrDriverFailure
}

// ReadError is returned when the flash read itself failed.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("calibration read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDriverFailure) hold.
func (e *ReadError) Is(target error) bool {
	return target == ErrDriverFailure
}
