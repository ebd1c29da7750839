package calibration

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/partition"
)

// Write erases the partition, stamps rec with ValidKey and programs it into
// page 0 padded with FillByte. rec is modified.
func Write(h *partition.Handle, rec *Record) error {
	geo := h.Geometry()
	if geo.PageSize < RecordSize {
		return ErrPageTooSmall
	}
	dev := h.Device()

	if err := dev.Erase(); err != nil {
		return &WriteError{Stage: StageErase, Err: err}
	}

	rec.Key = ValidKey
	buf := NewPageBuffer(geo.PageSize, FillByte)
	if err := Encode(*rec, buf); err != nil {
		return err
	}

	if err := dev.Program(Page, buf); err != nil {
		return &WriteError{Stage: StageProgram, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"region": h.Region().Name,
		"page":   Page,
	}).Debug("calibration record written")

	return nil
}

// Read reads page 0 and returns the record if it carries ValidKey. A page
// without the key yields ErrNoValidRecord; a failed flash read yields a
// *ReadError.
func Read(h *partition.Handle) (*Record, error) {
	buf, err := ReadPage(h)
	if err != nil {
		return nil, err
	}

	rec, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	if !rec.Valid() {
		logrus.WithFields(logrus.Fields{
			"region": h.Region().Name,
			"key":    rec.Key,
		}).Debug("no valid calibration record")
		return nil, ErrNoValidRecord
	}

	return &rec, nil
}

// ReadPage returns the raw contents of the record page.
func ReadPage(h *partition.Handle) ([]byte, error) {
	geo := h.Geometry()
	if geo.PageSize < RecordSize {
		return nil, ErrPageTooSmall
	}

	buf := NewPageBuffer(geo.PageSize, 0)
	if err := h.Device().Read(Page, buf); err != nil {
		return nil, &ReadError{Err: err}
	}
	return buf, nil
}

// Erase erases the partition, invalidating any stored record.
func Erase(h *partition.Handle) error {
	if err := h.Device().Erase(); err != nil {
		return &WriteError{Stage: StageErase, Err: err}
	}
	return nil
}

// Store serializes record operations on one partition so a read never
// observes the window between erase and program.
type Store struct {
	mu sync.Mutex
	h  *partition.Handle
}

// NewStore returns a Store on h. It fails if a record does not fit in a page.
func NewStore(h *partition.Handle) (*Store, error) {
	if h.Geometry().PageSize < RecordSize {
		return nil, ErrPageTooSmall
	}
	return &Store{h: h}, nil
}

// Write is the serialized form of Write.
func (s *Store) Write(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Write(s.h, rec)
}

// Read is the serialized form of Read.
func (s *Store) Read() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Read(s.h)
}

// Erase is the serialized form of Erase.
func (s *Store) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Erase(s.h)
}

// Page is the serialized form of ReadPage.
func (s *Store) Page() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ReadPage(s.h)
}

// Handle returns the partition the store writes to.
func (s *Store) Handle() *partition.Handle {
	return s.h
}
