package calibration

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// RecordStore is the subset of Store used by Loader.
type RecordStore interface {
	Read() (*Record, error)
	Write(rec *Record) error
	Erase() error
}

// Loader holds the transform currently in use. It never fails hard:
// a missing record means defaults, a failing driver means keeping the last
// known good values.
type Loader struct {
	mu      sync.RWMutex
	store   RecordStore
	current TouchTransform
	source  Source
}

// NewLoader returns a Loader on store, starting from DefaultTransform.
func NewLoader(store RecordStore) *Loader {
	return &Loader{
		store:   store,
		current: DefaultTransform,
		source:  SourceDefault,
	}
}

// Boot loads the stored record. The returned error is informational: the
// loader always ends up with a usable transform.
func (l *Loader) Boot() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.store.Read()
	switch {
	case err == nil:
		l.current = rec.Transform()
		l.source = SourceFlash
		logrus.WithField("transform", l.current).Info("calibration loaded from flash")
	case errors.Is(err, ErrNoValidRecord):
		logrus.Info("no stored calibration, using defaults")
	default:
		logrus.Errorf("failed to read calibration, using %s values: %v", l.source, err)
	}

	return err
}

// Save persists t. On failure the current transform is left unchanged.
func (l *Loader) Save(t TouchTransform) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := NewRecord(t)
	if err := l.store.Write(&rec); err != nil {
		logrus.Errorf("failed to save calibration, keeping %s values: %v", l.source, err)
		return err
	}

	l.current = t
	l.source = SourceFlash
	logrus.WithField("transform", t).Info("calibration saved")

	return nil
}

// Erase erases the stored record and falls back to defaults. On failure the
// current transform is left unchanged.
func (l *Loader) Erase() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Erase(); err != nil {
		logrus.Errorf("failed to erase calibration, keeping %s values: %v", l.source, err)
		return err
	}

	l.current = DefaultTransform
	l.source = SourceDefault
	logrus.Info("calibration erased")

	return nil
}

// Current returns the transform in use and where it came from.
func (l *Loader) Current() (TouchTransform, Source) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.current, l.source
}

// Verify re-reads the stored record and reports whether it still matches
// the transform in use. Defaults match a partition without a record.
func (l *Loader) Verify() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, err := l.store.Read()
	if errors.Is(err, ErrNoValidRecord) {
		return l.source == SourceDefault, nil
	}
	if err != nil {
		return false, err
	}

	return l.source == SourceFlash && rec.Transform() == l.current, nil
}
