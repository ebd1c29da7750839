package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Backend:    ptr.To(BackendImage),
		ImagePath:  ptr.To("/var/lib/tscal/flash.bin"),
		BadgerDir:  ptr.To("/var/lib/tscal/badger"),
		Region:     ptr.To("dlog"),
		RegionBase: ptr.To(int64(0)),
		// Datalogger pages on the FT9xx are 256 bytes; the partition holds 16.
		PageSize:       ptr.To(256),
		PageCount:      ptr.To(16),
		VerifySchedule: ptr.To("@every 1h"),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Backend        *Backend `json:"backend,omitempty"`
	ImagePath      *string  `json:"imagePath,omitempty"`
	BadgerDir      *string  `json:"badgerDir,omitempty"`
	Region         *string  `json:"region,omitempty"`
	RegionBase     *int64   `json:"regionBase,omitempty"`
	PageSize       *int     `json:"pageSize,omitempty"`
	PageCount      *int     `json:"pageCount,omitempty"`
	VerifySchedule *string  `json:"verifySchedule,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Backend:        ptr.To(c.Backend()),
		ImagePath:      ptr.To(c.ImagePath()),
		BadgerDir:      ptr.To(c.BadgerDir()),
		Region:         ptr.To(c.Region()),
		RegionBase:     ptr.To(c.RegionBase()),
		PageSize:       ptr.To(c.PageSize()),
		PageCount:      ptr.To(c.PageCount()),
		VerifySchedule: ptr.To(c.VerifySchedule()),
	}

	return rawConfig, nil
}

func valueOr[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) Backend() Backend {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.Backend, defaultFileConfig.Backend)
}

func (f *File) ImagePath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.ImagePath, defaultFileConfig.ImagePath)
}

func (f *File) BadgerDir() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.BadgerDir, defaultFileConfig.BadgerDir)
}

func (f *File) Region() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.Region, defaultFileConfig.Region)
}

func (f *File) RegionBase() int64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.RegionBase, defaultFileConfig.RegionBase)
}

func (f *File) PageSize() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.PageSize, defaultFileConfig.PageSize)
}

func (f *File) PageCount() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.PageCount, defaultFileConfig.PageCount)
}

func (f *File) VerifySchedule() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.VerifySchedule, defaultFileConfig.VerifySchedule)
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if conf.Backend != nil && !conf.Backend.Valid() {
		return pkgerrors.Errorf("unknown backend %q in %s", *conf.Backend, f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"backend":        f.Backend(),
		"imagePath":      f.ImagePath(),
		"badgerDir":      f.BadgerDir(),
		"region":         f.Region(),
		"regionBase":     f.RegionBase(),
		"pageSize":       f.PageSize(),
		"pageCount":      f.PageCount(),
		"verifySchedule": f.VerifySchedule(),
	}
}
