package flash

import (
	"errors"
	"sync"
)

// Op names a driver operation, used for fault injection and counters.
type Op string

const (
	OpInit    Op = "init"
	OpErase   Op = "erase"
	OpProgram Op = "program"
	OpRead    Op = "read"
)

// ErrInjected is the default error returned by an injected fault.
var ErrInjected = errors.New("injected flash fault")

var _ Driver = &Memory{}

// Memory is an in-memory NOR flash partition. A new Memory is fully erased.
type Memory struct {
	mu     sync.Mutex
	geo    Geometry
	pages  [][]byte
	faults map[Op]error
	counts map[Op]int
	last   []byte
}

// NewMemory returns a new erased Memory with the given geometry.
func NewMemory(geo Geometry) *Memory {
	m := &Memory{
		geo:    geo,
		faults: make(map[Op]error),
		counts: make(map[Op]int),
	}
	if geo.Validate() != nil {
		return m
	}
	m.pages = make([][]byte, geo.PageCount)
	for i := range m.pages {
		m.pages[i] = make([]byte, geo.PageSize)
		Fill(m.pages[i], ErasedByte)
	}
	return m
}

// Init reports the configured geometry.
func (m *Memory) Init(_ Region) (Geometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[OpInit]++
	if err := m.faults[OpInit]; err != nil {
		return Geometry{}, err
	}
	return m.geo, nil
}

// Erase sets every page to ErasedByte.
func (m *Memory) Erase() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[OpErase]++
	if err := m.faults[OpErase]; err != nil {
		return err
	}
	for _, p := range m.pages {
		Fill(p, ErasedByte)
	}
	return nil
}

// Program ANDs buf into page.
func (m *Memory) Program(page int, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[OpProgram]++
	m.last = append(m.last[:0], buf...)
	if err := m.faults[OpProgram]; err != nil {
		return err
	}
	if page < 0 || page >= len(m.pages) {
		return ErrOutOfRange
	}
	ProgramBits(m.pages[page], buf)
	return nil
}

// Read copies page into buf.
func (m *Memory) Read(page int, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[OpRead]++
	if err := m.faults[OpRead]; err != nil {
		return err
	}
	if page < 0 || page >= len(m.pages) {
		return ErrOutOfRange
	}
	copy(buf, m.pages[page])
	return nil
}

// InjectFault makes every following call of op fail with err. A nil err
// uses ErrInjected.
func (m *Memory) InjectFault(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		err = ErrInjected
	}
	m.faults[op] = err
}

// ClearFaults removes all injected faults.
func (m *Memory) ClearFaults() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.faults = make(map[Op]error)
}

// Count returns how many times op was called, including failed calls.
func (m *Memory) Count(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.counts[op]
}

// LastProgram returns a copy of the buffer passed to the most recent
// Program call, whether or not it succeeded.
func (m *Memory) LastProgram() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return nil
	}
	return append([]byte(nil), m.last...)
}

// Page returns a copy of the raw contents of page.
func (m *Memory) Page(page int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.pages[page]...)
}

// SetPage overwrites the raw contents of page, bypassing NOR semantics.
func (m *Memory) SetPage(page int, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	Fill(m.pages[page], ErasedByte)
	copy(m.pages[page], data)
}
