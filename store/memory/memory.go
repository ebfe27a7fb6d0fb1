// Package memory provides an in-memory attendance.Store.
package memory

import (
	"context"
	"sync"

	"github.com/warp/worklog/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the encoded list, so callers never share slices with the
// store and malformed data can be simulated with SetRaw.
type Memory struct {
	mu    sync.RWMutex
	raw   []byte
	saves int
	err   error
}

func New() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]attendance.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	return attendance.DecodeEntries(m.raw)
}

func (m *Memory) Save(_ context.Context, entries []attendance.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	data, err := attendance.EncodeEntries(entries)
	if err != nil {
		return err
	}
	m.raw = data
	m.saves++
	return nil
}

// SetRaw replaces the stored document verbatim.
func (m *Memory) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), data...)
}

// Raw returns a copy of the stored document.
func (m *Memory) Raw() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.raw...)
}

// FailWith makes every subsequent Load and Save return err. Pass nil to heal.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Saves returns how many successful saves have happened.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
