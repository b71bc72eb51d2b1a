package prefs

import (
	"sync"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

var (
	_ types.Preferences       = (*Memory)(nil)
	_ types.PreferenceWatcher = (*Memory)(nil)
)

// Memory keeps preferences in a map. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	listeners
}

// NewMemory returns an empty in-memory preference set.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// GetString returns the value stored under key.
func (m *Memory) GetString(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// SetString stores value under key. Listeners hear about it only when the
// value changed.
func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	old, ok := m.values[key]
	m.values[key] = value
	m.mu.Unlock()

	if !ok || old != value {
		m.notify(key)
	}
	return nil
}

// OnChange registers fn to be called with the key of every changed value.
func (m *Memory) OnChange(fn func(key string)) func() {
	return m.add(fn)
}
