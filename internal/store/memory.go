package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is a map-backed Adapter. Stored bytes are copied on the way in
// and out, so callers may reuse their buffers.
type Memory struct {
	mu   sync.Mutex
	data map[Key][]byte
}

var _ Adapter = (*Memory)(nil)

// NewMemory returns an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key][]byte)}
}

// Load returns a copy of the bytes stored under key.
func (m *Memory) Load(_ context.Context, key Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Save stores a copy of data under key.
func (m *Memory) Save(ctx context.Context, key Key, data []byte) error {
	return m.SaveAll(ctx, map[Key][]byte{key: data})
}

// SaveAll stores every entry.
func (m *Memory) SaveAll(_ context.Context, entries map[Key][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		c := slices.Clone(v)
		if c == nil {
			c = []byte{}
		}
		m.data[k] = c
	}
	return nil
}

// ClearAll removes every stored collection.
func (m *Memory) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
	return nil
}

// StoredKeys returns the keys currently holding a value, sorted.
func (m *Memory) StoredKeys(context.Context) ([]Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.data), nil
}
