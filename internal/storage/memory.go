package storage

import (
	"strconv"
	"sync"
)

// Memory is an in-process preference store with the same semantics as the
// prefs table. Used when the database is unavailable, and by tests.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// Put stores value under key.
func (m *Memory) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// PutMax stores v only if it exceeds the stored integer.
func (m *Memory) PutMax(key string, v int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := ParseCount(m.values[key])
	if !ok || cur < v {
		m.values[key] = strconv.Itoa(v)
		return v, nil
	}
	return cur, nil
}

// Delete removes the entry stored under key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
