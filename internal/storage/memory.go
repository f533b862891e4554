package storage

import "sync"

// Memory is an in-process Port used by tests and as a throwaway backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string

	// FailReads makes every Get return readErr, for degradation tests.
	FailReads bool
}

type memoryReadError struct{}

func (memoryReadError) Error() string { return "storage: read unavailable" }

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads {
		return "", false, memoryReadError{}
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
