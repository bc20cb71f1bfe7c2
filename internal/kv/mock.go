package kv

import "sync"

// Mock is an in-memory Store for tests. It is safe for concurrent use.
type Mock struct {
	mu   sync.Mutex
	data map[string][]byte

	// Spies to force failures.
	SetFunc func(key string, value []byte) error
	GetFunc func(key string) ([]byte, bool, error)

	// Call records
	SetCalls    []string
	DeleteCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{data: make(map[string][]byte)}
}

func (m *Mock) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(key)
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Mock) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, key)
	if m.SetFunc != nil {
		return m.SetFunc(key, value)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// SetCallCount returns how many Set calls targeted the given key.
func (m *Mock) SetCallCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, k := range m.SetCalls {
		if k == key {
			n++
		}
	}
	return n
}

func (m *Mock) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	delete(m.data, key)
	return nil
}
