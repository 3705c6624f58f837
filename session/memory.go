package session

import "sync"

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store. The zero value is not usable; create
// one with NewMemoryStore.
type MemoryStore struct {
	values map[string]string
	lock   sync.RWMutex
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values[key] = value
}

func (m *MemoryStore) Clear(keys ...string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
}
