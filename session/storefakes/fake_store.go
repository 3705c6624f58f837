package fakesessionstore

import (
	"sync"

	"github.com/learnkit/learnkit-go/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store that records its mutations so
// tests can assert when and what was cleared.
type FakeStore struct {
	values map[string]string
	lock   sync.RWMutex

	SetCalls   []string // keys passed to Set, in order
	ClearCalls [][]string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (f *FakeStore) Get(key string) (string, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	v, ok := f.values[key]
	return v, ok
}

func (f *FakeStore) Set(key, value string) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.values[key] = value
	f.SetCalls = append(f.SetCalls, key)
}

func (f *FakeStore) Clear(keys ...string) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, k := range keys {
		delete(f.values, k)
	}
	f.ClearCalls = append(f.ClearCalls, keys)
}

// Len returns the number of stored keys.
func (f *FakeStore) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return len(f.values)
}
