package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore persists session state as a JSON object in a single file, so a
// CLI session survives between invocations. Every mutation rewrites the
// file. Storage is assumed available; an I/O failure panics per the Store
// contract.
type FileStore struct {
	path   string
	values map[string]string
	lock   sync.RWMutex
}

// DefaultSessionPath returns the conventional location for the session file,
// honouring XDG_CONFIG_HOME.
func DefaultSessionPath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "learnkit", "session.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "learnkit", "session.json")
}

// OpenFileStore loads (or creates) the session file at path.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: make(map[string]string)}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[OpenFileStore] read session file")
	}
	if err := json.Unmarshal(b, &fs.values); err != nil {
		return nil, errors.Wrap(err, "[OpenFileStore] malformed session file")
	}
	return fs, nil
}

func (f *FileStore) Get(key string) (string, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	v, ok := f.values[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.values[key] = value
	f.flush()
}

func (f *FileStore) Clear(keys ...string) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, k := range keys {
		delete(f.values, k)
	}
	f.flush()
}

// flush rewrites the session file. Caller must hold the write lock.
func (f *FileStore) flush() {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		panic(errors.Wrap(err, "[FileStore.flush] mkdir"))
	}
	b, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		panic(errors.Wrap(err, "[FileStore.flush] marshal"))
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		panic(errors.Wrap(err, "[FileStore.flush] write session file"))
	}
}
