package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultStateName is the state file kept in the library root.
const DefaultStateName = ".gallery-reader.state"

const stateVersion = 1

// BookState is the per-book bookkeeping kept by the library.
type BookState struct {
	Page     int       `msgpack:"page"`
	Cover    string    `msgpack:"cover,omitempty"`
	LastRead time.Time `msgpack:"last_read,omitempty"`
}

type stateFile struct {
	Version int                  `msgpack:"version"`
	Books   map[string]BookState `msgpack:"books"`
}

// stateStore is a msgpack file rewritten atomically on every change.
type stateStore struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	data stateFile
}

// loadState reads path. A missing file yields an empty store; a corrupt one
// yields an empty store and an error.
func loadState(path string) (*stateStore, error) {
	s := &stateStore{
		path: path,
		now:  time.Now,
		data: stateFile{Version: stateVersion, Books: make(map[string]BookState)},
	}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading state %s: %w", path, err)
	}
	var data stateFile
	if err := msgpack.Unmarshal(raw, &data); err != nil {
		return s, fmt.Errorf("decoding state %s: %w", path, err)
	}
	if data.Books == nil {
		data.Books = make(map[string]BookState)
	}
	s.data = data
	return s, nil
}

func (s *stateStore) get(book string) (BookState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data.Books[book]
	return st, ok
}

// update applies fn to the state of book and persists the result.
func (s *stateStore) update(book string, fn func(*BookState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data.Books[book]
	fn(&st)
	s.data.Books[book] = st
	return s.save()
}

func (s *stateStore) save() error {
	if s.path == "" {
		return nil
	}
	s.data.Version = stateVersion
	raw, err := msgpack.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing state %s: %w", s.path, err)
	}
	return nil
}
