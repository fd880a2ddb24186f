package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"gallery-reader/internal/reader"
)

type prefsFile struct {
	Mode        string `yaml:"mode"`
	RightToLeft bool   `yaml:"right_to_left"`
}

// PrefsStore keeps reader preferences in a small YAML file shared by every
// session of the process.
type PrefsStore struct {
	path     string
	defaults reader.Preferences

	mu sync.Mutex
}

// NewPrefsStore returns a store at path. defaults are reported until the
// first save.
func NewPrefsStore(path string, defaults reader.Preferences) *PrefsStore {
	return &PrefsStore{path: path, defaults: defaults}
}

// LoadPreferences reads the file. A missing file yields the defaults; an
// unreadable one yields the defaults and an error.
func (p *PrefsStore) LoadPreferences() (reader.Preferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return p.defaults, nil
	}
	if err != nil {
		return p.defaults, fmt.Errorf("reading preferences: %w", err)
	}

	var f prefsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return p.defaults, fmt.Errorf("decoding preferences %s: %w", p.path, err)
	}
	prefs := reader.Preferences{Mode: p.defaults.Mode, RightToLeft: f.RightToLeft}
	if m, ok := reader.ParseMode(f.Mode); ok {
		prefs.Mode = m
	}
	return prefs, nil
}

// SavePreferences replaces the file atomically.
func (p *PrefsStore) SavePreferences(prefs reader.Preferences) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := yaml.Marshal(prefsFile{Mode: prefs.Mode.String(), RightToLeft: prefs.RightToLeft})
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return os.Rename(tmp.Name(), p.path)
}
