// Package prefs persists dashboard UI preferences in a small YAML file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Prefs are the user's UI preferences.
type Prefs struct {
	SidebarCollapsed bool `yaml:"sidebarCollapsed" json:"sidebarCollapsed"`
}

// Store loads preferences once and writes them back on every change.
type Store struct {
	path string
	log  *zap.Logger

	mu  sync.Mutex
	cur Prefs
}

// Open loads preferences from path. A missing file yields defaults. An
// unreadable or corrupt file is logged and also yields defaults; it will
// be overwritten by the next Set.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: p, log: log}

	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		log.Warn("preferences unreadable, using defaults", zap.String("path", p), zap.Error(err))
	default:
		if err := yaml.Unmarshal(data, &s.cur); err != nil {
			s.cur = Prefs{}
			log.Warn("preferences corrupt, using defaults", zap.String("path", p), zap.Error(err))
		}
	}
	return s, nil
}

// Path returns the resolved file path.
func (s *Store) Path() string { return s.path }

// Get returns the current preferences.
func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Set stores p and writes it to disk.
func (s *Store) Set(p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("prefs: create dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("prefs: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("prefs: replace %s: %w", s.path, err)
	}
	s.cur = p
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("prefs: resolve home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
