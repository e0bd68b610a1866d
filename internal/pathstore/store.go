// Package pathstore manages the on-disk directory of trajectory files and
// loads them into the path registry.
package pathstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Ext is the file extension of a trajectory file.
	Ext = ".path"
	// tmpExt marks a trajectory file that is still being written.
	tmpExt = Ext + ".tmp"
)

// ErrInvalidName is returned for names that cannot be used as a file stem.
var ErrInvalidName = errors.New("invalid path name")

// ValidateName checks that name maps to a single file inside the directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must be non-empty", ErrInvalidName)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Store reads and writes trajectory files in a single directory.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// EnsureDir creates the directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return fmt.Errorf("failed to create paths directory: %w", err)
	}
	return nil
}

// FilePath returns the trajectory file path for name.
func (s *Store) FilePath(name string) string {
	return filepath.Join(s.Dir, name+Ext)
}

// Write replaces the trajectory file for name with data.
// The data is written to a temp file, synced, then renamed into place, so a
// crash never leaves a partially written trajectory under the final name.
func (s *Store) Write(name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := s.EnsureDir(); err != nil {
		return err
	}

	path := s.FilePath(name)
	tmpFile := path + ".tmp"

	f, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) //nolint:gosec // path files are shared with readers
	if err != nil {
		return fmt.Errorf("failed to create temp path file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write temp path file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp path file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close temp path file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename path file: %w", err)
	}

	return nil
}

// Read returns the raw contents of the trajectory file for name.
func (s *Store) Read(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.FilePath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read path file: %w", err)
	}
	return data, nil
}

// List returns the names of all trajectory files in the directory, sorted.
// A missing directory yields no names.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list paths directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := NameOf(e.Name()); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// CleanTemp removes temp files left behind by interrupted writes and
// returns the removed file names.
func (s *Store) CleanTemp() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list paths directory: %w", err)
	}

	var removed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), tmpExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

// NameOf returns the path name for a trajectory file base name, or false if
// file is not a trajectory file.
func NameOf(file string) (string, bool) {
	base := filepath.Base(file)
	if !strings.HasSuffix(base, Ext) {
		return "", false
	}
	name := strings.TrimSuffix(base, Ext)
	if ValidateName(name) != nil {
		return "", false
	}
	return name, true
}
