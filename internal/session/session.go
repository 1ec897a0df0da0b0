// Package session persists store state between CLI invocations in a JSON file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tally/internal/store"
)

// File is a session file on disk.
type File struct {
	path string
}

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Load returns the saved state. A missing file is an empty session.
func (f *File) Load() (store.State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.State{}, nil
	}
	if err != nil {
		return store.State{}, fmt.Errorf("read session: %w", err)
	}

	var state store.State
	if err := json.Unmarshal(data, &state); err != nil {
		return store.State{}, fmt.Errorf("decode session %s: %w", f.path, err)
	}
	return state, nil
}

// Save writes state atomically by renaming a temp file over the target.
func (f *File) Save(state store.State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Reset deletes the session file. Resetting an absent session is not an error.
func (f *File) Reset() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// DefaultPath is tally/session.json under the user cache directory, or the
// working directory when there is none.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".tally-session.json"
	}
	return filepath.Join(dir, "tally", "session.json")
}
