package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harborfood/pantry-backend/internal/pantry"
)

// File persists the snapshot as a single JSON blob on disk. Writes go
// through a temp file and rename so a crash never leaves a torn blob.
type File struct {
	path string
}

// NewFile returns a file store at path, creating parent directories.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
	}
	return &File{path: path}, nil
}

// Load reads the blob. Missing file or unparseable content degrades to the
// default state instead of failing.
func (f *File) Load(ctx context.Context) (*pantry.State, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return pantry.DefaultState(), nil
	}

	state := &pantry.State{}
	if err := json.Unmarshal(raw, state); err != nil {
		return pantry.DefaultState(), nil
	}
	state.Normalize()
	return state, nil
}

// Save serializes the state and atomically replaces the blob.
func (f *File) Save(ctx context.Context, state *pantry.State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".pantry-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Ping verifies the directory is reachable.
func (f *File) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}

func (f *File) Close() error { return nil }
