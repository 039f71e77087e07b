package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// FileStore keeps the snapshot as <dir>/<key>.json.
type FileStore struct {
	path string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir, key string) (*FileStore, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persistence/file: mkdir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, key+".json")}, nil
}

// Load reads the snapshot file.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persistence/file: read: %w", err)
	}
	return payload, nil
}

// Save replaces the snapshot file atomically. The temp file is synced
// before the rename.
func (s *FileStore) Save(_ context.Context, payload []byte) error {
	if err := renameio.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("persistence/file: write: %w", err)
	}
	return nil
}
