package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/models"
)

// FileStore keeps the snapshot as a single JSON document on disk. Writes go
// to a temp file in the same directory followed by a rename, so a crash
// mid-commit leaves the previous snapshot intact.
type FileStore struct {
	path   string
	logger *zap.SugaredLogger
}

func NewFileStore(path string, logger *zap.SugaredLogger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("snapshot file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	return &FileStore{path: path, logger: logger}, nil
}

func (f *FileStore) Commit(_ context.Context, snap *models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot back. A missing file is a normal first start and
// yields an empty snapshot; unreadable or malformed content is an error the
// caller may degrade on.
func (f *FileStore) Load(_ context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.logger.Debugw("no snapshot file, starting empty", "path", f.path)
		return &models.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap := &models.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}
	return snap, nil
}

func (f *FileStore) Close() error { return nil }
