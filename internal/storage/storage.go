package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/models"
)

// Adapter durably persists the full entity snapshot. Commit is write-through:
// the engine calls it inside every mutation, so an implementation must not
// return before the snapshot is durable.
type Adapter interface {
	Commit(ctx context.Context, snap *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

// Backend selects the persistence implementation
type Backend string

const (
	File     Backend = "file"
	Postgres Backend = "postgres"
)

// Config carries the backend-specific settings
type Config struct {
	// Path of the snapshot file, file backend only
	Path string
	// DSN of the database, postgres backend only
	DSN string
}

// New builds the adapter for the configured backend
func New(backend Backend, cfg Config, logger *zap.SugaredLogger) (Adapter, error) {
	switch backend {
	case File:
		return NewFileStore(cfg.Path, logger)
	case Postgres:
		return NewPostgresStore(cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", backend)
	}
}
