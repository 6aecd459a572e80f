package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/models"
)

// PostgresStore persists the snapshot as a single jsonb row per collection
// column. Keeping the snapshot layout rather than row-per-entity tables means
// file and database backends stay byte-compatible with the migration format.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id smallint PRIMARY KEY CHECK (id = 1),
	users jsonb NOT NULL,
	conversations jsonb NOT NULL,
	groups jsonb NOT NULL,
	updated_at timestamptz NOT NULL
)`

func NewPostgresStore(dsn string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

func (p *PostgresStore) Commit(ctx context.Context, snap *models.Snapshot) error {
	users, err := json.Marshal(snap.Users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	conversations, err := json.Marshal(snap.Conversations)
	if err != nil {
		return fmt.Errorf("encode conversations: %w", err)
	}
	groups, err := json.Marshal(snap.Groups)
	if err != nil {
		return fmt.Errorf("encode groups: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, users, conversations, groups, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET users = $1, conversations = $2, groups = $3, updated_at = $4`,
		users, conversations, groups, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var users, conversations, groups []byte
	err := p.db.QueryRowContext(ctx,
		"SELECT users, conversations, groups FROM snapshots WHERE id = 1").
		Scan(&users, &conversations, &groups)
	if err == sql.ErrNoRows {
		p.logger.Debug("no snapshot row, starting empty")
		return &models.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap := &models.Snapshot{}
	if err := json.Unmarshal(users, &snap.Users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if err := json.Unmarshal(conversations, &snap.Conversations); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	if err := json.Unmarshal(groups, &snap.Groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return snap, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
