package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	postgresSchema = `CREATE TABLE IF NOT EXISTS app_state (
	key text PRIMARY KEY,
	payload jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	postgresSelect = `SELECT payload FROM app_state WHERE key = $1`
	postgresUpsert = `INSERT INTO app_state (key, payload, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

// PgxQuerier is the subset of *pgxpool.Pool the store needs.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps the snapshot in one app_state row.
type PostgresStore struct {
	db  PgxQuerier
	key string
}

// NewPostgresStore wraps a pool.
func NewPostgresStore(db PgxQuerier, key string) *PostgresStore {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresStore{db: db, key: key}
}

// EnsureSchema creates app_state when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("persistence/postgres: schema: %w", err)
	}
	return nil
}

// Load selects the row payload.
func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, postgresSelect, s.key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persistence/postgres: select: %w", err)
	}
	return payload, nil
}

// Save upserts the row.
func (s *PostgresStore) Save(ctx context.Context, payload []byte) error {
	if _, err := s.db.Exec(ctx, postgresUpsert, s.key, payload); err != nil {
		return fmt.Errorf("persistence/postgres: upsert: %w", err)
	}
	return nil
}
