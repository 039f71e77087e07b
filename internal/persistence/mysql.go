package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	mysqlSchema = `CREATE TABLE IF NOT EXISTS app_state (
	` + "`key`" + ` VARCHAR(191) PRIMARY KEY,
	payload JSON NOT NULL,
	updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
)`
	mysqlSelect = "SELECT payload FROM app_state WHERE `key` = ?"
	mysqlUpsert = "INSERT INTO app_state (`key`, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP(6)) " +
		"ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)"
)

// MySQLStore keeps the snapshot in one app_state row.
type MySQLStore struct {
	db  *sql.DB
	key string
}

// NewMySQLStore wraps an open handle.
func NewMySQLStore(db *sql.DB, key string) *MySQLStore {
	if key == "" {
		key = DefaultKey
	}
	return &MySQLStore{db: db, key: key}
}

// EnsureSchema creates app_state when missing.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("persistence/mysql: schema: %w", err)
	}
	return nil
}

// Load selects the row payload.
func (s *MySQLStore) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, mysqlSelect, s.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persistence/mysql: select: %w", err)
	}
	return payload, nil
}

// Save upserts the row.
func (s *MySQLStore) Save(ctx context.Context, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, mysqlUpsert, s.key, payload); err != nil {
		return fmt.Errorf("persistence/mysql: upsert: %w", err)
	}
	return nil
}
