package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// registers the "mysql" database/sql driver
	_ "github.com/go-sql-driver/mysql"
)

// OpenMySQL opens and pings a MySQL handle.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	handle, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: open mysql: %w", err)
	}
	handle.SetConnMaxLifetime(5 * time.Minute)
	handle.SetMaxOpenConns(4)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("platform/db: ping mysql: %w", err)
	}
	return handle, nil
}
