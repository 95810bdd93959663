package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sbilibin2017/gw-blog/internal/config"
	"github.com/sbilibin2017/gw-blog/internal/logger"
)

// PoolOptions bounds the PostgreSQL connection pool.
type PoolOptions struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to the database for the given driver ("sqlite" or "postgres").
// For sqlite, dsn is a file path; foreign keys are enabled, times are stored
// in sqlite's text format and writes are serialized over a single connection.
func Open(ctx context.Context, driver, dsn string, pool PoolOptions) (*sqlx.DB, error) {
	switch driver {
	case config.DriverSQLite:
		return openSQLite(ctx, dsn)
	case config.DriverPostgres:
		db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if pool.MaxOpenConns > 0 {
			db.SetMaxOpenConns(pool.MaxOpenConns)
		}
		if pool.MaxIdleConns > 0 {
			db.SetMaxIdleConns(pool.MaxIdleConns)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func openSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := path
	params := []struct{ marker, param string }{
		{"foreign_keys", "_pragma=foreign_keys(1)"},
		{"_time_format", "_time_format=sqlite"},
	}
	for _, p := range params {
		if strings.Contains(dsn, p.marker) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.param
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// one connection: sqlite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(120) NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_key ON users (lower(username))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date_posted DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS posts_user_id_idx ON posts (user_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(120) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_key ON users (lower(username))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		title VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date_posted TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_user_id_idx ON posts (user_id)`,
}

// Migrate creates the users and posts tables and their indexes if missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Log.Errorw("migration failed", "query", oneLine(stmt), "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Log.Infow("schema is up to date", "driver", db.DriverName())
	return nil
}

// oneLine collapses whitespace so a query logs on a single line.
func oneLine(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
