package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS games (
	id           TEXT PRIMARY KEY,
	size         INTEGER NOT NULL,
	black_id     TEXT NOT NULL DEFAULT '',
	black_name   TEXT NOT NULL DEFAULT '',
	white_id     TEXT NOT NULL DEFAULT '',
	white_name   TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL,
	winner       INTEGER NOT NULL,
	winner_id    TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	moves        INTEGER NOT NULL,
	sgf          TEXT NOT NULL,
	started_at   DATETIME,
	ended_at     DATETIME
);
CREATE INDEX IF NOT EXISTS games_black_id ON games (black_id);
CREATE INDEX IF NOT EXISTS games_white_id ON games (white_id);`

// Connect opens the SQLite database at path (":memory:" works for tests) and
// makes sure the archive schema exists.
func Connect(ctx context.Context, path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database %s: %w", path, err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "sqlite database ready", "db.path", path)
	return pool, nil
}

// Migrate creates the archive tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, archiveSchema); err != nil {
		return fmt.Errorf("failed to create games table: %w", err)
	}
	return nil
}
