package db

import (
	"context"
	"fmt"
)

// migrations is the ordered list of schema statements. Every statement is
// idempotent and portable between SQLite and PostgreSQL, so the full list is
// re-run on every open.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		name       TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token_hash TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		expires_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		parent_id  TEXT REFERENCES todos(id) ON DELETE CASCADE,
		text       TEXT NOT NULL,
		completed  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_parent ON todos(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_user_created ON todos(user_id, created_at)`,
}

// Migrate runs all schema migrations.
func Migrate(ctx context.Context, database *Database) error {
	for i, stmt := range migrations {
		if _, err := database.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
