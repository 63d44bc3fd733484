package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Database bundles a *sql.DB with the dialect it speaks. Repositories never
// touch SQL directly; they go through Conn(), which rewrites placeholders
// for the dialect.
type Database struct {
	SQL     *sql.DB
	Dialect Dialect
}

// Open opens the database named by dsn and runs migrations.
//
// DSNs starting with postgres:// or postgresql:// are opened with pgx.
// Anything else is treated as a SQLite path; ":memory:" gives an in-memory
// database. SQLite databases get WAL mode and foreign key enforcement.
func Open(dsn string) (*Database, error) {
	dialect := DialectFor(dsn)

	driver := "sqlite"
	if dialect == Postgres {
		driver = "pgx"
	} else if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	source := dsn
	if dialect == SQLite {
		source = sqliteSource(dsn)
	}

	sqlDB, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if dialect == SQLite {
		// An in-memory database exists per connection.
		if dsn == ":memory:" {
			sqlDB.SetMaxOpenConns(1)
		}
		if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting WAL mode: %w", err)
		}
		if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	database := &Database{SQL: sqlDB, Dialect: dialect}
	if err := Migrate(context.Background(), database); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database, nil
}

// Conn returns a DBTX over the pool that speaks this database's dialect.
func (d *Database) Conn() DBTX {
	return Rebind(d.SQL, d.Dialect)
}

// Ping checks that the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.SQL.Close()
}

// sqliteSource appends connection pragmas so every pooled connection, not
// just the first, enforces foreign keys and waits on a busy writer.
func sqliteSource(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// DialectFor picks the dialect implied by a DSN.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres
	}
	return SQLite
}
