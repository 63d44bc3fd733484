package testutil

import (
	"testing"

	"github.com/todump/todump/internal/db"
)

// NewTestDatabase creates an in-memory SQLite database with all migrations
// applied. The database is closed when the test completes.
func NewTestDatabase(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *db.Database) db.UnitOfWork {
	return db.NewUnitOfWork(database)
}
