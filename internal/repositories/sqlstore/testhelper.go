package sqlstore

import (
	"context"
	"testing"

	"github.com/asakaida/terastore/internal/infrastructure/database"
)

// TestDSN is an in-memory SQLite database enforcing foreign keys
const TestDSN = "file::memory:?_foreign_keys=on&_busy_timeout=5000"

// SetupTestStore opens a fresh in-memory database, runs migrations and
// closes it when the test finishes
func SetupTestStore(t testing.TB) *database.Store {
	t.Helper()

	store, err := database.Open(database.DialectSQLite, TestDSN)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})

	if err := store.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return store
}
