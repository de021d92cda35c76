//go:build integration

package sqlstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/asakaida/terastore/internal/infrastructure/database"
	testcontainer "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres starts a disposable PostgreSQL container and returns its DSN.
// The container is terminated when the test finishes.
func StartPostgres(t testing.TB) string {
	t.Helper()

	ctx := context.Background()
	pgC, err := testcontainer.GenericContainer(ctx, testcontainer.GenericContainerRequest{
		ContainerRequest: testcontainer.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "terastore",
				"POSTGRES_PASSWORD": "terastore_test_password",
				"POSTGRES_DB":       "terastore_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgC.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate postgres container: %v", err)
		}
	})

	host, err := pgC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pgC.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return fmt.Sprintf("host=%s port=%d user=terastore password=terastore_test_password dbname=terastore_test sslmode=disable", host, port.Int())
}

// OpenPostgresStore connects to dsn and closes the store when the test finishes
func OpenPostgresStore(t testing.TB, dsn string) *database.Store {
	t.Helper()

	store, err := database.Open(database.DialectPostgres, dsn)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})
	return store
}

// SetupPostgresStore starts a container, connects to it and runs migrations
func SetupPostgresStore(t testing.TB) *database.Store {
	t.Helper()

	store := OpenPostgresStore(t, StartPostgres(t))
	if err := store.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return store
}
