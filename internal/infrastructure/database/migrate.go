package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// NewMigrate creates a migrate instance for the store's dialect using the
// embedded migrations. Closing the returned instance closes the store.
func (s *Store) NewMigrate() (*migrate.Migrate, error) {
	var (
		driver migratedb.Driver
		err    error
	)
	switch s.Dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(s.DB.DB, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(s.DB.DB, &sqlite3.Config{})
	default:
		err = fmt.Errorf("unsupported database dialect: %s", s.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	return s.newMigrate(driver)
}

func (s *Store) newMigrate(driver migratedb.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations/"+string(s.Dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(s.Dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations. The store stays open.
func (s *Store) RunMigrations(ctx context.Context) error {
	var m *migrate.Migrate

	switch s.Dialect {
	case DialectPostgres:
		// A dedicated connection lets the migrate instance be closed
		// without closing the pool.
		conn, err := s.DB.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire migration connection: %w", err)
		}
		driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		if m, err = s.newMigrate(driver); err != nil {
			conn.Close()
			return err
		}
		defer m.Close()
	case DialectSQLite:
		// The sqlite3 driver closes the *sql.DB on Close, so the instance is left open.
		driver, err := sqlite3.WithInstance(s.DB.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		if m, err = s.newMigrate(driver); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported database dialect: %s", s.Dialect)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
