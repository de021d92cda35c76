package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/asakaida/terastore/internal/infrastructure/config"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/infrastructure/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFlag string
	log     = zap.Must(zap.NewDevelopment()) // replaced once config is loaded
	store   *database.Store
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for TeraStore",
	Long: `Database migration tool for TeraStore.
Manages PostgreSQL and SQLite schema migrations using golang-migrate.
Migrations are embedded in the binary.`,
	PersistentPreRun: setupDatabase,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Long:  `Apply all pending migrations to the database.`,
	Run:   runUp,
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback migrations",
	Long:  `Rollback the specified number of migrations (default: 1).`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runDown,
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate to a specific version",
	Long:  `Migrate to a specific version number.`,
	Args:  cobra.ExactArgs(1),
	Run:   runGoto,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	Long:  `Display the current migration version of the database.`,
	Run:   runVersion,
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force set migration version (use with caution)",
	Long:  `Force set the migration version without running migrations. Use with caution.`,
	Args:  cobra.ExactArgs(1),
	Run:   runForce,
}

func init() {
	// Add global --env flag to all commands
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "dev", "Environment to use (dev, test, prod)")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(gotoCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(forceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("failed to execute command", zap.Error(err))
	}
}

func setupDatabase(cmd *cobra.Command, args []string) {
	// Initialize configuration from .env.{env} file
	if err := config.InitConfig(envFlag); err != nil {
		log.Fatal("failed to initialize config", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	configured, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatal("failed to create logger", zap.Error(err))
	}
	log = configured
	log.Info("using environment", zap.String("env", envFlag))

	store, err = database.NewStore(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("connected to database", zap.String("driver", cfg.Database.Driver))
}

// newMigrate returns a migrate instance owning the store; closing it closes the store
func newMigrate() *migrate.Migrate {
	m, err := store.NewMigrate()
	if err != nil {
		log.Fatal("failed to create migrate instance", zap.Error(err))
	}
	return m
}

func parseVersion(arg string) int {
	version, err := strconv.Atoi(arg)
	if err != nil || version < 0 {
		log.Fatal("invalid version", zap.String("version", arg))
	}
	return version
}

func runUp(cmd *cobra.Command, args []string) {
	m := newMigrate()
	defer m.Close()

	err := m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("no migrations to apply")
	case err != nil:
		log.Fatal("migration up failed", zap.Error(err))
	default:
		log.Info("migration up completed successfully")
	}
}

func runDown(cmd *cobra.Command, args []string) {
	steps := 1 // Default: rollback 1 migration
	if len(args) > 0 {
		steps = parseVersion(args[0])
	}

	m := newMigrate()
	defer m.Close()

	err := m.Steps(-steps)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("no migrations to rollback")
	case err != nil:
		log.Fatal("migration down failed", zap.Error(err))
	default:
		log.Info("migration down completed successfully", zap.Int("steps", steps))
	}
}

func runGoto(cmd *cobra.Command, args []string) {
	version := parseVersion(args[0])

	m := newMigrate()
	defer m.Close()

	err := m.Migrate(uint(version))
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("already at version", zap.Int("version", version))
	case err != nil:
		log.Fatal("migration goto failed", zap.Error(err))
	default:
		log.Info("migration goto completed successfully", zap.Int("version", version))
	}
}

func runVersion(cmd *cobra.Command, args []string) {
	m := newMigrate()
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("no migrations applied yet")
		return
	}
	if err != nil {
		log.Fatal("failed to get version", zap.Error(err))
	}

	if dirty {
		log.Warn("current version is dirty, a migration may have failed", zap.Uint("version", version))
	} else {
		log.Info("current version", zap.Uint("version", version))
	}
}

func runForce(cmd *cobra.Command, args []string) {
	version := parseVersion(args[0])

	m := newMigrate()
	defer m.Close()

	if err := m.Force(version); err != nil {
		log.Fatal("migration force failed", zap.Error(err))
	}
	log.Info("migration forced", zap.Int("version", version))
}
