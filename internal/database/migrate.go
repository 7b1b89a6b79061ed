package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"

	// Registers the file:// migration source.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationStatus is the schema state after RunMigrations.
type MigrationStatus struct {
	// Version is the newest applied migration, 0 when none exist.
	Version uint

	// Applied reports whether this run moved the version forward.
	Applied bool
}

// ErrDirtySchema means a previous migration failed halfway. The schema has
// to be repaired and the version forced by hand before the server can start.
var ErrDirtySchema = errors.New("schema is dirty")

// RunMigrations applies every pending up migration found in dir.
func RunMigrations(db *sql.DB, dir string) (MigrationStatus, error) {
	source, err := sourceURL(dir)
	if err != nil {
		return MigrationStatus{}, err
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "mysql", driver)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("creating migrator for %s: %w", source, err)
	}
	m.Log = migrateLogger{}

	before, err := schemaVersion(m)
	if err != nil {
		return MigrationStatus{}, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("applying migrations: %w", err)
	}

	after, err := schemaVersion(m)
	if err != nil {
		return MigrationStatus{}, err
	}

	status := MigrationStatus{Version: after, Applied: after != before}
	slog.Info("schema ready",
		slog.Uint64("version", uint64(status.Version)),
		slog.Bool("applied", status.Applied),
	)
	return status, nil
}

// schemaVersion reads the current version, treating an empty schema as 0
// and refusing to continue from a dirty one.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("reading schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return version, nil
}

// sourceURL turns a migrations directory into a file:// source URL.
func sourceURL(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("migrations path is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving migrations path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// migrateLogger routes golang-migrate's progress lines to slog at debug.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Debug("migrate", slog.String("msg", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (migrateLogger) Verbose() bool { return false }
