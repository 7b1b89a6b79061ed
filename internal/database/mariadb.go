// Package database provides connection setup for the two supported stores:
// MariaDB (database/sql + go-sql-driver/mysql) and MongoDB (mongo-driver).
// Connections are opened once at startup and handed to the repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "mysql" driver name with database/sql.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/contactbook/internal/config"
)

// NewMariaDB opens a pool from cfg and blocks until the server answers a
// ping. Cancelling ctx aborts the wait.
func NewMariaDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb pool: %w", err)
	}
	configurePool(db, cfg)

	if err := waitReady(ctx, "mariadb", db.PingContext, startupRetry); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// configurePool applies the pool limits from cfg. Zero values keep the
// database/sql defaults.
func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
