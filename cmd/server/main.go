// Package main is the entry point for the contactbook server. It loads
// configuration, connects to the selected store (MariaDB or MongoDB),
// prepares its schema, wires the plugins, and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/keyxmakerx/contactbook/internal/app"
	"github.com/keyxmakerx/contactbook/internal/config"
	"github.com/keyxmakerx/contactbook/internal/database"
	"github.com/keyxmakerx/contactbook/internal/plugins/auth"
	"github.com/keyxmakerx/contactbook/internal/plugins/contacts"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Configure structured logging based on environment.
	setupLogging(cfg)

	slog.Info("starting contactbook",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("store", cfg.Store.Driver),
	)

	// Cancelled on SIGINT/SIGTERM: aborts a startup still waiting on the
	// store, and triggers graceful shutdown once serving.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to the Store ---
	stores, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	// --- Create Application ---
	application := app.New(cfg, stores)
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	go func() {
		<-ctx.Done()

		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", slog.Any("error", err))
		closeStore()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore connects to the configured backend, prepares its schema, and
// returns the repositories plus a close function.
func openStore(ctx context.Context, cfg *config.Config) (app.Stores, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		return openMongo(ctx, cfg.Store.Mongo)
	default:
		return openMariaDB(ctx, cfg.Store.Database)
	}
}

func openMariaDB(ctx context.Context, cfg config.DatabaseConfig) (app.Stores, func(), error) {
	db, err := database.NewMariaDB(ctx, cfg)
	if err != nil {
		return app.Stores{}, nil, err
	}
	slog.Info("connected to MariaDB")

	if _, err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return app.Stores{}, nil, err
	}

	stores := app.Stores{
		Users:    auth.NewUserRepository(db),
		Contacts: contacts.NewContactRepository(db),
		Health:   db.PingContext,
	}
	return stores, closeOnce(func() error { return db.Close() }), nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (app.Stores, func(), error) {
	client, db, err := database.NewMongo(ctx, cfg)
	if err != nil {
		return app.Stores{}, nil, err
	}
	slog.Info("connected to MongoDB", slog.String("database", cfg.Database))

	disconnect := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return client.Disconnect(ctx)
	}

	indexCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := database.EnsureMongoIndexes(indexCtx, db); err != nil {
		_ = disconnect()
		return app.Stores{}, nil, fmt.Errorf("ensuring indexes: %w", err)
	}

	stores := app.Stores{
		Users:    auth.NewMongoUserRepository(db.Collection(database.UsersCollection)),
		Contacts: contacts.NewMongoContactRepository(db.Collection(database.ContactsCollection)),
		Health: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
	}
	return stores, closeOnce(disconnect), nil
}

// closeOnce wraps a store close function so the deferred call and the
// error-exit path cannot both run it.
func closeOnce(fn func() error) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		if err := fn(); err != nil {
			slog.Error("closing store", slog.Any("error", err))
		}
	}
}

// setupLogging configures the global slog logger based on the environment.
// Development uses text format for readability. Production uses JSON for
// structured log aggregation. LOG_LEVEL overrides the default level.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}
	if lvl, ok := parseLevel(cfg.LogLevel); ok {
		opts.Level = lvl
	}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel maps a LOG_LEVEL value to a slog level.
func parseLevel(s string) (slog.Level, bool) {
	var lvl slog.Level
	if s == "" {
		return lvl, false
	}
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return lvl, false
	}
	return lvl, true
}
