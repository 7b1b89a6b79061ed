// Package app is the application bootstrap and dependency injection root.
// It builds the Echo instance, installs global middleware and the error
// handler, and wires the auth and contacts plugins onto the store selected
// at startup.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/contactbook/internal/apperror"
	"github.com/keyxmakerx/contactbook/internal/config"
	"github.com/keyxmakerx/contactbook/internal/middleware"
	"github.com/keyxmakerx/contactbook/internal/plugins/auth"
	"github.com/keyxmakerx/contactbook/internal/plugins/contacts"
	"github.com/keyxmakerx/contactbook/internal/validate"
)

// msgNotFound is the body message for unknown routes and methods.
const msgNotFound = "Not found"

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Stores bundles the repositories of whichever backend was selected, plus
// the store's health check.
type Stores struct {
	Users    auth.UserRepository
	Contacts contacts.ContactRepository
	Health   HealthCheck
}

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	stores    Stores
	validator *validate.Validator
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, stores Stores) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	middleware.TrustedProxies(e, cfg.TrustedProxies)

	app := &App{
		Config:    cfg,
		Echo:      e,
		stores:    stores,
		validator: validate.New(),
	}

	e.Validator = app.validator
	e.HTTPErrorHandler = app.errorHandler

	app.setupMiddleware()

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: the request id and logger wrap recovery so a recovered
// panic is still logged with its 500 status.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.SecurityHeaders(a.Config.IsProduction()))
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: a.Config.CORSOrigins,
	}))
}

// errorHandler is the custom Echo error handler. Every failure leaves the
// server as `{"message": ...}` JSON: AppErrors carry their own status and
// message, router misses become 404 "Not found", and anything else is a
// logged 500 with a generic message.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := apperror.SafeMessage(err)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
				slog.String("request_id", middleware.GetRequestID(c)),
			)
		}

	case errors.As(err, &echoErr):
		code = echoErr.Code
		switch code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			code = http.StatusNotFound
			message = msgNotFound
		default:
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		}

	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
			slog.String("request_id", middleware.GetRequestID(c)),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"message": message})
	}
	if err != nil {
		slog.Error("writing error response", slog.Any("error", err))
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting contactbook server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("store", a.Config.Store.Driver),
	)
	return a.Echo.Start(addr)
}
