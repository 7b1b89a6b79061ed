package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/contactbook/internal/plugins/auth"
	"github.com/keyxmakerx/contactbook/internal/plugins/contacts"
)

// healthTimeout bounds the store ping behind /healthz.
const healthTimeout = 2 * time.Second

// RegisterRoutes builds the plugin services and mounts every route. This is
// the single place where all routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check for container orchestration.
	e.GET("/healthz", a.health)

	api := e.Group(a.Config.APIPrefix)

	// auth plugin: /users/*
	authSvc := auth.NewAuthService(
		a.stores.Users,
		auth.NewPasswordHasher(a.Config.Auth.BcryptCost),
		auth.NewTokenIssuer(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL),
	)
	auth.RegisterRoutes(api, auth.NewHandler(authSvc), authSvc)

	// contacts plugin: /contacts/*, all behind the bearer guard.
	contactSvc := contacts.NewContactService(a.stores.Contacts)
	contacts.RegisterRoutes(api, contacts.NewHandler(contactSvc, a.validator), auth.RequireAuth(authSvc))
}

// health pings the store. 200 {"status":"ok"} when reachable, 503 otherwise.
func (a *App) health(c echo.Context) error {
	if a.stores.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()

		if err := a.stores.Health(ctx); err != nil {
			slog.Warn("health check failed", slog.Any("error", err))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "Service unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
