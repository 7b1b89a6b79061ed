package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// msgInvalidBody is returned when the request body is not decodable JSON.
const msgInvalidBody = "invalid request body"

// Handler handles HTTP requests for accounts (signup, login, logout, current,
// subscription). Handlers are thin: they bind and validate the request, call
// the service, and write the JSON response. No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Signup registers a new account (POST /users/signup).
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation(msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Signup(c.Request().Context(), SignupInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, SignupResponse{User: user.Profile()})
}

// Login authenticates a user and returns a fresh bearer token
// (POST /users/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation(msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: token, User: user.Profile()})
}

// Logout revokes the caller's token (GET /users/logout).
func (h *Handler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), GetUser(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Current returns the caller's profile (GET /users/current).
func (h *Handler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, GetUser(c).Profile())
}

// UpdateSubscription changes the caller's plan tier
// (PATCH /users/subscription).
func (h *Handler) UpdateSubscription(c echo.Context) error {
	var req SubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation(msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.ChangeSubscription(c.Request().Context(), GetUser(c), req.Subscription)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user.Profile())
}
