package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the account endpoints under /users on the given API
// group. Signup and login are public; the rest sit behind RequireAuth, which
// is also exported for other plugins' route groups.
func RegisterRoutes(api *echo.Group, h *Handler, service AuthService) {
	users := api.Group("/users")

	// Public routes -- no token required.
	users.POST("/signup", h.Signup)
	users.POST("/login", h.Login)

	// Authenticated routes.
	requireAuth := RequireAuth(service)
	users.GET("/logout", h.Logout, requireAuth)
	users.GET("/current", h.Current, requireAuth)
	users.PATCH("/subscription", h.UpdateSubscription, requireAuth)
}
