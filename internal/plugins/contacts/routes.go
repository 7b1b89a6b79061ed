package contacts

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the contact endpoints under /contacts on the given
// API group. requireAuth guards every route.
func RegisterRoutes(api *echo.Group, h *Handler, requireAuth echo.MiddlewareFunc) {
	cg := api.Group("/contacts", requireAuth)

	cg.GET("", h.List)
	cg.POST("", h.Create)
	cg.GET("/:id", h.Get)
	cg.PUT("/:id", h.Update)
	cg.DELETE("/:id", h.Delete)
	cg.PATCH("/:id/favorite", h.SetFavorite)
}
