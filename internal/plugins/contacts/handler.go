package contacts

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/contactbook/internal/apperror"
	"github.com/keyxmakerx/contactbook/internal/plugins/auth"
	"github.com/keyxmakerx/contactbook/internal/validate"
)

// Handler handles HTTP requests for contacts. Handlers are thin: they bind
// and validate the request, call the service with the authenticated user's
// id, and write the JSON response.
type Handler struct {
	service   ContactService
	validator *validate.Validator
}

// NewHandler creates a new contacts handler.
func NewHandler(service ContactService, validator *validate.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

// List returns a page of the caller's contacts
// (GET /contacts?page=1&limit=20&favorite=true).
func (h *Handler) List(c echo.Context) error {
	opts, err := parseListOptions(c)
	if err != nil {
		return err
	}

	contacts, err := h.service.List(c.Request().Context(), auth.GetUserID(c), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contacts)
}

// Get returns one contact (GET /contacts/:id).
func (h *Handler) Get(c echo.Context) error {
	contact, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// Create adds a contact owned by the caller (POST /contacts).
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}
	req.clean()
	if err := h.validator.Struct(&req, contactMessage); err != nil {
		return err
	}

	contact, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

// Update changes the fields present in the body (PUT /contacts/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}

	req.clean()
	upd := req.toUpdate()
	if upd.Empty() {
		return apperror.NewValidation(msgMissingFields)
	}
	if err := h.validator.Struct(&req, contactMessage); err != nil {
		return err
	}

	contact, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), c.Param("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// Delete removes a contact (DELETE /contacts/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeleteResponse{Message: msgContactDeleted})
}

// SetFavorite toggles the favorite flag (PATCH /contacts/:id/favorite).
// A missing or non-boolean favorite is rejected before the store is touched.
func (h *Handler) SetFavorite(c echo.Context) error {
	var req FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation(msgMissingFavorite)
	}
	if err := h.validator.Struct(&req, func(string, string, string) string { return msgMissingFavorite }); err != nil {
		return err
	}

	contact, err := h.service.SetFavorite(c.Request().Context(), auth.GetUserID(c), c.Param("id"), *req.Favorite)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// contactMessage renders validation failures for contact bodies, e.g.
// "missing required phone field".
func contactMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("missing required %s field", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must not be empty", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	default:
		return validate.DefaultMessage(field, tag, param)
	}
}

// parseListOptions reads page, limit, and favorite from the query string.
// Unparseable or non-positive page and limit fall back to the defaults;
// favorite must be exactly "true" or "false" when present.
func parseListOptions(c echo.Context) (ListOptions, error) {
	opts := DefaultListOptions()
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	switch fav := c.QueryParam("favorite"); fav {
	case "":
	case "true", "false":
		v := fav == "true"
		opts.Favorite = &v
	default:
		return ListOptions{}, apperror.NewValidation(`"favorite" must be true or false`)
	}

	return opts.normalize(), nil
}
