package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// contextKeyUser is the Echo context key holding the authenticated *User.
// Other plugins read it through GetUser.
const contextKeyUser = "auth_user"

// bearerPrefix is the required scheme prefix of the Authorization header.
const bearerPrefix = "Bearer "

// RequireAuth returns middleware that admits a request only if it carries
// `Authorization: Bearer <token>` whose token verifies and equals the one
// stored on the user. Every failure is the same 401 so callers cannot tell
// an expired token from a revoked one.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return apperror.NewUnauthorized(msgNotAuthorized)
			}

			user, err := service.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// SetUser stores the authenticated user on the Echo context.
func SetUser(c echo.Context, user *User) {
	c.Set(contextKeyUser, user)
}

// GetUser retrieves the authenticated user from the Echo context. Returns nil
// if RequireAuth did not run for this request.
func GetUser(c echo.Context) *User {
	user, ok := c.Get(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	if user := GetUser(c); user != nil {
		return user.ID
	}
	return ""
}

// bearerToken extracts the token from the Authorization header, or "" when
// the header is missing or uses another scheme.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
