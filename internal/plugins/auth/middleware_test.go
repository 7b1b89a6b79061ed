package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// runGuard sends a GET through RequireAuth with the given Authorization
// header and reports the handler's error and whether the next handler ran.
func runGuard(t *testing.T, svc AuthService, authHeader string) (*User, bool, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *User
	called := false
	next := func(c echo.Context) error {
		called = true
		seen = GetUser(c)
		return c.NoContent(http.StatusOK)
	}

	err := RequireAuth(svc)(next)(c)
	return seen, called, err
}

func TestRequireAuth_AdmitsCurrentToken(t *testing.T) {
	svc := newTestAuthService(nil)
	token, err := svc.tokens.Issue("user-1")
	require.NoError(t, err)
	svc.repo = &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Email: "a@example.com", Token: &token}, nil
		},
	}

	user, called, err := runGuard(t, svc, "Bearer "+token)
	require.NoError(t, err)
	assert.True(t, called)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
}

func TestRequireAuth_Rejects(t *testing.T) {
	svc := newTestAuthService(nil)
	token, err := svc.tokens.Issue("user-1")
	require.NoError(t, err)
	svc.repo = &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Token: &token}, nil
		},
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"lowercase scheme", "bearer " + token},
		{"no token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"token without scheme", token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, called, err := runGuard(t, svc, tt.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, apperror.SafeCode(err))
			assert.Equal(t, "Not authorized", apperror.SafeMessage(err))
		})
	}
}

func TestRequireAuth_RejectsRevokedToken(t *testing.T) {
	svc := newTestAuthService(nil)
	old, err := svc.tokens.Issue("user-1")
	require.NoError(t, err)
	current, err := svc.tokens.Issue("user-1")
	require.NoError(t, err)
	svc.repo = &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Token: &current}, nil
		},
	}

	_, called, err := runGuard(t, svc, "Bearer "+old)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, apperror.SafeCode(err))
}

func TestRequireAuth_RejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService(nil)
	svc.tokens.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	token, err := svc.tokens.Issue("user-1")
	require.NoError(t, err)
	svc.tokens.now = time.Now
	svc.repo = &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Token: &token}, nil
		},
	}

	_, called, err := runGuard(t, svc, "Bearer "+token)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, apperror.SafeCode(err))
}

func TestGetUser_Unauthenticated(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, GetUser(c))
	assert.Empty(t, GetUserID(c))
}
