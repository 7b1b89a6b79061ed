package validate

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Tier  string `json:"tier,omitempty" validate:"omitempty,oneof=starter pro business"`
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected *apperror.AppError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	return appErr.Message
}

func TestValidate_Passes(t *testing.T) {
	err := New().Validate(&sample{Name: "Ann", Email: "ann@example.com", Tier: "pro"})
	assert.NoError(t, err)
}

func TestValidate_FirstFieldWins(t *testing.T) {
	err := New().Validate(&sample{})
	assert.Equal(t, `"name" is required`, messageOf(t, err))

	err = New().Validate(&sample{Name: "Ann"})
	assert.Equal(t, `"email" is required`, messageOf(t, err))
}

func TestValidate_TagMessages(t *testing.T) {
	err := New().Validate(&sample{Name: "Ann", Email: "not-an-email"})
	assert.Equal(t, `"email" must be a valid email`, messageOf(t, err))

	err = New().Validate(&sample{Name: "Ann", Email: "ann@example.com", Tier: "gold"})
	assert.Equal(t, `"tier" must be one of [starter, pro, business]`, messageOf(t, err))
}

func TestStruct_CustomMessage(t *testing.T) {
	custom := func(field, tag, param string) string {
		return "missing required " + field + " field"
	}
	err := New().Struct(&sample{Name: "Ann"}, custom)
	assert.Equal(t, "missing required email field", messageOf(t, err))
}
