// Package validate plugs go-playground/validator into Echo so handlers can
// call c.Validate(&req) on bound request DTOs. Validation failures come back
// as apperror 400s whose message names the first offending field, in struct
// declaration order.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/keyxmakerx/contactbook/internal/apperror"
)

// MessageFunc renders the client-facing message for one failed field check.
// field is the JSON name of the field, tag the failed rule (e.g. "required").
type MessageFunc func(field, tag, param string) string

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator that reports fields by their json tag name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks i against its `validate` struct tags. The returned error is
// an *apperror.AppError built with DefaultMessage; use Struct for custom
// wording.
func (cv *Validator) Validate(i any) error {
	return cv.Struct(i, DefaultMessage)
}

// Struct validates i and renders the first failure with msg.
func (cv *Validator) Struct(i any, msg MessageFunc) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewInternal(fmt.Errorf("validating request: %w", err))
	}

	first := verrs[0]
	return apperror.NewValidation(msg(first.Field(), first.Tag(), first.Param()))
}

// DefaultMessage produces Joi-style messages, e.g. `"email" is required`.
func DefaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
