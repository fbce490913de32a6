// Package validation wraps go-playground/validator with the error messages
// returned to API callers.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// Validator checks struct tags and converts failures to domain.ValidationError.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator. It also satisfies echo.Validator.
func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate satisfies the echo.Validator interface.
func (vv *Validator) Validate(i any) error {
	err := vv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
		return &domain.ValidationError{Fields: msgs}
	}
	return fmt.Errorf("validate: %w", err)
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "longitude":
		return field + " must be a decimal between -180 and 180"
	case "latitude":
		return field + " must be a decimal between -90 and 90"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
