package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

func newValidator() *echoValidator {
	return &echoValidator{v: validator.New()}
}

// Validate satisfies the echo.Validator interface. Failures surface as a 400
// carrying per-field messages in the envelope's errors map.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[strings.ToLower(fe.Field())] = fieldError(fe)
			}
			return &validationError{fields: fields}
		}
		return err
	}
	return nil
}

// validationError carries per-field messages through the echo error handler.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, m := range e.fields {
		msgs = append(msgs, m)
	}
	return strings.Join(msgs, "; ")
}

// bindAndValidate decodes the request body and runs validation, rendering the
// envelope itself on failure. Handlers return early when ok is false.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, respondError(c, http.StatusBadRequest, "invalid payload", nil)
	}
	if err := c.Validate(req); err != nil {
		var ve *validationError
		if errors.As(err, &ve) {
			return false, respondError(c, http.StatusBadRequest, "validation failed", ve.fields)
		}
		return false, respondError(c, http.StatusBadRequest, err.Error(), nil)
	}
	return true, nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
