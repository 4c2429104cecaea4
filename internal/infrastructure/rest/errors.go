package rest

import (
	"fmt"
	"net/http"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// APIError is a non-2xx backend response decoded from the envelope. It wraps
// the matching domain sentinel so callers branch with errors.Is and still see
// the server's message and field errors.
type APIError struct {
	Status  int
	Message string
	Errors  map[string]string

	sentinel error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

// newAPIError maps an HTTP status to the error taxonomy. 401 is the sole
// trigger for the refresh protocol; 429 is surfaced as retryable-by-user and
// never auto-retried.
func newAPIError(status int, body *envelope) *APIError {
	e := &APIError{Status: status}
	if body != nil {
		e.Message = body.message()
		e.Errors = body.Errors
	}

	switch {
	case status == http.StatusUnauthorized:
		e.sentinel = domain.ErrUnauthorized
	case status == http.StatusForbidden:
		e.sentinel = domain.ErrForbidden
	case status == http.StatusNotFound:
		e.sentinel = domain.ErrNotFound
	case status == http.StatusTooManyRequests:
		e.sentinel = domain.ErrRateLimited
	case status >= 500:
		e.sentinel = domain.ErrServer
	case len(e.Errors) > 0:
		e.sentinel = domain.ErrValidation
	}
	return e
}
