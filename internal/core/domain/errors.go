package domain

import "errors"

// Sentinel errors shared across the client core. Transport and service layers
// wrap these with %w so callers can branch with errors.Is.
var (
	// ErrUnauthorized signals an HTTP 401: the access token was missing,
	// expired, or rejected. Transient — it triggers the refresh protocol.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthExpired signals that the refresh token itself was rejected.
	// Terminal — the session has been torn down and the user must log in again.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrForbidden signals a role or policy denial. Never retried.
	ErrForbidden = errors.New("access forbidden")

	// ErrInvalidTransition signals a status change not present in the
	// transition table. Raised locally, before any network call.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRateLimited signals an HTTP 429. The caller may retry manually;
	// the client never retries it on its own.
	ErrRateLimited = errors.New("rate limited")

	// ErrNetwork signals a transport failure: no HTTP response arrived.
	ErrNetwork = errors.New("network error")

	// ErrServer signals a 5xx response decoded from the backend envelope.
	ErrServer = errors.New("server error")

	// ErrValidation signals a 4xx response carrying field errors.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the generic 404 sentinel on the client side.
	ErrNotFound = errors.New("not found")

	ErrUnknownStatus      = errors.New("unknown order status")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrFlagNotFound       = errors.New("feature flag not found")
	ErrNoSession          = errors.New("no active session")
)
