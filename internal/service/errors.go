package service

import "errors"

// Common service errors - sentinel errors used across service
// implementations. Callers check them with errors.Is(); the API layer maps
// them to HTTP status codes.
var (
	// ErrEmailExists indicates a registration attempt with an email that is
	// already registered. API layer should map this to HTTP 409 Conflict.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates a login attempt with a wrong email or
	// password. Deliberately does not say which. API layer should map this
	// to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
