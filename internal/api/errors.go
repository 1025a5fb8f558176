package api

import (
	"errors"
	"net/http"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/auth"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/scheduler"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, scheduler.ErrSessionNotFound),
		errors.Is(err, catalog.ErrItemNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict

	// Decks that cannot produce a session right now
	case errors.Is(err, scheduler.ErrDeckEmpty),
		errors.Is(err, scheduler.ErrSessionComplete),
		errors.Is(err, srs.ErrInvalidParameters):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrDeckNameEmpty),
		errors.Is(err, domain.ErrInvalidRetention),
		errors.Is(err, domain.ErrInvalidMaximumInterval),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest

	// The catalog is a separate process; its outages are upstream failures.
	case errors.Is(err, catalog.ErrCatalogUnavailable),
		errors.Is(err, catalog.ErrFolderUnavailable):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, scheduler.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, catalog.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, scheduler.ErrDeckEmpty):
		return "Deck folders contain no items"

	case errors.Is(err, scheduler.ErrSessionComplete):
		return "Session is already complete"

	case errors.Is(err, srs.ErrInvalidParameters):
		return "Deck settings produce invalid scheduling parameters"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be one of: again, hard, good, easy"

	case errors.Is(err, catalog.ErrCatalogUnavailable),
		errors.Is(err, catalog.ErrFolderUnavailable):
		return "Media library is unavailable"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrDeckNameEmpty),
		errors.Is(err, domain.ErrInvalidRetention),
		errors.Is(err, domain.ErrInvalidMaximumInterval),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}
