package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/auth"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/scheduler"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"deck not found", store.ErrDeckNotFound, http.StatusNotFound},
		{"wrapped deck not found", fmt.Errorf("lookup: %w", store.ErrDeckNotFound), http.StatusNotFound},
		{"card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"session not found", scheduler.ErrSessionNotFound, http.StatusNotFound},
		{"item not found", catalog.ErrItemNotFound, http.StatusNotFound},
		{"email exists", service.ErrEmailExists, http.StatusConflict},
		{"empty deck", scheduler.ErrDeckEmpty, http.StatusUnprocessableEntity},
		{"session complete", scheduler.ErrSessionComplete, http.StatusUnprocessableEntity},
		{"invalid rating", domain.ErrInvalidRating, http.StatusBadRequest},
		{"empty deck name", domain.ErrDeckNameEmpty, http.StatusBadRequest},
		{"catalog unavailable", catalog.ErrCatalogUnavailable, http.StatusBadGateway},
		{"unknown error", errors.New("database exploded"), http.StatusInternalServerError},
		{"nil-adjacent unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("known errors get friendly text", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Deck not found", GetSafeErrorMessage(store.ErrDeckNotFound))
		assert.Equal(t, "Invalid credentials", GetSafeErrorMessage(service.ErrInvalidCredentials))
		assert.Equal(t, "Media library is unavailable",
			GetSafeErrorMessage(catalog.ErrCatalogUnavailable))
	})

	t.Run("unknown errors never leak detail", func(t *testing.T) {
		t.Parallel()

		raw := errors.New("pq: password authentication failed for user postgres")
		msg := GetSafeErrorMessage(raw)
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "postgres")
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}
