package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/api/shared"
)

// getPathUUID extracts and parses a UUID path parameter from the request.
// It writes a 400 response and returns false when the parameter is missing
// or not a valid UUID.
func getPathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Missing %s in URL", paramName))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s format", paramName))
		return uuid.Nil, false
	}
	return id, true
}
