package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/api/shared"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/platform/logger"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/scheduler"
)

// RateRequest is the payload for rating the current session entry.
type RateRequest struct {
	Rating string `json:"rating" validate:"required,oneof=again hard good easy"`
}

// SessionHandler handles review session HTTP requests.
type SessionHandler struct {
	sessions *scheduler.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *scheduler.SessionService, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /decks/{id}/session. It builds the due queue
// for the deck and opens a session over it, replacing any session already
// running for the same deck.
//
// A deck with items but nothing currently due responds 204 No Content.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.sessions.Start(r.Context(), deckID)
	if errors.Is(err, scheduler.ErrNoDueWork) {
		log.Debug("no due work for deck", slog.String("deck_id", deckID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session started",
		slog.String("session_id", view.ID.String()),
		slog.String("deck_id", deckID.String()),
		slog.Int("remaining", view.Remaining))
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// GetSession handles GET /sessions/{id}, returning the session snapshot
// with the current entry and its four projected outcomes. Reading the
// projections never mutates scheduling state.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.sessions.Current(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// RateCard handles POST /sessions/{id}/rate. The rating is applied to the
// session's current entry: the outcome is persisted and the session
// advances, requeueing the entry when it stays in a learning state.
func (h *SessionHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req RateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.sessions.Rate(r.Context(), sessionID, domain.Rating(req.Rating))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card rated",
		slog.String("session_id", sessionID.String()),
		slog.String("rating", string(result.Rating)),
		slog.Bool("requeued", result.Requeued),
		slog.Int("remaining", result.Session.Remaining))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// QuitSession handles DELETE /sessions/{id}. Quitting discards only the
// in-memory queue; every rating already committed stays persisted.
func (h *SessionHandler) QuitSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sessions.Quit(r.Context(), sessionID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
