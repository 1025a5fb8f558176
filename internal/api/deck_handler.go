package api

import (
	"log/slog"
	"net/http"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/api/shared"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/platform/logger"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service"
)

// DeckRequest is the payload for creating or updating a deck.
type DeckRequest struct {
	Name      string               `json:"name"       validate:"required,max=200"`
	FolderIDs []string             `json:"folder_ids"`
	Settings  *domain.DeckSettings `json:"settings"`
}

// RescheduleResponse reports how many cards a history replay rebuilt.
type RescheduleResponse struct {
	DeckID    string `json:"deck_id"`
	Rebuilt   int    `json:"rebuilt"`
	Requested bool   `json:"requested"`
}

// DeckHandler handles deck management HTTP requests.
type DeckHandler struct {
	deckService *service.DeckService
	logger      *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckService *service.DeckService, logger *slog.Logger) *DeckHandler {
	if deckService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deckService cannot be nil for DeckHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckHandler{
		deckService: deckService,
		logger:      logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req DeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	deck, err := h.deckService.CreateDeck(r.Context(), req.Name, req.FolderIDs, req.Settings)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// ListDecks handles GET /decks. Every deck is returned with its current
// dashboard stats.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckService.ListDecks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// GetDeck handles GET /decks/{id}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.deckService.GetDeck(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// UpdateDeck handles PUT /decks/{id}. When the submitted settings request a
// reschedule, the deck's cards are rebuilt from history before responding;
// the response reports how many cards were rebuilt.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req DeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	deck, rebuilt, err := h.deckService.UpdateDeck(
		r.Context(), id, req.Name, req.FolderIDs, req.Settings,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if rebuilt > 0 {
		log.Info("deck rescheduled on settings change",
			slog.String("deck_id", id.String()),
			slog.Int("rebuilt", rebuilt))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Deck    *domain.Deck `json:"deck"`
		Rebuilt int          `json:"rebuilt"`
	}{Deck: deck, Rebuilt: rebuilt})
}

// DeleteDeck handles DELETE /decks/{id}. The deck's cards and review logs
// are removed with it.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.DeleteDeck(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RescheduleDeck handles POST /decks/{id}/reschedule, rebuilding every card
// in the deck from its review history under the deck's current settings.
func (h *DeckHandler) RescheduleDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	rebuilt, err := h.deckService.RescheduleDeck(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RescheduleResponse{
		DeckID:    id.String(),
		Rebuilt:   rebuilt,
		Requested: true,
	})
}
