package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/api/shared"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
)

// UpdateItemRequest is the payload for editing a catalog item. Only the
// fields present in the request are sent to the library.
type UpdateItemRequest struct {
	Name       *string  `json:"name,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Star       *int     `json:"star,omitempty"       validate:"omitempty,min=0,max=5"`
	Annotation *string  `json:"annotation,omitempty"`
}

// CatalogHandler exposes the media library's folder tree and item editing
// to the web UI.
type CatalogHandler struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cat catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	if cat == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil for CatalogHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CatalogHandler{
		catalog: cat,
		logger:  logger.With(slog.String("component", "catalog_handler")),
	}
}

// ListFolders handles GET /folders, returning the library's folder tree so
// the deck editor can offer folders to bind decks to.
func (h *CatalogHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.catalog.Folders(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, folders)
}

// UpdateItem handles PATCH /items/{id}, forwarding the edit to the library.
// Item IDs are library-native strings, not UUIDs.
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	if itemID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing item ID in URL")
		return
	}

	var req UpdateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	update := catalog.ItemUpdate{
		Name:       req.Name,
		Tags:       req.Tags,
		Star:       req.Star,
		Annotation: req.Annotation,
	}
	if err := h.catalog.UpdateItem(r.Context(), itemID, update); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
