package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/api"
	apiMiddleware "github.com/yaq94/Eagle-Memory-Enhancement/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware. Everything except authentication and the health check sits
// behind the JWT middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)
	catalogHandler := api.NewCatalogHandler(app.catalog, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Deck management
			r.Get("/decks", deckHandler.ListDecks)
			r.Post("/decks", deckHandler.CreateDeck)
			r.Get("/decks/{id}", deckHandler.GetDeck)
			r.Put("/decks/{id}", deckHandler.UpdateDeck)
			r.Delete("/decks/{id}", deckHandler.DeleteDeck)
			r.Post("/decks/{id}/reschedule", deckHandler.RescheduleDeck)
			r.Post("/decks/{id}/session", sessionHandler.StartSession)

			// Review sessions
			r.Get("/sessions/{id}", sessionHandler.GetSession)
			r.Post("/sessions/{id}/rate", sessionHandler.RateCard)
			r.Delete("/sessions/{id}", sessionHandler.QuitSession)

			// Media library passthrough
			r.Get("/folders", catalogHandler.ListFolders)
			r.Patch("/items/{id}", catalogHandler.UpdateItem)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
