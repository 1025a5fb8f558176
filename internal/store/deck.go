package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
)

// DeckStore defines the interface for deck persistence.
type DeckStore interface {
	// Create saves a new deck.
	// Returns ErrDuplicate if a deck with the same ID already exists.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// List retrieves all decks ordered by creation time.
	List(ctx context.Context) ([]*domain.Deck, error)

	// Update overwrites an existing deck's name, folders, and settings.
	// Returns ErrDeckNotFound if the deck does not exist.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes the deck row. Card and review-log rows for the deck
	// are removed by their own stores within the same transaction; the
	// schema's ON DELETE CASCADE is a backstop, not the mechanism.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}
