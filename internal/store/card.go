package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
)

// CardStore defines the interface for card persistence. Cards are keyed by
// (deck, item); a card may not exist yet for an item that has never been
// rated.
type CardStore interface {
	// Get retrieves the card stored under the given key.
	// Returns ErrCardNotFound if no card exists for the key.
	Get(ctx context.Context, key domain.CardKey) (*domain.Card, error)

	// GetByDeck retrieves all cards belonging to a deck, keyed by item ID.
	// Decks with no cards yield an empty map, not an error.
	GetByDeck(ctx context.Context, deckID uuid.UUID) (map[string]*domain.Card, error)

	// Save upserts the card under the given key, overwriting any existing
	// card. Used both by live reviews and by history replay.
	Save(ctx context.Context, key domain.CardKey, card *domain.Card) error

	// DeleteByDeck removes every card belonging to the deck. Part of the
	// deck-deletion sweep; deleting zero cards is not an error.
	DeleteByDeck(ctx context.Context, deckID uuid.UUID) error

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
