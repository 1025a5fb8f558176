package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
)

// ReviewLogStore defines the interface for review-log persistence. Log
// entries are append-only and immutable once written.
type ReviewLogStore interface {
	// Append adds a log entry for the given key.
	Append(ctx context.Context, key domain.CardKey, log *domain.ReviewLog) error

	// ListByKey retrieves all log entries for the key, ordered by review
	// timestamp ascending. A key with no logs yields an empty slice.
	ListByKey(ctx context.Context, key domain.CardKey) ([]*domain.ReviewLog, error)

	// ListByDeck retrieves every log sequence for a deck, keyed by item
	// ID, each ordered by review timestamp ascending.
	ListByDeck(ctx context.Context, deckID uuid.UUID) (map[string][]*domain.ReviewLog, error)

	// CountIntroducedSince counts the items in the deck whose earliest log
	// entry is at or after the given instant. This is the daily-quota
	// question: an item is "introduced" when it receives its first rating.
	CountIntroducedSince(ctx context.Context, deckID uuid.UUID, since time.Time) (int, error)

	// DeleteByDeck removes every log entry belonging to the deck. Part of
	// the deck-deletion sweep.
	DeleteByDeck(ctx context.Context, deckID uuid.UUID) error

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
