package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
//
// Cards are keyed by the composite (deck_id, item_id) primary key, so
// deck-wide reads and deletes are single indexed statements.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
// It returns a new CardStore instance bound to the given transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.CardStore.Get
// It retrieves the card stored under the given key.
// Returns store.ErrCardNotFound if no card exists for the key.
func (s *PostgresCardStore) Get(ctx context.Context, key domain.CardKey) (*domain.Card, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		SELECT state, due, stability, difficulty,
		       elapsed_days, scheduled_days, reps, lapses, last_review
		FROM cards
		WHERE deck_id = $1 AND item_id = $2
	`

	card, _, err := scanCard(s.db.QueryRowContext(ctx, query, key.DeckID, key.ItemID), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}

	return card, nil
}

// GetByDeck implements store.CardStore.GetByDeck
// It retrieves all cards belonging to a deck, keyed by item ID.
// Decks with no cards yield an empty map, not an error.
func (s *PostgresCardStore) GetByDeck(
	ctx context.Context,
	deckID uuid.UUID,
) (map[string]*domain.Card, error) {
	query := `
		SELECT state, due, stability, difficulty,
		       elapsed_days, scheduled_days, reps, lapses, last_review, item_id
		FROM cards
		WHERE deck_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make(map[string]*domain.Card)
	for rows.Next() {
		card, itemID, err := scanCard(rows, true)
		if err != nil {
			return nil, MapError(err)
		}
		cards[itemID] = card
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return cards, nil
}

// Save implements store.CardStore.Save
// It upserts the card under the given key, overwriting any existing card.
// Used both by live reviews and by history replay.
func (s *PostgresCardStore) Save(ctx context.Context, key domain.CardKey, card *domain.Card) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := card.Validate(); err != nil {
		s.logger.WarnContext(ctx, "card validation failed during save",
			slog.String("card_key", key.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (
			deck_id, item_id, state, due, stability, difficulty,
			elapsed_days, scheduled_days, reps, lapses, last_review
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (deck_id, item_id) DO UPDATE SET
			state = EXCLUDED.state,
			due = EXCLUDED.due,
			stability = EXCLUDED.stability,
			difficulty = EXCLUDED.difficulty,
			elapsed_days = EXCLUDED.elapsed_days,
			scheduled_days = EXCLUDED.scheduled_days,
			reps = EXCLUDED.reps,
			lapses = EXCLUDED.lapses,
			last_review = EXCLUDED.last_review
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		key.DeckID,
		key.ItemID,
		string(card.State),
		card.Due,
		card.Stability,
		card.Difficulty,
		card.ElapsedDays,
		card.ScheduledDays,
		card.Reps,
		card.Lapses,
		card.LastReview,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save card",
			slog.String("card_key", key.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// DeleteByDeck implements store.CardStore.DeleteByDeck
// It removes every card belonging to the deck. Deleting zero cards is not
// an error.
func (s *PostgresCardStore) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = $1`, deckID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete deck cards",
			slog.String("deck_id", deckID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		s.logger.DebugContext(ctx, "deck cards deleted",
			slog.String("deck_id", deckID.String()),
			slog.Int64("count", affected))
	}

	return nil
}

// scanCard reads one card row. When withItemID is true the query is expected
// to select item_id as the trailing column.
func scanCard(row rowScanner, withItemID bool) (*domain.Card, string, error) {
	var (
		card       domain.Card
		state      string
		lastReview sql.NullTime
		itemID     string
	)

	dest := []any{
		&state,
		&card.Due,
		&card.Stability,
		&card.Difficulty,
		&card.ElapsedDays,
		&card.ScheduledDays,
		&card.Reps,
		&card.Lapses,
		&lastReview,
	}
	if withItemID {
		dest = append(dest, &itemID)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, "", err
	}

	card.State = domain.CardState(state)
	if lastReview.Valid {
		t := lastReview.Time
		card.LastReview = &t
	}

	return &card, itemID, nil
}
