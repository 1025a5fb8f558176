package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
//
// Rows are append-only: there is no update or single-row delete. Deck-wide
// deletion exists only for the deck removal sweep.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx
// It returns a new ReviewLogStore instance bound to the given transaction.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.ReviewLogStore.Append
// It adds a log entry for the given key.
func (s *PostgresReviewLogStore) Append(
	ctx context.Context,
	key domain.CardKey,
	log *domain.ReviewLog,
) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := log.Validate(); err != nil {
		s.logger.WarnContext(ctx, "review log validation failed",
			slog.String("card_key", key.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_logs (
			deck_id, item_id, rating, review, due, state,
			stability, difficulty, elapsed_days, scheduled_days
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		key.DeckID,
		key.ItemID,
		string(log.Rating),
		log.Review,
		log.Due,
		string(log.State),
		log.Stability,
		log.Difficulty,
		log.ElapsedDays,
		log.ScheduledDays,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to append review log",
			slog.String("card_key", key.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// ListByKey implements store.ReviewLogStore.ListByKey
// It retrieves all log entries for the key, ordered by review timestamp
// ascending. A key with no logs yields an empty slice.
func (s *PostgresReviewLogStore) ListByKey(
	ctx context.Context,
	key domain.CardKey,
) ([]*domain.ReviewLog, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		SELECT rating, review, due, state,
		       stability, difficulty, elapsed_days, scheduled_days
		FROM review_logs
		WHERE deck_id = $1 AND item_id = $2
		ORDER BY review ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, key.DeckID, key.ItemID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	logs := make([]*domain.ReviewLog, 0)
	for rows.Next() {
		log, _, err := scanReviewLog(rows, false)
		if err != nil {
			return nil, MapError(err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return logs, nil
}

// ListByDeck implements store.ReviewLogStore.ListByDeck
// It retrieves every log sequence for a deck, keyed by item ID, each ordered
// by review timestamp ascending.
func (s *PostgresReviewLogStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
) (map[string][]*domain.ReviewLog, error) {
	query := `
		SELECT rating, review, due, state,
		       stability, difficulty, elapsed_days, scheduled_days, item_id
		FROM review_logs
		WHERE deck_id = $1
		ORDER BY review ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	logs := make(map[string][]*domain.ReviewLog)
	for rows.Next() {
		log, itemID, err := scanReviewLog(rows, true)
		if err != nil {
			return nil, MapError(err)
		}
		logs[itemID] = append(logs[itemID], log)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return logs, nil
}

// CountIntroducedSince implements store.ReviewLogStore.CountIntroducedSince
// It counts the items in the deck whose earliest log entry is at or after
// the given instant.
func (s *PostgresReviewLogStore) CountIntroducedSince(
	ctx context.Context,
	deckID uuid.UUID,
	since time.Time,
) (int, error) {
	query := `
		SELECT count(*)
		FROM (
			SELECT item_id, min(review) AS first_review
			FROM review_logs
			WHERE deck_id = $1
			GROUP BY item_id
		) firsts
		WHERE firsts.first_review >= $2
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, deckID, since).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// DeleteByDeck implements store.ReviewLogStore.DeleteByDeck
// It removes every log entry belonging to the deck.
func (s *PostgresReviewLogStore) DeleteByDeck(ctx context.Context, deckID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM review_logs WHERE deck_id = $1`, deckID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete deck review logs",
			slog.String("deck_id", deckID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		s.logger.DebugContext(ctx, "deck review logs deleted",
			slog.String("deck_id", deckID.String()),
			slog.Int64("count", affected))
	}

	return nil
}

// scanReviewLog reads one review-log row. When withItemID is true the query
// is expected to select item_id as the trailing column.
func scanReviewLog(row rowScanner, withItemID bool) (*domain.ReviewLog, string, error) {
	var (
		log    domain.ReviewLog
		rating string
		state  string
		itemID string
	)

	dest := []any{
		&rating,
		&log.Review,
		&log.Due,
		&state,
		&log.Stability,
		&log.Difficulty,
		&log.ElapsedDays,
		&log.ScheduledDays,
	}
	if withItemID {
		dest = append(dest, &itemID)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, "", err
	}

	log.Rating = domain.Rating(rating)
	log.State = domain.CardState(state)

	return &log, itemID, nil
}
