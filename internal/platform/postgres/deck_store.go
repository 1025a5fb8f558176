package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
//
// Folder references and settings are stored as jsonb columns: both are
// opaque documents owned by the deck, and jsonb keeps them readable in psql
// without a schema migration every time a setting is added.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the
// DeckStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
// It returns a new DeckStore instance bound to the given transaction.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.DeckStore.Create
// It saves a new deck to the database.
// Returns store.ErrDuplicate if a deck with the same ID already exists.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := s.logger.With(slog.String("deck_id", deck.ID.String()))

	if err := deck.Validate(); err != nil {
		log.WarnContext(ctx, "deck validation failed during create",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	folderIDs, settings, err := encodeDeckColumns(deck)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO decks (id, name, folder_ids, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		deck.ID,
		deck.Name,
		folderIDs,
		settings,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to create deck",
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.DebugContext(ctx, "deck created", slog.String("name", deck.Name))
	return nil
}

// GetByID implements store.DeckStore.GetByID
// It retrieves a deck by its unique ID.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := `
		SELECT id, name, folder_ids, settings, created_at, updated_at
		FROM decks
		WHERE id = $1
	`

	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, MapError(err)
	}

	return deck, nil
}

// List implements store.DeckStore.List
// It retrieves all decks ordered by creation time.
func (s *PostgresDeckStore) List(ctx context.Context) ([]*domain.Deck, error) {
	query := `
		SELECT id, name, folder_ids, settings, created_at, updated_at
		FROM decks
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	decks := make([]*domain.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, MapError(err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return decks, nil
}

// Update implements store.DeckStore.Update
// It overwrites an existing deck's name, folder references, and settings.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := s.logger.With(slog.String("deck_id", deck.ID.String()))

	if err := deck.Validate(); err != nil {
		log.WarnContext(ctx, "deck validation failed during update",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	folderIDs, settings, err := encodeDeckColumns(deck)
	if err != nil {
		return err
	}

	query := `
		UPDATE decks
		SET name = $2, folder_ids = $3, settings = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		deck.ID,
		deck.Name,
		folderIDs,
		settings,
		deck.UpdatedAt,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to update deck",
			slog.String("error", err.Error()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrDeckNotFound
	}

	return nil
}

// Delete implements store.DeckStore.Delete
// It removes the deck row. Card and review-log rows are removed by their own
// stores within the same transaction; the schema's ON DELETE CASCADE is a
// backstop, not the mechanism.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *PostgresDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete deck",
			slog.String("deck_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrDeckNotFound
	}

	s.logger.DebugContext(ctx, "deck deleted", slog.String("deck_id", id.String()))
	return nil
}

// encodeDeckColumns marshals the jsonb columns of a deck row.
func encodeDeckColumns(deck *domain.Deck) ([]byte, []byte, error) {
	folderIDs := deck.FolderIDs
	if folderIDs == nil {
		folderIDs = []string{}
	}

	folderJSON, err := json.Marshal(folderIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: encoding folder IDs: %v", store.ErrInvalidEntity, err)
	}

	settingsJSON, err := json.Marshal(deck.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: encoding settings: %v", store.ErrInvalidEntity, err)
	}

	return folderJSON, settingsJSON, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDeck reads one deck row, decoding the jsonb columns.
func scanDeck(row rowScanner) (*domain.Deck, error) {
	var (
		deck         domain.Deck
		folderJSON   []byte
		settingsJSON []byte
	)

	err := row.Scan(
		&deck.ID,
		&deck.Name,
		&folderJSON,
		&settingsJSON,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(folderJSON, &deck.FolderIDs); err != nil {
		return nil, fmt.Errorf("decoding folder IDs: %w", err)
	}
	if err := json.Unmarshal(settingsJSON, &deck.Settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	return &deck, nil
}
