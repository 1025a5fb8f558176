package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/scheduler"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// DeckStats is the dashboard summary for one deck: how much work it holds
// right now. New is capped by today's remaining quota and Due by the review
// limit, so the numbers match what a session would actually present.
type DeckStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Due      int `json:"due"`
}

// DeckWithStats pairs a deck with its current stats.
type DeckWithStats struct {
	Deck  *domain.Deck `json:"deck"`
	Stats DeckStats    `json:"stats"`
}

// DeckService manages decks: CRUD, dashboard stats, and the reschedule
// trigger. Deleting a deck sweeps its cards and logs in the same
// transaction.
type DeckService struct {
	tx          store.TxRunner
	decks       store.DeckStore
	cards       store.CardStore
	logs        store.ReviewLogStore
	catalog     catalog.Catalog
	rescheduler *scheduler.Rescheduler
	quota       *scheduler.QuotaTracker
	now         func() time.Time
	logger      *slog.Logger
}

// NewDeckService creates a DeckService.
// The clock is injectable for tests; pass nil to use time.Now.
// If logger is nil, a default logger will be used.
func NewDeckService(
	tx store.TxRunner,
	decks store.DeckStore,
	cards store.CardStore,
	logs store.ReviewLogStore,
	cat catalog.Catalog,
	rescheduler *scheduler.Rescheduler,
	quota *scheduler.QuotaTracker,
	clock func() time.Time,
	logger *slog.Logger,
) *DeckService {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if decks == nil {
		panic("decks cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if logs == nil {
		panic("logs cannot be nil")
	}
	if cat == nil {
		panic("catalog cannot be nil")
	}
	if rescheduler == nil {
		panic("rescheduler cannot be nil")
	}
	if quota == nil {
		panic("quota cannot be nil")
	}

	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckService{
		tx:          tx,
		decks:       decks,
		cards:       cards,
		logs:        logs,
		catalog:     cat,
		rescheduler: rescheduler,
		quota:       quota,
		now:         clock,
		logger:      logger.With(slog.String("component", "deck_service")),
	}
}

// CreateDeck creates a deck over the given catalog folders. A nil settings
// pointer gets the editor defaults; provided settings have absent retention
// and interval values filled in.
func (s *DeckService) CreateDeck(
	ctx context.Context,
	name string,
	folderIDs []string,
	settings *domain.DeckSettings,
) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name, folderIDs, normalizeSettings(settings))
	if err != nil {
		return nil, err
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return deck, nil
}

// GetDeck retrieves a deck with its dashboard stats.
func (s *DeckService) GetDeck(ctx context.Context, id uuid.UUID) (*DeckWithStats, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.deckStats(ctx, deck)
	if err != nil {
		return nil, err
	}

	return &DeckWithStats{Deck: deck, Stats: stats}, nil
}

// ListDecks retrieves all decks with their dashboard stats.
func (s *DeckService) ListDecks(ctx context.Context) ([]*DeckWithStats, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*DeckWithStats, 0, len(decks))
	for _, deck := range decks {
		stats, err := s.deckStats(ctx, deck)
		if err != nil {
			return nil, err
		}
		out = append(out, &DeckWithStats{Deck: deck, Stats: stats})
	}
	return out, nil
}

// UpdateDeck overwrites a deck's name, folders, and settings. When the new
// settings carry reschedule = true, every card in the deck is rebuilt from
// its history under the new settings before this call returns; the second
// return value is the number of cards rebuilt.
func (s *DeckService) UpdateDeck(
	ctx context.Context,
	id uuid.UUID,
	name string,
	folderIDs []string,
	settings *domain.DeckSettings,
) (*domain.Deck, int, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	deck.Name = name
	deck.FolderIDs = folderIDs
	deck.Settings = normalizeSettings(settings)
	deck.UpdatedAt = s.now().UTC()

	if err := s.decks.Update(ctx, deck); err != nil {
		return nil, 0, err
	}

	rebuilt := 0
	if deck.Settings.Reschedule {
		rebuilt, err = s.rescheduler.RescheduleDeck(ctx, deck)
		if err != nil {
			return nil, 0, fmt.Errorf("deck saved but reschedule failed: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "deck updated",
		slog.String("deck_id", deck.ID.String()),
		slog.Bool("rescheduled", deck.Settings.Reschedule),
		slog.Int("cards_rebuilt", rebuilt))
	return deck, rebuilt, nil
}

// DeleteDeck removes the deck and sweeps every card and log belonging to
// it, all in one transaction. Other decks' keys are untouched.
func (s *DeckService) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.logs.WithTx(tx).DeleteByDeck(ctx, id); err != nil {
			return err
		}
		if err := s.cards.WithTx(tx).DeleteByDeck(ctx, id); err != nil {
			return err
		}
		return s.decks.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "deck deleted", slog.String("deck_id", id.String()))
	return nil
}

// RescheduleDeck replays the deck's histories under its current settings.
// Returns the number of cards rebuilt.
func (s *DeckService) RescheduleDeck(ctx context.Context, id uuid.UUID) (int, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.rescheduler.RescheduleDeck(ctx, deck)
}

// deckStats computes the dashboard numbers for one deck.
func (s *DeckService) deckStats(ctx context.Context, deck *domain.Deck) (DeckStats, error) {
	pool, err := s.catalog.ListItems(ctx, deck.FolderIDs)
	if err != nil {
		return DeckStats{}, fmt.Errorf("resolving deck item pool: %w", err)
	}

	cards, err := s.cards.GetByDeck(ctx, deck.ID)
	if err != nil {
		return DeckStats{}, fmt.Errorf("loading deck cards: %w", err)
	}

	now := s.now()
	stats := DeckStats{Total: len(pool)}
	totalNew := 0

	for _, item := range pool {
		card, exists := cards[item.ID]
		switch {
		case !exists || card.State == domain.CardStateNew:
			totalNew++
		case card.InLearning():
			stats.Learning++
		case card.State == domain.CardStateReview:
			if !card.Due.After(now) {
				stats.Due++
			}
		}
	}

	remaining, err := s.quota.RemainingNew(ctx, deck, now)
	if err != nil {
		return DeckStats{}, err
	}

	stats.New = min(totalNew, remaining)
	stats.Due = min(stats.Due, deck.Settings.ReviewLimit())
	return stats, nil
}

// normalizeSettings fills in absent settings values with the editor
// defaults. Limits are left as stored; DeckSettings substitutes their
// defaults at read time.
func normalizeSettings(settings *domain.DeckSettings) domain.DeckSettings {
	if settings == nil {
		return domain.DefaultDeckSettings()
	}

	out := *settings
	if out.RequestRetention <= 0 {
		out.RequestRetention = domain.DefaultRetention
	}
	if out.MaximumInterval <= 0 {
		out.MaximumInterval = domain.DefaultMaximumInterval
	}
	return out
}
