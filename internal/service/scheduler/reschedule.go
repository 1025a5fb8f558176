package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// Rescheduler rebuilds a deck's cards from their review histories. When
// scheduling parameters change, every card's state is recomputed by folding
// its full log sequence through the algorithm configured with the new
// settings. Logs are never rewritten; only cards are regenerated.
//
// The fold is a pure function of (empty card, ordered logs, settings), so
// replaying twice with the same inputs yields identical cards.
type Rescheduler struct {
	tx       store.TxRunner
	cards    store.CardStore
	logs     store.ReviewLogStore
	provider srs.Provider
	logger   *slog.Logger
}

// NewRescheduler creates a Rescheduler.
// If logger is nil, a default logger will be used.
func NewRescheduler(
	tx store.TxRunner,
	cards store.CardStore,
	logs store.ReviewLogStore,
	provider srs.Provider,
	logger *slog.Logger,
) *Rescheduler {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if logs == nil {
		panic("logs cannot be nil")
	}
	if provider == nil {
		panic("provider cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Rescheduler{
		tx:       tx,
		cards:    cards,
		logs:     logs,
		provider: provider,
		logger:   logger.With(slog.String("component", "rescheduler")),
	}
}

// RescheduleDeck replays every item's history under the deck's current
// settings and overwrites the stored cards with the replayed results. Items
// with no logs are left untouched: a card that was never rated has nothing
// to replay. All card writes commit in one transaction; a failure leaves
// every card as it was.
//
// Returns the number of cards rebuilt.
func (r *Rescheduler) RescheduleDeck(ctx context.Context, deck *domain.Deck) (int, error) {
	algo, err := r.provider.ForSettings(deck.Settings)
	if err != nil {
		return 0, fmt.Errorf("configuring algorithm for deck %s: %w", deck.ID, err)
	}

	histories, err := r.logs.ListByDeck(ctx, deck.ID)
	if err != nil {
		return 0, fmt.Errorf("loading deck histories: %w", err)
	}

	// Replay everything up front; nothing is written until every item's
	// history has folded cleanly.
	replayed := make(map[string]domain.Card, len(histories))
	for itemID, logs := range histories {
		if len(logs) == 0 {
			continue
		}

		card, err := ReplayHistory(algo, logs)
		if err != nil {
			return 0, fmt.Errorf("replaying item %s: %w", itemID, err)
		}
		replayed[itemID] = card
	}

	err = r.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txCards := r.cards.WithTx(tx)
		for itemID, card := range replayed {
			key, err := domain.NewCardKey(deck.ID, itemID)
			if err != nil {
				return err
			}
			if err := txCards.Save(ctx, key, &card); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.InfoContext(ctx, "deck rescheduled",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("cards_rebuilt", len(replayed)))

	return len(replayed), nil
}

// ReplayHistory folds a log sequence through the algorithm, starting from
// an empty card, and returns the resulting card. Logs are sorted by review
// time first; storage order is not guaranteed chronological.
func ReplayHistory(algo srs.Algorithm, logs []*domain.ReviewLog) (domain.Card, error) {
	if len(logs) == 0 {
		return domain.Card{}, errors.New("cannot replay an empty history")
	}

	sorted := make([]*domain.ReviewLog, len(logs))
	copy(sorted, logs)
	domain.SortLogsByReview(sorted)

	card := domain.NewCard(sorted[0].Review)
	for _, log := range sorted {
		candidates, err := algo.Preview(card, log.Review)
		if err != nil {
			return domain.Card{}, err
		}
		outcome, err := candidates.ForRating(log.Rating)
		if err != nil {
			return domain.Card{}, err
		}
		card = outcome.Card
	}

	return card, nil
}
