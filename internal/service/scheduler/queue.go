package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// learningWindow is how far ahead of "now" a learning or relearning card may
// be due and still enter the queue. Learning steps are minutes long; showing
// a card 10 minutes early beats stranding the user with nothing to do.
const learningWindow = 10 * time.Minute

// Entry pairs a catalog item with its current card for the duration of a
// session. Entries are transient and never persisted.
type Entry struct {
	Item catalog.Item
	Card domain.Card
}

// QueueBuilder produces the ordered review queue for one session.
type QueueBuilder struct {
	cards   store.CardStore
	quota   *QuotaTracker
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewQueueBuilder creates a QueueBuilder.
// If logger is nil, a default logger will be used.
func NewQueueBuilder(
	cards store.CardStore,
	quota *QuotaTracker,
	cat catalog.Catalog,
	logger *slog.Logger,
) *QueueBuilder {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if quota == nil {
		panic("quota cannot be nil")
	}
	if cat == nil {
		panic("catalog cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &QueueBuilder{
		cards:   cards,
		quota:   quota,
		catalog: cat,
		logger:  logger.With(slog.String("component", "queue_builder")),
	}
}

// Build resolves the deck's item pool and produces the session queue:
// learning/relearning cards due within the window (unlimited, due
// ascending), then due review cards (capped by limits.review, due
// ascending), then new items (capped by today's remaining quota, pool
// order). Bucket priority takes precedence over due time across buckets.
//
// Returns ErrDeckEmpty when the pool resolves to zero items and ErrNoDueWork
// when items exist but no bucket admits any of them.
func (b *QueueBuilder) Build(
	ctx context.Context,
	deck *domain.Deck,
	now time.Time,
) ([]Entry, error) {
	pool, err := b.catalog.ListItems(ctx, deck.FolderIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving deck item pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrDeckEmpty
	}

	cards, err := b.cards.GetByDeck(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("loading deck cards: %w", err)
	}

	remainingNew, err := b.quota.RemainingNew(ctx, deck, now)
	if err != nil {
		return nil, err
	}
	reviewLimit := deck.Settings.ReviewLimit()

	var learning, review, fresh []Entry

	for _, item := range pool {
		card, exists := cards[item.ID]

		switch {
		case !exists:
			// Never scheduled. A card is synthesized but not persisted
			// until the item is actually rated.
			if len(fresh) < remainingNew {
				fresh = append(fresh, Entry{Item: item, Card: domain.NewCard(now)})
			}
		case card.State == domain.CardStateNew:
			if len(fresh) < remainingNew {
				fresh = append(fresh, Entry{Item: item, Card: *card})
			}
		case card.InLearning():
			if !card.Due.After(now.Add(learningWindow)) {
				learning = append(learning, Entry{Item: item, Card: *card})
			}
		case card.State == domain.CardStateReview:
			if !card.Due.After(now) && len(review) < reviewLimit {
				review = append(review, Entry{Item: item, Card: *card})
			}
		}
	}

	sortByDue(learning)
	sortByDue(review)
	// New entries keep pool order.

	queue := make([]Entry, 0, len(learning)+len(review)+len(fresh))
	queue = append(queue, learning...)
	queue = append(queue, review...)
	queue = append(queue, fresh...)

	if len(queue) == 0 {
		return nil, ErrNoDueWork
	}

	b.logger.DebugContext(ctx, "queue built",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("learning", len(learning)),
		slog.Int("review", len(review)),
		slog.Int("new", len(fresh)))

	return queue, nil
}

func sortByDue(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Card.Due.Before(entries[j].Card.Due)
	})
}
