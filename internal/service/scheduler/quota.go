package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// QuotaTracker computes how much of a deck's daily new-item allowance is
// still available. An item consumes quota the day it receives its first
// rating; items with no review history have not been introduced at all.
type QuotaTracker struct {
	logs store.ReviewLogStore
	day  DayPolicy
}

// NewQuotaTracker creates a QuotaTracker backed by the given log store.
func NewQuotaTracker(logs store.ReviewLogStore, day DayPolicy) *QuotaTracker {
	if logs == nil {
		panic("logs cannot be nil")
	}
	return &QuotaTracker{logs: logs, day: day}
}

// RemainingNew returns how many new items the deck may still introduce
// today: max(0, limits.new − introduced today). Never negative, so a limit
// lowered mid-day does not produce a negative allowance.
func (t *QuotaTracker) RemainingNew(
	ctx context.Context,
	deck *domain.Deck,
	now time.Time,
) (int, error) {
	introduced, err := t.logs.CountIntroducedSince(ctx, deck.ID, t.day.StartOfDay(now))
	if err != nil {
		return 0, fmt.Errorf("counting items introduced today: %w", err)
	}

	remaining := deck.Settings.NewLimit() - introduced
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
