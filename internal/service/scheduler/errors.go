package scheduler

import "errors"

// Boundary signals and errors surfaced by the scheduling core. EmptyDeck,
// NoDueWork, and SessionComplete are terminal conditions rather than
// failures, but they travel as errors so callers can distinguish them from
// a populated queue.
var (
	// ErrDeckEmpty indicates the deck's folders resolved to zero items.
	ErrDeckEmpty = errors.New("deck has no items")

	// ErrNoDueWork indicates the deck has items but nothing is currently
	// due: no learning cards in the window, no due reviews, no new quota.
	ErrNoDueWork = errors.New("deck has no due work")

	// ErrSessionComplete indicates the session's queue has been drained.
	ErrSessionComplete = errors.New("session complete")

	// ErrSessionNotFound indicates no active session exists for the ID.
	ErrSessionNotFound = errors.New("session not found")
)
