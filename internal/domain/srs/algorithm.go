// Package srs wraps the external forgetting-curve algorithm behind a small
// interface. The session scheduler never interprets memory parameters; it
// only asks the algorithm for candidate outcomes and picks one.
package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
)

// Common errors
var (
	// ErrInvalidParameters is returned when deck settings cannot be turned
	// into a working algorithm configuration. Operations hitting this error
	// must abort without touching any state.
	ErrInvalidParameters = errors.New("invalid scheduling parameters")

	// ErrInvalidCard is returned when a card cannot be evaluated, for
	// example because it carries an unknown state.
	ErrInvalidCard = errors.New("card cannot be evaluated")

	// ErrInvalidRating is returned when an outcome is requested for an
	// unknown rating.
	ErrInvalidRating = errors.New("invalid rating")
)

// Outcome pairs a candidate next card with the log entry that rating would
// append. The log snapshots the card as it was before the rating.
type Outcome struct {
	Card domain.Card
	Log  domain.ReviewLog
}

// Candidates holds one candidate outcome per possible rating, computed in a
// single evaluation. Callers pick an outcome without re-invoking the
// algorithm, so the same result serves both dry-run display and commits.
type Candidates struct {
	Again Outcome
	Hard  Outcome
	Good  Outcome
	Easy  Outcome
}

// ForRating selects the candidate outcome matching the given rating.
func (c Candidates) ForRating(r domain.Rating) (Outcome, error) {
	switch r {
	case domain.RatingAgain:
		return c.Again, nil
	case domain.RatingHard:
		return c.Hard, nil
	case domain.RatingGood:
		return c.Good, nil
	case domain.RatingEasy:
		return c.Easy, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidRating, r)
	}
}

// Algorithm computes candidate next-card states. Implementations must be
// pure: evaluating never mutates the input card or any persisted state, and
// identical inputs yield identical outputs. History replay depends on this.
type Algorithm interface {
	// Preview evaluates the card at the given instant and returns all four
	// candidate outcomes.
	Preview(card domain.Card, now time.Time) (Candidates, error)
}

// Provider builds an Algorithm from a deck's scheduling settings.
// Returns ErrInvalidParameters when the settings are unusable.
type Provider interface {
	ForSettings(settings domain.DeckSettings) (Algorithm, error)
}
