package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardInvalidState is returned when a card carries an unknown state value.
	ErrCardInvalidState = errors.New("card state is not valid")

	// ErrCardNegativeCounter is returned when a card counter is negative.
	ErrCardNegativeCounter = errors.New("card counters cannot be negative")

	// ErrCardZeroDue is returned when a card has no due timestamp.
	ErrCardZeroDue = errors.New("card due timestamp cannot be zero")

	// ErrEmptyDeckID is returned when a card key has no deck ID.
	ErrEmptyDeckID = errors.New("card key deck ID cannot be empty")

	// ErrEmptyItemID is returned when a card key has no item ID.
	ErrEmptyItemID = errors.New("card key item ID cannot be empty")
)

// CardState represents the learning stage of a card.
type CardState string

// Possible card states. A New card has never been rated; any other state
// implies at least one review log exists for the same key.
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// IsValid reports whether s is one of the known card states.
func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	default:
		return false
	}
}

// CardKey identifies a card by the deck that scheduled it and the catalog
// item it represents. Keys are a real composite type rather than flat
// strings so deck-wide operations can use an indexed deck ID lookup instead
// of prefix scans.
type CardKey struct {
	DeckID uuid.UUID `json:"deck_id"`
	ItemID string    `json:"item_id"`
}

// NewCardKey creates a CardKey for the given deck and item.
// Returns an error if either component is empty.
func NewCardKey(deckID uuid.UUID, itemID string) (CardKey, error) {
	key := CardKey{DeckID: deckID, ItemID: itemID}
	if err := key.Validate(); err != nil {
		return CardKey{}, err
	}
	return key, nil
}

// Validate checks if the CardKey has both components set.
func (k CardKey) Validate() error {
	if k.DeckID == uuid.Nil {
		return ErrEmptyDeckID
	}
	if k.ItemID == "" {
		return ErrEmptyItemID
	}
	return nil
}

// String renders the key in its legacy flat form, used for logging only.
func (k CardKey) String() string {
	return fmt.Sprintf("%s_%s", k.DeckID, k.ItemID)
}

// Card is the per-item memory-state record consumed and produced by the
// scheduling algorithm. Stability and Difficulty are opaque parameters owned
// by the algorithm; the scheduler only passes them through.
type Card struct {
	State         CardState  `json:"state"`
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	LastReview    *time.Time `json:"last_review,omitempty"`
}

// NewCard creates an empty card in the New state, due immediately.
// The card is not persisted until the item is actually rated.
func NewCard(now time.Time) Card {
	return Card{
		State: CardStateNew,
		Due:   now,
	}
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if !c.State.IsValid() {
		return ErrCardInvalidState
	}
	if c.Due.IsZero() {
		return ErrCardZeroDue
	}
	if c.ElapsedDays < 0 || c.ScheduledDays < 0 || c.Reps < 0 || c.Lapses < 0 {
		return ErrCardNegativeCounter
	}
	return nil
}

// InLearning reports whether the card is in a short-interval learning stage.
func (c *Card) InLearning() bool {
	return c.State == CardStateLearning || c.State == CardStateRelearning
}
