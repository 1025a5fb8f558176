package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck name is empty.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrInvalidRetention is returned when request_retention is outside (0, 1).
	ErrInvalidRetention = errors.New("request retention must be between 0 and 1 exclusive")

	// ErrInvalidMaximumInterval is returned when maximum_interval is not positive.
	ErrInvalidMaximumInterval = errors.New("maximum interval must be positive")
)

// Default deck settings applied when a value is absent or non-positive.
// These are deliberate policy, not accidents: they preserve usable behavior
// when settings are incomplete.
const (
	DefaultNewLimit        = 20
	DefaultReviewLimit     = 200
	DefaultRetention       = 0.9
	DefaultMaximumInterval = 36500
	DefaultLearningSteps   = "1m 10m"
)

// DeckLimits caps how much work a single day may introduce.
type DeckLimits struct {
	New    int `json:"new"`
	Review int `json:"review"`
}

// DeckSettings is the scheduling configuration owned by a deck.
// LearningSteps and FSRSParams are interpreted by the scheduling algorithm,
// never by the session scheduler itself.
type DeckSettings struct {
	RequestRetention float64    `json:"request_retention"`
	MaximumInterval  int        `json:"maximum_interval"`
	Limits           DeckLimits `json:"limits"`
	LearningSteps    string     `json:"learning_steps"`
	FSRSParams       []float64  `json:"fsrs_params"`
	Reschedule       bool       `json:"reschedule"`
}

// NewLimit returns the per-day cap on newly introduced items, substituting
// the default when the configured value is absent or non-positive.
func (s DeckSettings) NewLimit() int {
	if s.Limits.New <= 0 {
		return DefaultNewLimit
	}
	return s.Limits.New
}

// ReviewLimit returns the per-day cap on due review items, substituting
// the default when the configured value is absent or non-positive.
func (s DeckSettings) ReviewLimit() int {
	if s.Limits.Review <= 0 {
		return DefaultReviewLimit
	}
	return s.Limits.Review
}

// DefaultDeckSettings returns the settings a freshly created deck starts with.
func DefaultDeckSettings() DeckSettings {
	return DeckSettings{
		RequestRetention: DefaultRetention,
		MaximumInterval:  DefaultMaximumInterval,
		Limits: DeckLimits{
			New:    DefaultNewLimit,
			Review: DefaultReviewLimit,
		},
		LearningSteps: DefaultLearningSteps,
	}
}

// Deck is a named, configured grouping of catalog items. FolderIDs reference
// catalog folders whose items constitute the deck's item pool.
type Deck struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	FolderIDs []string     `json:"folder_ids"`
	Settings  DeckSettings `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewDeck creates a new Deck with the given name, folder references, and
// settings. It generates a new UUID for the deck ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewDeck(name string, folderIDs []string, settings DeckSettings) (*Deck, error) {
	deck := &Deck{
		ID:        uuid.New(),
		Name:      name,
		FolderIDs: folderIDs,
		Settings:  settings,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.Name == "" {
		return ErrDeckNameEmpty
	}

	if d.Settings.RequestRetention <= 0 || d.Settings.RequestRetention >= 1 {
		return ErrInvalidRetention
	}

	if d.Settings.MaximumInterval <= 0 {
		return ErrInvalidMaximumInterval
	}

	return nil
}
