package srs

import (
	"fmt"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
)

// Supported FSRS weight vector lengths (FSRS-4.5 and FSRS-5).
const (
	weightsLenV4 = 17
	weightsLenV5 = 19
)

// FSRSProvider builds FSRS-backed algorithms from deck settings.
type FSRSProvider struct{}

// NewFSRSProvider creates a Provider backed by the FSRS reference
// implementation.
func NewFSRSProvider() *FSRSProvider {
	return &FSRSProvider{}
}

// Ensure FSRSProvider implements the Provider interface
var _ Provider = (*FSRSProvider)(nil)

// ForSettings implements Provider. It validates the deck settings and
// returns a configured algorithm, or ErrInvalidParameters.
func (p *FSRSProvider) ForSettings(settings domain.DeckSettings) (Algorithm, error) {
	if settings.RequestRetention <= 0 || settings.RequestRetention >= 1 {
		return nil, fmt.Errorf(
			"%w: request retention %v outside (0, 1)",
			ErrInvalidParameters,
			settings.RequestRetention,
		)
	}
	if settings.MaximumInterval <= 0 {
		return nil, fmt.Errorf(
			"%w: maximum interval %d must be positive",
			ErrInvalidParameters,
			settings.MaximumInterval,
		)
	}

	params := fsrs.DefaultParam()
	params.RequestRetention = settings.RequestRetention
	params.MaximumInterval = float64(settings.MaximumInterval)
	// Fuzzing would break replay determinism.
	params.EnableFuzz = false
	// Learning steps are interpreted by the algorithm's short-term
	// scheduler; an empty value disables intra-day scheduling.
	params.EnableShortTerm = strings.TrimSpace(settings.LearningSteps) != ""

	// An absent weight vector falls back to the library defaults, matching
	// the deck editor's behavior. FSRS-4.5 vectors are padded with the
	// default values for the two trailing FSRS-5 weights.
	switch len(settings.FSRSParams) {
	case 0:
	case weightsLenV4, weightsLenV5:
		copy(params.W[:], settings.FSRSParams)
	default:
		return nil, fmt.Errorf(
			"%w: weight vector has %d values, want %d or %d",
			ErrInvalidParameters,
			len(settings.FSRSParams),
			weightsLenV4,
			weightsLenV5,
		)
	}

	return &fsrsAlgorithm{scheduler: fsrs.NewFSRS(params)}, nil
}

// fsrsAlgorithm adapts the go-fsrs scheduler to the Algorithm interface.
type fsrsAlgorithm struct {
	scheduler *fsrs.FSRS
}

// Ensure fsrsAlgorithm implements the Algorithm interface
var _ Algorithm = (*fsrsAlgorithm)(nil)

// Preview implements Algorithm. It is a pure computation: the input card is
// copied into the library's representation and never mutated.
func (a *fsrsAlgorithm) Preview(card domain.Card, now time.Time) (Candidates, error) {
	fc, err := toFSRSCard(card)
	if err != nil {
		return Candidates{}, err
	}

	record := a.scheduler.Repeat(fc, now)

	candidates := Candidates{}
	for _, rating := range domain.Ratings() {
		info, ok := record[toFSRSRating(rating)]
		if !ok {
			return Candidates{}, fmt.Errorf(
				"%w: algorithm returned no outcome for rating %q",
				ErrInvalidCard,
				rating,
			)
		}

		outcome := Outcome{
			Card: fromFSRSCard(info.Card),
			// Snapshot the pre-rating card; elapsed/scheduled days come
			// from the algorithm's own log entry.
			Log: domain.ReviewLog{
				Rating:        rating,
				Review:        now,
				Due:           card.Due,
				State:         card.State,
				Stability:     card.Stability,
				Difficulty:    card.Difficulty,
				ElapsedDays:   int(info.ReviewLog.ElapsedDays),
				ScheduledDays: int(info.ReviewLog.ScheduledDays),
			},
		}

		switch rating {
		case domain.RatingAgain:
			candidates.Again = outcome
		case domain.RatingHard:
			candidates.Hard = outcome
		case domain.RatingGood:
			candidates.Good = outcome
		case domain.RatingEasy:
			candidates.Easy = outcome
		}
	}

	return candidates, nil
}

// toFSRSCard converts a domain card into the library representation.
func toFSRSCard(card domain.Card) (fsrs.Card, error) {
	state, err := toFSRSState(card.State)
	if err != nil {
		return fsrs.Card{}, err
	}

	fc := fsrs.Card{
		Due:           card.Due,
		Stability:     card.Stability,
		Difficulty:    card.Difficulty,
		ElapsedDays:   uint64(max(card.ElapsedDays, 0)),
		ScheduledDays: uint64(max(card.ScheduledDays, 0)),
		Reps:          uint64(max(card.Reps, 0)),
		Lapses:        uint64(max(card.Lapses, 0)),
		State:         state,
	}
	if card.LastReview != nil {
		fc.LastReview = *card.LastReview
	}
	return fc, nil
}

// fromFSRSCard converts a library card back into the domain representation.
func fromFSRSCard(fc fsrs.Card) domain.Card {
	card := domain.Card{
		State:         fromFSRSState(fc.State),
		Due:           fc.Due,
		Stability:     fc.Stability,
		Difficulty:    fc.Difficulty,
		ElapsedDays:   int(fc.ElapsedDays),
		ScheduledDays: int(fc.ScheduledDays),
		Reps:          int(fc.Reps),
		Lapses:        int(fc.Lapses),
	}
	if !fc.LastReview.IsZero() {
		last := fc.LastReview
		card.LastReview = &last
	}
	return card
}

func toFSRSState(s domain.CardState) (fsrs.State, error) {
	switch s {
	case domain.CardStateNew:
		return fsrs.New, nil
	case domain.CardStateLearning:
		return fsrs.Learning, nil
	case domain.CardStateReview:
		return fsrs.Review, nil
	case domain.CardStateRelearning:
		return fsrs.Relearning, nil
	default:
		return fsrs.New, fmt.Errorf("%w: unknown state %q", ErrInvalidCard, s)
	}
}

func fromFSRSState(s fsrs.State) domain.CardState {
	switch s {
	case fsrs.Learning:
		return domain.CardStateLearning
	case fsrs.Review:
		return domain.CardStateReview
	case fsrs.Relearning:
		return domain.CardStateRelearning
	default:
		return domain.CardStateNew
	}
}

func toFSRSRating(r domain.Rating) fsrs.Rating {
	switch r {
	case domain.RatingHard:
		return fsrs.Hard
	case domain.RatingGood:
		return fsrs.Good
	case domain.RatingEasy:
		return fsrs.Easy
	default:
		return fsrs.Again
	}
}
