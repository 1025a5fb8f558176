package domain

import (
	"errors"
	"sort"
	"time"
)

// ReviewLog-specific validation errors
var (
	// ErrInvalidRating is returned when a rating is not one of the four
	// recognized values.
	ErrInvalidRating = errors.New("invalid review rating")

	// ErrLogZeroReview is returned when a review log has no review timestamp.
	ErrLogZeroReview = errors.New("review log timestamp cannot be zero")
)

// Rating represents the user's assessment of recall quality for one review.
type Rating string

// Possible rating values, ordered from complete failure to effortless recall.
const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Ratings lists all valid ratings in ascending order of recall quality.
func Ratings() []Rating {
	return []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}
}

// IsValid reports whether r is one of the four recognized ratings.
func (r Rating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// ReviewLog is the immutable record of one rating event. Besides the rating
// and its timestamp it snapshots the card fields as they were *before* the
// rating was applied, which history replay and analytics depend on.
//
// Logs are append-only. Storage order is normally chronological but is not
// guaranteed sorted; consumers replaying history must sort by Review
// ascending first.
type ReviewLog struct {
	Rating        Rating    `json:"rating"`
	Review        time.Time `json:"review"`
	Due           time.Time `json:"due"`
	State         CardState `json:"state"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   int       `json:"elapsed_days"`
	ScheduledDays int       `json:"scheduled_days"`
}

// Validate checks if the ReviewLog has valid data.
func (l *ReviewLog) Validate() error {
	if !l.Rating.IsValid() {
		return ErrInvalidRating
	}
	if l.Review.IsZero() {
		return ErrLogZeroReview
	}
	return nil
}

// SortLogsByReview sorts logs in place by review timestamp ascending.
// Replay correctness depends on chronological order, so callers must not
// assume storage order is already sorted.
func SortLogsByReview(logs []*ReviewLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Review.Before(logs[j].Review)
	})
}
