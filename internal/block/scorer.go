// Package block scores candidate cards and assembles bounded study blocks.
package block

import (
	"math"
	"time"

	"github.com/mfukuda/studyset/internal/card"
)

const (
	// recencyHorizonDays is where the recency-gap term saturates: a card
	// untouched for this long is maximally stale.
	recencyHorizonDays = 30

	// DefaultMaxOverdueDays caps the overdue bonus so arbitrarily stale
	// cards do not dominate every block forever.
	DefaultMaxOverdueDays = 30
)

// Weights are the priority-score term weights. They should sum to 1.
type Weights struct {
	Dueness             float64
	DifficultyAlignment float64
	Mastery             float64
	RecencyGap          float64
}

// DefaultWeights returns the documented default weighting.
func DefaultWeights() Weights {
	return Weights{
		Dueness:             0.4,
		DifficultyAlignment: 0.2,
		Mastery:             0.25,
		RecencyGap:          0.15,
	}
}

// MasteryProvider supplies a card's mastery level in [0, 1].
type MasteryProvider interface {
	MasteryLevel(cardID int64) float64
}

// Scorer computes a single urgency score for a candidate card.
// Higher means more urgent to include in the next block.
type Scorer struct {
	weights        Weights
	mastery        MasteryProvider
	maxOverdueDays int
}

// NewScorer creates a Scorer. A non-positive maxOverdueDays falls back
// to DefaultMaxOverdueDays.
func NewScorer(weights Weights, mastery MasteryProvider, maxOverdueDays int) *Scorer {
	if maxOverdueDays <= 0 {
		maxOverdueDays = DefaultMaxOverdueDays
	}
	return &Scorer{
		weights:        weights,
		mastery:        mastery,
		maxOverdueDays: maxOverdueDays,
	}
}

// Score computes the weighted urgency of a card for today. A zero
// targetDifficulty means no target, which makes the alignment term neutral.
func (s *Scorer) Score(c card.Card, today time.Time, targetDifficulty int) float64 {
	score := s.weights.Dueness * s.dueness(c, today)
	score += s.weights.DifficultyAlignment * DifficultyAlignment(c.Difficulty, targetDifficulty)
	score += s.weights.Mastery * (1 - s.mastery.MasteryLevel(c.ID))
	score += s.weights.RecencyGap * s.recencyGap(c, today)
	return score
}

// dueness normalizes how overdue a card is. Cards not yet due, and new
// cards with no due date, contribute nothing. A card due today already
// counts one day of urgency; the bonus saturates at maxOverdueDays.
func (s *Scorer) dueness(c card.Card, today time.Time) float64 {
	if c.DueDate == nil || c.DueDate.After(today) {
		return 0
	}
	overdueDays := daysBetween(*c.DueDate, today)
	return math.Min(1, float64(overdueDays+1)/float64(s.maxOverdueDays))
}

// recencyGap grows with the days since this specific card was last
// reviewed, so a card answered earlier today scores near zero here even
// when it is nominally due again.
func (s *Scorer) recencyGap(c card.Card, today time.Time) float64 {
	if c.LastReviewedAt == nil {
		return 1
	}
	gapDays := daysBetween(*c.LastReviewedAt, today)
	if gapDays < 0 {
		gapDays = 0
	}
	return math.Min(1, float64(gapDays)/recencyHorizonDays)
}

// DifficultyAlignment measures how close a card's difficulty sits to the
// requested target, on [0, 1]. Without a target it is neutral.
func DifficultyAlignment(difficulty, targetDifficulty int) float64 {
	if targetDifficulty == 0 {
		return 0
	}
	maxDistance := float64(card.MaxDifficulty - card.MinDifficulty)
	distance := math.Abs(float64(difficulty - targetDifficulty))
	return 1 - distance/maxDistance
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
