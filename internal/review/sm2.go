package review

import (
	"math"
	"time"

	"github.com/mfukuda/studyset/internal/card"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// FailureThreshold is the adjusted quality below which a review counts
	// as a failure and resets the repetition streak.
	FailureThreshold = 3.0

	// Confidence adjustments applied to the raw quality grade. Overconfident
	// misses are penalized hardest; hesitant correct answers get a small boost.
	adjustHighCorrect   = 0.5
	adjustHighIncorrect = -1.0
	adjustLowCorrect    = 0.3
	adjustLowIncorrect  = -0.2
)

// Outcome is the result of applying one review to a card's scheduling state.
type Outcome struct {
	State           card.Scheduling
	AdjustedQuality float64
	Failed          bool
}

// AdjustQuality combines the raw 0-5 grade with the confidence/correctness
// pair and clamps the result to [0, 5]. Medium confidence is the neutral
// baseline and leaves the grade unchanged.
func AdjustQuality(rawQuality int, confidence Confidence, correct bool) (float64, error) {
	if rawQuality < 0 || rawQuality > 5 {
		return 0, ErrInvalidQuality
	}

	var adjustment float64
	switch confidence {
	case ConfidenceHigh:
		if correct {
			adjustment = adjustHighCorrect
		} else {
			adjustment = adjustHighIncorrect
		}
	case ConfidenceLow:
		if correct {
			adjustment = adjustLowCorrect
		} else {
			adjustment = adjustLowIncorrect
		}
	case ConfidenceMedium:
		adjustment = 0
	default:
		return 0, ErrInvalidConfidence
	}

	adjusted := float64(rawQuality) + adjustment
	return math.Min(5, math.Max(0, adjusted)), nil
}

// ApplyReview is the spaced-repetition state transition. It is a pure
// function: it validates its inputs, computes the new scheduling state,
// and performs no I/O. Persistence is the caller's responsibility.
//
// On failure (adjusted quality < 3) the repetition streak resets and the
// card comes back tomorrow. The ease factor is left unchanged on failure:
// the classical SM-2 penalty is already absorbed by the interval reset,
// and keeping the ease stable avoids punishing a card twice for one lapse.
func ApplyReview(
	state card.Scheduling,
	rawQuality int,
	confidence Confidence,
	correct bool,
	today time.Time,
) (Outcome, error) {
	adjusted, err := AdjustQuality(rawQuality, confidence, correct)
	if err != nil {
		return Outcome{}, err
	}

	next := state
	if next.EaseFactor == 0 {
		next.EaseFactor = DefaultEaseFactor
	}

	failed := adjusted < FailureThreshold
	if failed {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions++
		next.EaseFactor = updateEaseFactor(next.EaseFactor, adjusted)
		next.IntervalDays = nextInterval(state.IntervalDays, next.EaseFactor, next.Repetitions)
	}

	due := today.AddDate(0, 0, next.IntervalDays)
	next.DueDate = &due
	reviewedAt := today
	next.LastReviewedAt = &reviewedAt

	return Outcome{State: next, AdjustedQuality: adjusted, Failed: failed}, nil
}

// updateEaseFactor applies the SM-2 ease delta for a successful review,
// floored at MinEaseFactor.
func updateEaseFactor(ease, quality float64) float64 {
	delta := 0.1 - (5-quality)*(0.08+(5-quality)*0.02)
	return math.Max(ease+delta, MinEaseFactor)
}

// nextInterval grows the review interval: 1 day after the first success,
// 6 days after the second, then the previous interval times the ease factor.
func nextInterval(lastInterval int, ease float64, repetitions int) int {
	switch repetitions {
	case 1:
		return 1
	case 2:
		return 6
	default:
		if lastInterval < 1 {
			lastInterval = 1
		}
		interval := int(math.Round(float64(lastInterval) * ease))
		if interval < 1 {
			return 1
		}
		return interval
	}
}
