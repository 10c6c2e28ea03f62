// Package review provides review records, study sessions, and the
// spaced-repetition scheduling engine.
package review

import (
	"fmt"
	"strings"
	"time"
)

// Confidence is a closed enumeration of self-reported confidence levels.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence validates a raw confidence string.
func ParseConfidence(raw string) (Confidence, error) {
	switch Confidence(strings.ToLower(strings.TrimSpace(raw))) {
	case ConfidenceLow:
		return ConfidenceLow, nil
	case ConfidenceMedium:
		return ConfidenceMedium, nil
	case ConfidenceHigh:
		return ConfidenceHigh, nil
	}
	return "", fmt.Errorf("%w: unknown confidence %q", ErrInvalidConfidence, raw)
}

// Weight maps a confidence level onto a 1-3 scale for session aggregates.
func (c Confidence) Weight() float64 {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceHigh:
		return 3
	default:
		return 2
	}
}

// Record is an immutable log entry for a single card review.
// Records are created exactly once per review and never mutated.
type Record struct {
	ID               int64      `db:"id"`
	CardID           int64      `db:"card_id"`
	SessionID        int64      `db:"session_id"`
	ReviewedAt       time.Time  `db:"reviewed_at"`
	RawQuality       int        `db:"raw_quality"`
	Confidence       Confidence `db:"confidence"`
	Correct          bool       `db:"correct"`
	TimeTakenSeconds int        `db:"time_taken_seconds"`
	AdjustedQuality  float64    `db:"adjusted_quality"`
	CreatedAt        time.Time  `db:"created_at"`
}

// Session is a bounded sequence of reviews. The derived metrics are
// computed once when the session is closed.
type Session struct {
	ID            int64      `db:"id"`
	StartTime     time.Time  `db:"start_time"`
	EndTime       *time.Time `db:"end_time"`
	Accuracy      float64    `db:"accuracy"`
	AvgConfidence float64    `db:"avg_confidence"`
	QualityScore  float64    `db:"quality_score"`
}
