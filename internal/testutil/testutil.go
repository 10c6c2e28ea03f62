// Package testutil provides shared test helpers for card fixtures and
// config files.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mfukuda/studyset/internal/card"
)

// CardOption configures optional fields when creating a card fixture.
type CardOption func(*card.Card)

// WithDueDate schedules the card at the given date.
func WithDueDate(due time.Time) CardOption {
	return func(c *card.Card) {
		c.DueDate = &due
	}
}

// WithLastReviewedAt sets the card's last review date.
func WithLastReviewedAt(at time.Time) CardOption {
	return func(c *card.Card) {
		c.LastReviewedAt = &at
	}
}

// WithRepetitions sets the card's repetition streak.
func WithRepetitions(repetitions int) CardOption {
	return func(c *card.Card) {
		c.Repetitions = repetitions
	}
}

// WithArchived marks the card as archived.
func WithArchived() CardOption {
	return func(c *card.Card) {
		c.Archived = true
	}
}

// NewCard creates a card fixture. Without options the card is new:
// no due date, default ease factor, zero repetitions.
func NewCard(id int64, subject card.Subject, topic card.Topic, difficulty int, opts ...CardOption) card.Card {
	c := card.Card{
		ID:          id,
		Subject:     subject,
		Topic:       topic,
		ConceptName: fmt.Sprintf("concept-%d", id),
		Question:    fmt.Sprintf("question %d?", id),
		Answer:      fmt.Sprintf("answer %d", id),
		Difficulty:  difficulty,
		EaseFactor:  2.5,
		Version:     1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WriteConfigFile writes a minimal config file into tmpDir and returns
// its path.
func WriteConfigFile(t *testing.T, tmpDir, content string) string {
	t.Helper()

	path := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
