// Package performance aggregates per-topic review statistics. The tracker
// is a materialized view over the review log: it can always be rebuilt
// from history and is never the source of truth.
package performance

import (
	"sort"
	"sync"
	"time"

	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/review"
)

const (
	// Mastery requires at least this many consecutive successful
	// repetitions at this accuracy over the card's history.
	masteryRepetitions = 5
	masteryAccuracy    = 0.8

	accuracyWindow = 7 * 24 * time.Hour
)

// TopicStats is the derived aggregate for one (subject, topic) pair.
type TopicStats struct {
	Subject        card.Subject
	Topic          card.Topic
	TotalReviews   int
	CorrectReviews int
	Accuracy       float64
	Accuracy7Day   float64
	MasteryScore   float64
}

type topicKey struct {
	subject card.Subject
	topic   card.Topic
}

type windowEntry struct {
	at      time.Time
	correct bool
}

type topicState struct {
	subject card.Subject
	topic   card.Topic
	total   int
	correct int
	recent  []windowEntry
	cardIDs map[int64]struct{}
}

type cardState struct {
	repetitions int
	total       int
	correct     int
}

// Tracker maintains rolling per-topic counters without rescanning the
// full history on every read. Entries older than the 7-day window are
// evicted lazily when stats are read.
type Tracker struct {
	mu     sync.RWMutex
	topics map[topicKey]*topicState
	cards  map[int64]*cardState

	// now is replaceable in tests.
	now func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		topics: make(map[topicKey]*topicState),
		cards:  make(map[int64]*cardState),
		now:    time.Now,
	}
}

// OnReview incrementally folds one recorded review into the aggregates.
// A review counts as a success when its adjusted quality cleared the
// failure threshold, matching the scheduling engine's streak semantics.
func (t *Tracker) OnReview(subject card.Subject, topic card.Topic, record review.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := topicKey{subject: subject, topic: topic}
	ts := t.topics[key]
	if ts == nil {
		ts = &topicState{subject: subject, topic: topic, cardIDs: make(map[int64]struct{})}
		t.topics[key] = ts
	}

	ts.total++
	if record.Correct {
		ts.correct++
	}
	ts.recent = append(ts.recent, windowEntry{at: record.ReviewedAt, correct: record.Correct})
	ts.cardIDs[record.CardID] = struct{}{}

	cs := t.cards[record.CardID]
	if cs == nil {
		cs = &cardState{}
		t.cards[record.CardID] = cs
	}
	cs.total++
	if record.Correct {
		cs.correct++
	}
	if record.AdjustedQuality < review.FailureThreshold {
		cs.repetitions = 0
	} else {
		cs.repetitions++
	}
}

// Rebuild discards all aggregates and replays the full review history.
// Records must be ordered oldest first. Cards supply the subject/topic
// mapping for their records.
func (t *Tracker) Rebuild(cards []card.Card, records []review.Record) {
	topicByCard := make(map[int64]topicKey, len(cards))
	for _, c := range cards {
		topicByCard[c.ID] = topicKey{subject: c.Subject, topic: c.Topic}
	}

	t.mu.Lock()
	t.topics = make(map[topicKey]*topicState)
	t.cards = make(map[int64]*cardState)
	t.mu.Unlock()

	for _, record := range records {
		key, ok := topicByCard[record.CardID]
		if !ok {
			continue
		}
		t.OnReview(key.subject, key.topic, record)
	}
}

// TopicStats returns the aggregate for one (subject, topic) pair. Pairs
// with no reviews return a zero-valued aggregate.
func (t *Tracker) TopicStats(subject card.Subject, topic card.Topic) TopicStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := t.topics[topicKey{subject: subject, topic: topic}]
	if ts == nil {
		return TopicStats{Subject: subject, Topic: topic}
	}
	return t.buildStats(ts)
}

// AllStats returns aggregates for every (subject, topic) pair with at
// least one review, in a stable order.
func (t *Tracker) AllStats() []TopicStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make([]TopicStats, 0, len(t.topics))
	for _, ts := range t.topics {
		stats = append(stats, t.buildStats(ts))
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Subject != stats[j].Subject {
			return stats[i].Subject < stats[j].Subject
		}
		return stats[i].Topic < stats[j].Topic
	})
	return stats
}

// SevenDayAccuracy returns the accuracy over the trailing 7-day window,
// optionally restricted to one subject. No reviews in the window yields 0.
func (t *Tracker) SevenDayAccuracy(subject *card.Subject) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total, correct int
	for key, ts := range t.topics {
		if subject != nil && key.subject != *subject {
			continue
		}
		t.evictStale(ts)
		for _, entry := range ts.recent {
			total++
			if entry.correct {
				correct++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// MasteryLevel returns a card's mastery in [0, 1], a composite of its
// successful repetition streak and its lifetime accuracy. Unreviewed
// cards are fully unmastered.
func (t *Tracker) MasteryLevel(cardID int64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.masteryLevelLocked(cardID)
}

// Mastered reports whether a card has reached the mastery bar:
// 5 or more repetitions at 80% or better accuracy.
func (t *Tracker) Mastered(cardID int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cs := t.cards[cardID]
	if cs == nil || cs.total == 0 {
		return false
	}
	accuracy := float64(cs.correct) / float64(cs.total)
	return cs.repetitions >= masteryRepetitions && accuracy >= masteryAccuracy
}

// buildStats assembles a TopicStats from internal state. Caller holds the lock.
func (t *Tracker) buildStats(ts *topicState) TopicStats {
	t.evictStale(ts)

	stats := TopicStats{
		Subject:        ts.subject,
		Topic:          ts.topic,
		TotalReviews:   ts.total,
		CorrectReviews: ts.correct,
	}
	if ts.total > 0 {
		stats.Accuracy = float64(ts.correct) / float64(ts.total)
	}

	var windowTotal, windowCorrect int
	for _, entry := range ts.recent {
		windowTotal++
		if entry.correct {
			windowCorrect++
		}
	}
	if windowTotal > 0 {
		stats.Accuracy7Day = float64(windowCorrect) / float64(windowTotal)
	}

	// Topic mastery is the mean mastery level of the topic's cards.
	var masterySum float64
	for id := range ts.cardIDs {
		masterySum += t.masteryLevelLocked(id)
	}
	if len(ts.cardIDs) > 0 {
		stats.MasteryScore = masterySum / float64(len(ts.cardIDs))
	}
	return stats
}

func (t *Tracker) masteryLevelLocked(cardID int64) float64 {
	cs := t.cards[cardID]
	if cs == nil || cs.total == 0 {
		return 0
	}
	repsPart := float64(cs.repetitions) / masteryRepetitions
	if repsPart > 1 {
		repsPart = 1
	}
	accuracyPart := (float64(cs.correct) / float64(cs.total)) / masteryAccuracy
	if accuracyPart > 1 {
		accuracyPart = 1
	}
	return repsPart * accuracyPart
}

// evictStale drops window entries older than 7 days. Caller holds the lock.
func (t *Tracker) evictStale(ts *topicState) {
	cutoff := t.now().Add(-accuracyWindow)
	kept := ts.recent[:0]
	for _, entry := range ts.recent {
		if entry.at.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	ts.recent = kept
}
