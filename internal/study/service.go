// Package study orchestrates sessions, reviews, and block generation on
// top of the repositories, the scheduling engine, and the performance
// tracker. All scheduling math stays pure; this package owns the I/O.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/mfukuda/studyset/internal/block"
	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/performance"
	"github.com/mfukuda/studyset/internal/review"
)

//go:generate mockgen -source=service.go -destination=../mocks/study/mock_study.go -package=mock_study

// CardRepository is the slice of card storage the service needs.
type CardRepository interface {
	Create(ctx context.Context, c *card.Card) error
	Get(ctx context.Context, id int64) (*card.Card, error)
	FindPool(ctx context.Context, subject *card.Subject) ([]card.Card, error)
}

// ReviewRepository is the read side of the review log.
type ReviewRepository interface {
	FindBySession(ctx context.Context, sessionID int64) ([]review.Record, error)
	FindAll(ctx context.Context) ([]review.Record, error)
}

// SessionRepository manages session lifecycle.
type SessionRepository interface {
	Create(ctx context.Context, session *review.Session) error
	Get(ctx context.Context, id int64) (*review.Session, error)
	Close(ctx context.Context, id int64, endTime time.Time, accuracy, avgConfidence, qualityScore float64) error
}

// ReviewWriter atomically persists one review: the card's new scheduling
// state and the immutable review record commit or roll back together.
// Implementations return card.ErrVersionConflict on a lost update race.
type ReviewWriter interface {
	ApplyReview(ctx context.Context, cardID, version int64, state card.Scheduling, record *review.Record) error
}

// conflictRetryAttempts bounds optimistic-concurrency retries per review.
const conflictRetryAttempts = 3

// Service is the core-facing API consumed by the CLI and other front ends.
type Service struct {
	cards     CardRepository
	reviews   ReviewRepository
	sessions  SessionRepository
	writer    ReviewWriter
	tracker   *performance.Tracker
	generator *block.Generator

	// now is replaceable in tests.
	now func() time.Time
}

// NewService creates a Service.
func NewService(
	cards CardRepository,
	reviews ReviewRepository,
	sessions SessionRepository,
	writer ReviewWriter,
	tracker *performance.Tracker,
	generator *block.Generator,
) *Service {
	return &Service{
		cards:     cards,
		reviews:   reviews,
		sessions:  sessions,
		writer:    writer,
		tracker:   tracker,
		generator: generator,
		now:       time.Now,
	}
}

// WarmUp rebuilds the performance tracker from the full review history.
// Call once at startup; afterwards the tracker is updated incrementally.
func (s *Service) WarmUp(ctx context.Context) error {
	cards, err := s.cards.FindPool(ctx, nil)
	if err != nil {
		return fmt.Errorf("cards.FindPool() > %w", err)
	}
	records, err := s.reviews.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("reviews.FindAll() > %w", err)
	}
	s.tracker.Rebuild(cards, records)
	return nil
}

// StartSession opens a new study session.
func (s *Service) StartSession(ctx context.Context) (*review.Session, error) {
	session := &review.Session{StartTime: s.now()}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("sessions.Create() > %w", err)
	}
	return session, nil
}

// EndSession closes a session and computes its derived metrics from the
// reviews recorded under it. An abandoned session simply stays open;
// its recorded reviews remain valid either way.
func (s *Service) EndSession(ctx context.Context, sessionID int64) (*review.Session, error) {
	records, err := s.reviews.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reviews.FindBySession() > %w", err)
	}

	accuracy, avgConfidence, qualityScore := sessionMetrics(records)
	if err := s.sessions.Close(ctx, sessionID, s.now(), accuracy, avgConfidence, qualityScore); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, sessionID)
}

// ReviewCard applies one review: it validates input, runs the pure
// scheduling transition, and persists the outcome atomically. Concurrent
// reviews of the same card are serialized by the card's version column;
// a conflicting update is re-read and retried a bounded number of times.
func (s *Service) ReviewCard(
	ctx context.Context,
	sessionID, cardID int64,
	rawQuality int,
	confidence review.Confidence,
	correct bool,
	timeTakenSeconds int,
) (*card.Card, *review.Record, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.EndTime != nil {
		return nil, nil, fmt.Errorf("%w: id %d", review.ErrSessionClosed, sessionID)
	}

	var (
		updated *card.Card
		record  *review.Record
	)
	err = retry.Do(
		func() error {
			c, err := s.cards.Get(ctx, cardID)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			today := s.now()
			outcome, err := review.ApplyReview(c.Scheduling(), rawQuality, confidence, correct, today)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			rec := &review.Record{
				CardID:           c.ID,
				SessionID:        sessionID,
				ReviewedAt:       today,
				RawQuality:       rawQuality,
				Confidence:       confidence,
				Correct:          correct,
				TimeTakenSeconds: timeTakenSeconds,
				AdjustedQuality:  outcome.AdjustedQuality,
			}
			if err := s.writer.ApplyReview(ctx, c.ID, c.Version, outcome.State, rec); err != nil {
				if errors.Is(err, card.ErrVersionConflict) {
					slog.Debug("card version conflict, retrying review", "card_id", c.ID)
					return err
				}
				return retry.Unrecoverable(err)
			}

			c.ApplyScheduling(outcome.State)
			c.Version++
			updated = c
			record = rec
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(conflictRetryAttempts),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, nil, err
	}

	s.tracker.OnReview(updated.Subject, updated.Topic, *record)
	return updated, record, nil
}

// GetStudyBlock assembles a study block from the current card pool.
// Generation is read-only and tolerates reviews landing concurrently;
// the next call re-reads current state.
func (s *Service) GetStudyBlock(ctx context.Context, req block.Request) ([]card.Card, error) {
	pool, err := s.cards.FindPool(ctx, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("cards.FindPool() > %w", err)
	}
	return s.generator.Generate(pool, s.now(), req)
}

// GetStatistics returns per-topic aggregates, optionally restricted to
// one subject.
func (s *Service) GetStatistics(ctx context.Context, subject *card.Subject) ([]performance.TopicStats, error) {
	stats := s.tracker.AllStats()
	if subject == nil {
		return stats, nil
	}
	filtered := stats[:0]
	for _, ts := range stats {
		if ts.Subject == *subject {
			filtered = append(filtered, ts)
		}
	}
	return filtered, nil
}

// IdentifyWeakTopics returns the subject's topics whose lifetime accuracy
// falls below the threshold. No weak topics yields an empty list.
func (s *Service) IdentifyWeakTopics(ctx context.Context, subject card.Subject, threshold float64) ([]performance.TopicStats, error) {
	stats, err := s.GetStatistics(ctx, &subject)
	if err != nil {
		return nil, err
	}
	weak := make([]performance.TopicStats, 0, len(stats))
	for _, ts := range stats {
		if ts.TotalReviews > 0 && ts.Accuracy < threshold {
			weak = append(weak, ts)
		}
	}
	return weak, nil
}

// sessionMetrics derives a session's summary numbers from its records:
// accuracy, mean confidence on the 1-3 scale, and a composite quality
// score mixing accuracy with the mean adjusted grade.
func sessionMetrics(records []review.Record) (accuracy, avgConfidence, qualityScore float64) {
	if len(records) == 0 {
		return 0, 0, 0
	}

	var correct int
	var confidenceSum, adjustedSum float64
	for _, record := range records {
		if record.Correct {
			correct++
		}
		confidenceSum += record.Confidence.Weight()
		adjustedSum += record.AdjustedQuality
	}

	n := float64(len(records))
	accuracy = float64(correct) / n
	avgConfidence = confidenceSum / n
	qualityScore = 0.5*accuracy + 0.5*(adjustedSum/n)/5
	return accuracy, avgConfidence, qualityScore
}
