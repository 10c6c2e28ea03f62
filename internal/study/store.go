package study

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/database"
	"github.com/mfukuda/studyset/internal/review"
)

// DBReviewWriter implements ReviewWriter over MySQL. The card update and
// the review-record insert share one transaction, so a persistence
// failure leaves neither applied.
type DBReviewWriter struct {
	db      *sqlx.DB
	cards   *card.DBRepository
	reviews *review.DBRepository
}

// NewDBReviewWriter creates a DBReviewWriter.
func NewDBReviewWriter(db *sqlx.DB, cards *card.DBRepository, reviews *review.DBRepository) *DBReviewWriter {
	return &DBReviewWriter{db: db, cards: cards, reviews: reviews}
}

// ApplyReview persists one review atomically. The optimistic version
// check on the card row serializes concurrent reviews of the same card.
func (w *DBReviewWriter) ApplyReview(
	ctx context.Context,
	cardID, version int64,
	state card.Scheduling,
	record *review.Record,
) error {
	return database.RunInTx(ctx, w.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := w.cards.WithTx(tx).UpdateScheduling(ctx, cardID, version, state); err != nil {
			return err
		}
		return w.reviews.WithTx(tx).Create(ctx, record)
	})
}
