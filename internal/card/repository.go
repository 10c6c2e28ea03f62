package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations for managing cards.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	Get(ctx context.Context, id int64) (*Card, error)
	QueryDue(ctx context.Context, before time.Time, subject *Subject) ([]Card, error)
	QueryNew(ctx context.Context, subject *Subject) ([]Card, error)
	FindPool(ctx context.Context, subject *Subject) ([]Card, error)
	UpdateScheduling(ctx context.Context, id, version int64, state Scheduling) error
	Archive(ctx context.Context, id int64) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	ext sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{ext: db}
}

// WithTx returns a repository that runs its statements on the given transaction.
func (r *DBRepository) WithTx(tx *sqlx.Tx) *DBRepository {
	return &DBRepository{ext: tx}
}

// Create inserts a new card. The scheduling state starts at the defaults:
// ease factor 2.5, no due date (due immediately), zero repetitions.
func (r *DBRepository) Create(ctx context.Context, c *Card) error {
	result, err := r.ext.ExecContext(ctx,
		`INSERT INTO cards (subject, topic, concept_name, question, answer, difficulty, tags, archived, ease_factor, interval_days, repetitions, due_date, last_reviewed_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		c.Subject, c.Topic, c.ConceptName, c.Question, c.Answer, c.Difficulty,
		c.Tags, c.Archived, c.EaseFactor, c.IntervalDays, c.Repetitions, c.DueDate, c.LastReviewedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert card) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	c.ID = id
	c.Version = 1
	return nil
}

// Get returns the card with the given id, or ErrNotFound.
func (r *DBRepository) Get(ctx context.Context, id int64) (*Card, error) {
	var c Card
	err := sqlx.GetContext(ctx, r.ext, &c, "SELECT * FROM cards WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(card) > %w", err)
	}
	return &c, nil
}

// QueryDue returns non-archived cards whose due date is on or before the
// given time, optionally filtered by subject.
func (r *DBRepository) QueryDue(ctx context.Context, before time.Time, subject *Subject) ([]Card, error) {
	query := "SELECT * FROM cards WHERE archived = FALSE AND due_date IS NOT NULL AND due_date <= ?"
	args := []any{before}
	if subject != nil {
		query += " AND subject = ?"
		args = append(args, *subject)
	}
	query += " ORDER BY due_date, id"

	var cards []Card
	if err := sqlx.SelectContext(ctx, r.ext, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due cards) > %w", err)
	}
	return cards, nil
}

// QueryNew returns non-archived cards that have never been reviewed,
// optionally filtered by subject.
func (r *DBRepository) QueryNew(ctx context.Context, subject *Subject) ([]Card, error) {
	query := "SELECT * FROM cards WHERE archived = FALSE AND due_date IS NULL"
	args := []any{}
	if subject != nil {
		query += " AND subject = ?"
		args = append(args, *subject)
	}
	query += " ORDER BY id"

	var cards []Card
	if err := sqlx.SelectContext(ctx, r.ext, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(new cards) > %w", err)
	}
	return cards, nil
}

// FindPool returns all non-archived cards, optionally filtered by subject.
// This is the candidate pool for block generation.
func (r *DBRepository) FindPool(ctx context.Context, subject *Subject) ([]Card, error) {
	query := "SELECT * FROM cards WHERE archived = FALSE"
	args := []any{}
	if subject != nil {
		query += " AND subject = ?"
		args = append(args, *subject)
	}
	query += " ORDER BY id"

	var cards []Card
	if err := sqlx.SelectContext(ctx, r.ext, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(card pool) > %w", err)
	}
	return cards, nil
}

// UpdateScheduling writes a card's new spaced-repetition state using an
// optimistic version check. It returns ErrVersionConflict when the stored
// version no longer matches, which means another review won the race.
func (r *DBRepository) UpdateScheduling(ctx context.Context, id, version int64, state Scheduling) error {
	result, err := r.ext.ExecContext(ctx,
		`UPDATE cards
		SET ease_factor = ?, interval_days = ?, repetitions = ?, due_date = ?, last_reviewed_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		state.EaseFactor, state.IntervalDays, state.Repetitions, state.DueDate, state.LastReviewedAt,
		id, version)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update card scheduling) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: id %d version %d", ErrVersionConflict, id, version)
	}
	return nil
}

// Archive marks a card as archived. Cards are never deleted so that the
// review history stays consistent.
func (r *DBRepository) Archive(ctx context.Context, id int64) error {
	result, err := r.ext.ExecContext(ctx, "UPDATE cards SET archived = TRUE WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(archive card) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
