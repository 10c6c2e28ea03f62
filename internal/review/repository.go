package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations for the append-only review log.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByCard(ctx context.Context, cardID int64) ([]Record, error)
	FindBySession(ctx context.Context, sessionID int64) ([]Record, error)
	FindSince(ctx context.Context, since time.Time) ([]Record, error)
	FindAll(ctx context.Context) ([]Record, error)
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

// Create inserts a new review record. Records are immutable once written.
func (r *DBRepository) Create(ctx context.Context, record *Record) error {
	result, err := r.ext.ExecContext(ctx,
		`INSERT INTO review_records (card_id, session_id, reviewed_at, raw_quality, confidence, correct, time_taken_seconds, adjusted_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.CardID, record.SessionID, record.ReviewedAt, record.RawQuality,
		record.Confidence, record.Correct, record.TimeTakenSeconds, record.AdjustedQuality)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert review_record) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	record.ID = id
	return nil
}

// FindByCard returns all review records for a card, oldest first.
func (r *DBRepository) FindByCard(ctx context.Context, cardID int64) ([]Record, error) {
	var records []Record
	if err := sqlx.SelectContext(ctx, r.ext, &records,
		"SELECT * FROM review_records WHERE card_id = ? ORDER BY reviewed_at, id", cardID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_records by card) > %w", err)
	}
	return records, nil
}

// FindBySession returns all review records of a session, oldest first.
func (r *DBRepository) FindBySession(ctx context.Context, sessionID int64) ([]Record, error) {
	var records []Record
	if err := sqlx.SelectContext(ctx, r.ext, &records,
		"SELECT * FROM review_records WHERE session_id = ? ORDER BY reviewed_at, id", sessionID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_records by session) > %w", err)
	}
	return records, nil
}

// FindSince returns all review records on or after the given time, oldest first.
func (r *DBRepository) FindSince(ctx context.Context, since time.Time) ([]Record, error) {
	var records []Record
	if err := sqlx.SelectContext(ctx, r.ext, &records,
		"SELECT * FROM review_records WHERE reviewed_at >= ? ORDER BY reviewed_at, id", since); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_records since) > %w", err)
	}
	return records, nil
}

// FindAll returns the full review history, oldest first. Used to rebuild
// the performance tracker at startup.
func (r *DBRepository) FindAll(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := sqlx.SelectContext(ctx, r.ext, &records,
		"SELECT * FROM review_records ORDER BY reviewed_at, id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_records) > %w", err)
	}
	return records, nil
}

// SessionRepository defines operations for study sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id int64) (*Session, error)
	Close(ctx context.Context, id int64, endTime time.Time, accuracy, avgConfidence, qualityScore float64) error
}

// DBSessionRepository implements SessionRepository using MySQL.
type DBSessionRepository struct {
	ext sqlx.ExtContext
}

// NewDBSessionRepository creates a new DBSessionRepository.
func NewDBSessionRepository(db *sqlx.DB) *DBSessionRepository {
	return &DBSessionRepository{ext: db}
}

// Create inserts a new open session.
func (r *DBSessionRepository) Create(ctx context.Context, session *Session) error {
	result, err := r.ext.ExecContext(ctx,
		"INSERT INTO sessions (start_time) VALUES (?)", session.StartTime)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert session) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	session.ID = id
	return nil
}

// Get returns the session with the given id, or ErrSessionNotFound.
func (r *DBSessionRepository) Get(ctx context.Context, id int64) (*Session, error) {
	var session Session
	err := sqlx.GetContext(ctx, r.ext, &session, "SELECT * FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(session) > %w", err)
	}
	return &session, nil
}

// Close ends a session and stores its derived metrics.
func (r *DBSessionRepository) Close(ctx context.Context, id int64, endTime time.Time, accuracy, avgConfidence, qualityScore float64) error {
	result, err := r.ext.ExecContext(ctx,
		"UPDATE sessions SET end_time = ?, accuracy = ?, avg_confidence = ?, quality_score = ? WHERE id = ? AND end_time IS NULL",
		endTime, accuracy, avgConfidence, qualityScore, id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(close session) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: id %d", ErrSessionClosed, id)
	}
	return nil
}
