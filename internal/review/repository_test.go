package review

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordColumns() []string {
	return []string{
		"id", "card_id", "session_id", "reviewed_at", "raw_quality",
		"confidence", "correct", "time_taken_seconds", "adjusted_quality", "created_at",
	}
}

func TestDBRepository_Create(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "inserts a record and backfills the id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO review_records").
					WithArgs(int64(7), int64(3), now, 4, ConfidenceHigh, true, 12, 4.5).
					WillReturnResult(sqlmock.NewResult(21, 1))
			},
		},
		{
			name: "db error propagates",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO review_records").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
			tt.setupMock(mock)

			record := &Record{
				CardID:           7,
				SessionID:        3,
				ReviewedAt:       now,
				RawQuality:       4,
				Confidence:       ConfidenceHigh,
				Correct:          true,
				TimeTakenSeconds: 12,
				AdjustedQuality:  4.5,
			}
			err = repo.Create(context.Background(), record)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(21), record.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_FindByCard(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
	rows := sqlmock.NewRows(recordColumns()).
		AddRow(1, 7, 3, now, 4, "high", true, 12, 4.5, now).
		AddRow(2, 7, 3, now.Add(time.Minute), 2, "medium", false, 30, 2.0, now)
	mock.ExpectQuery("SELECT \\* FROM review_records WHERE card_id = \\? ORDER BY reviewed_at, id").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := repo.FindByCard(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ConfidenceHigh, got[0].Confidence)
	assert.True(t, got[0].Correct)
	assert.Equal(t, 2.0, got[1].AdjustedQuality)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_FindSince(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -7)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
	rows := sqlmock.NewRows(recordColumns()).
		AddRow(5, 7, 3, now, 3, "low", true, 20, 3.3, now)
	mock.ExpectQuery("SELECT \\* FROM review_records WHERE reviewed_at >= \\? ORDER BY reviewed_at, id").
		WithArgs(since).
		WillReturnRows(rows)

	got, err := repo.FindSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSessionRepository_Create(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDBSessionRepository(sqlx.NewDb(db, "mysql"))
	mock.ExpectExec("INSERT INTO sessions \\(start_time\\) VALUES \\(\\?\\)").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(11, 1))

	session := &Session{StartTime: now}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.Equal(t, int64(11), session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSessionRepository_Get(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("returns the session", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewDBSessionRepository(sqlx.NewDb(db, "mysql"))
		rows := sqlmock.NewRows([]string{"id", "start_time", "end_time", "accuracy", "avg_confidence", "quality_score"}).
			AddRow(11, now, nil, 0.0, 0.0, 0.0)
		mock.ExpectQuery("SELECT \\* FROM sessions WHERE id = \\?").
			WithArgs(int64(11)).
			WillReturnRows(rows)

		got, err := repo.Get(context.Background(), 11)
		require.NoError(t, err)
		assert.Equal(t, int64(11), got.ID)
		assert.Nil(t, got.EndTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id returns ErrSessionNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewDBSessionRepository(sqlx.NewDb(db, "mysql"))
		mock.ExpectQuery("SELECT \\* FROM sessions WHERE id = \\?").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "accuracy", "avg_confidence", "quality_score"}))

		_, err = repo.Get(context.Background(), 99)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBSessionRepository_Close(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := now.Add(30 * time.Minute)

	t.Run("closes an open session", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewDBSessionRepository(sqlx.NewDb(db, "mysql"))
		mock.ExpectExec("UPDATE sessions SET end_time = \\?, accuracy = \\?, avg_confidence = \\?, quality_score = \\? WHERE id = \\? AND end_time IS NULL").
			WithArgs(end, 0.8, 2.2, 0.76, int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Close(context.Background(), 11, end, 0.8, 2.2, 0.76))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already closed session returns ErrSessionClosed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewDBSessionRepository(sqlx.NewDb(db, "mysql"))
		mock.ExpectExec("UPDATE sessions SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		rows := sqlmock.NewRows([]string{"id", "start_time", "end_time", "accuracy", "avg_confidence", "quality_score"}).
			AddRow(11, now, end, 0.8, 2.2, 0.76)
		mock.ExpectQuery("SELECT \\* FROM sessions WHERE id = \\?").
			WithArgs(int64(11)).
			WillReturnRows(rows)

		err = repo.Close(context.Background(), 11, end, 0.8, 2.2, 0.76)
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing session returns ErrSessionNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewDBSessionRepository(sqlx.NewDb(db, "mysql"))
		mock.ExpectExec("UPDATE sessions SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT \\* FROM sessions WHERE id = \\?").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "accuracy", "avg_confidence", "quality_score"}))

		err = repo.Close(context.Background(), 99, end, 0.8, 2.2, 0.76)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
