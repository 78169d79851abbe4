package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SummaryRecord is a persisted session summary row.
type SummaryRecord struct {
	ID              int64     `db:"id"`
	Lesson          string    `db:"lesson"`
	StartedAt       time.Time `db:"started_at"`
	EndedAt         time.Time `db:"ended_at"`
	DurationMinutes int       `db:"duration_minutes"`
	Passed          int       `db:"passed"`
	Failed          int       `db:"failed"`
	Skipped         int       `db:"skipped"`
	Relearned       int       `db:"relearned"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Summary converts the row back into an in-memory session summary.
func (r SummaryRecord) Summary() SessionSummary {
	return SessionSummary{
		Start:           r.StartedAt,
		End:             r.EndedAt,
		DurationMinutes: r.DurationMinutes,
		Passed:          r.Passed,
		Failed:          r.Failed,
		Skipped:         r.Skipped,
		Relearned:       r.Relearned,
	}
}

//go:generate mockgen -source=repository.go -destination=../mocks/history/mock_repository.go -package=mock_history Repository

// Repository defines operations for persisting session summaries.
type Repository interface {
	FindAll(ctx context.Context) ([]SummaryRecord, error)
	FindByLesson(ctx context.Context, lesson string) ([]SummaryRecord, error)
	FindSince(ctx context.Context, since time.Time) ([]SummaryRecord, error)
	FindLatest(ctx context.Context, lesson string) (*SummaryRecord, error)
	Create(ctx context.Context, record *SummaryRecord) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindAll returns all persisted summaries, oldest first.
func (r *DBRepository) FindAll(ctx context.Context) ([]SummaryRecord, error) {
	var records []SummaryRecord
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM learn_sessions ORDER BY started_at"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(learn_sessions) > %w", err)
	}
	return records, nil
}

// FindByLesson returns all summaries for one lesson, oldest first.
func (r *DBRepository) FindByLesson(ctx context.Context, lesson string) ([]SummaryRecord, error) {
	var records []SummaryRecord
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM learn_sessions WHERE lesson = ? ORDER BY started_at",
		lesson); err != nil {
		return nil, fmt.Errorf("db.SelectContext(learn_sessions by lesson) > %w", err)
	}
	return records, nil
}

// FindSince returns all summaries whose session started at or after the
// given time, oldest first.
func (r *DBRepository) FindSince(ctx context.Context, since time.Time) ([]SummaryRecord, error) {
	var records []SummaryRecord
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM learn_sessions WHERE started_at >= ? ORDER BY started_at",
		since); err != nil {
		return nil, fmt.Errorf("db.SelectContext(learn_sessions since) > %w", err)
	}
	return records, nil
}

// FindLatest returns the newest summary for a lesson, or nil if none
// exists.
func (r *DBRepository) FindLatest(ctx context.Context, lesson string) (*SummaryRecord, error) {
	var record SummaryRecord
	err := r.db.GetContext(ctx, &record,
		"SELECT * FROM learn_sessions WHERE lesson = ? ORDER BY started_at DESC LIMIT 1",
		lesson)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(latest learn_session) > %w", err)
	}
	return &record, nil
}

// Create inserts a new summary row and fills in its generated ID.
func (r *DBRepository) Create(ctx context.Context, record *SummaryRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO learn_sessions
			(lesson, started_at, ended_at, duration_minutes, passed, failed, skipped, relearned, created_at, updated_at)
		VALUES
			(:lesson, :started_at, :ended_at, :duration_minutes, :passed, :failed, :skipped, :relearned, :created_at, :updated_at)`,
		record)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(learn_sessions) > %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	record.ID = id
	return nil
}
