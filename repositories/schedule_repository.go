package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrScheduleNotFound     = errors.New("recurring schedule not found")
	ErrScheduleInvalidStore = errors.New("recurring schedule store is invalid")
	ErrScheduleDayMismatch  = errors.New("recurring schedule day does not match its frequency")
)

type ScheduleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, s *models.RecurringSchedule) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.RecurringSchedule, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.RecurringSchedule, error)
	// ListDue returns active schedules whose cached next occurrence is unset or not after day.
	ListDue(ctx context.Context, day models.Date) ([]*models.RecurringSchedule, error)
	SetNextOccurrence(ctx context.Context, exec SQLExecutor, id uuid.UUID, next models.Date) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.RecurringSchedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

const scheduleColumns = `
	id, store_id, name, template, frequency, day_of_week, day_of_month, time,
	is_active, next_occurrence, created_at`

func scanSchedule(row rowScanner) (*models.RecurringSchedule, error) {
	s := &models.RecurringSchedule{}
	var next models.Date
	err := row.Scan(
		&s.ID, &s.StoreID, &s.Name, &s.Template, &s.Frequency, &s.DayOfWeek, &s.DayOfMonth, &s.Time,
		&s.IsActive, &next, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if !next.IsZero() {
		s.NextOccurrence = &next
	}
	return s, nil
}

func (r *postgresScheduleRepository) Create(ctx context.Context, exec SQLExecutor, s *models.RecurringSchedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
		INSERT INTO recurring_schedules (id, store_id, name, template, frequency, day_of_week, day_of_month, time, is_active, next_occurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		s.ID, s.StoreID, s.Name, s.Template, s.Frequency, s.DayOfWeek, s.DayOfMonth, s.Time,
		s.IsActive, s.NextOccurrence,
	).Scan(&s.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch {
			case pqErr.Code == "23503" && pqErr.Constraint == "recurring_schedules_store_id_fkey":
				return ErrScheduleInvalidStore
			case pqErr.Code == "23514" && pqErr.Constraint == "chk_schedule_day":
				return ErrScheduleDayMismatch
			}
		}
		return fmt.Errorf("failed to create recurring schedule: %w", err)
	}
	return nil
}

func (r *postgresScheduleRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.RecurringSchedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM recurring_schedules WHERE id = $1`
	s, err := scanSchedule(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get recurring schedule %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresScheduleRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.RecurringSchedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM recurring_schedules WHERE store_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, storeID)
}

func (r *postgresScheduleRepository) ListDue(ctx context.Context, day models.Date) ([]*models.RecurringSchedule, error) {
	query := `SELECT` + scheduleColumns + ` FROM recurring_schedules
		WHERE is_active AND (next_occurrence IS NULL OR next_occurrence <= $1)
		ORDER BY created_at ASC`
	return r.list(ctx, query, day)
}

func (r *postgresScheduleRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.RecurringSchedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]*models.RecurringSchedule, 0)
	for rows.Next() {
		s, scanErr := scanSchedule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan recurring schedule row: %w", scanErr)
		}
		schedules = append(schedules, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring schedule rows: %w", err)
	}
	return schedules, nil
}

func (r *postgresScheduleRepository) SetNextOccurrence(ctx context.Context, exec SQLExecutor, id uuid.UUID, next models.Date) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE recurring_schedules SET next_occurrence = $1 WHERE id = $2`, next, id)
	if err != nil {
		return fmt.Errorf("failed to update next occurrence: %w", err)
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

func (r *postgresScheduleRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.RecurringSchedule, error) {
	query := `UPDATE recurring_schedules SET is_active = $1 WHERE id = $2 RETURNING` + scheduleColumns
	s, err := scanSchedule(r.db.QueryRowContext(ctx, query, active, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to update recurring schedule: %w", err)
	}
	return s, nil
}

func (r *postgresScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recurring_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring schedule: %w", err)
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}
