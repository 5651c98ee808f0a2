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
	ErrTournamentNotFound          = errors.New("tournament not found")
	ErrStatusConflict              = errors.New("status changed concurrently")
	ErrTournamentInvalidStore      = errors.New("invalid store reference")
	ErrTournamentInvalidSchedule   = errors.New("invalid recurring schedule reference")
	ErrTournamentConstraintViolate = errors.New("tournament violates a table constraint")
)

type ListTournamentsFilter struct {
	StoreID  *uuid.UUID
	Game     *models.GameType
	Statuses []models.TournamentStatus
	FromDate *models.Date
	ToDate   *models.Date
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	// Update writes the editable fields if the stored status still equals expected.
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament, expected models.TournamentStatus) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, from, to models.TournamentStatus) (*models.Tournament, error)
	Complete(ctx context.Context, exec SQLExecutor, id uuid.UUID, from models.TournamentStatus, results models.TournamentResults) (*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, store_id, name, game, format, description, rules, prizes,
	start_date, start_time, end_date, end_time, min_participants, max_participants,
	entry_fee_cents, registration_closes_minutes_before, status, results,
	is_recurring, recurring_schedule_id, created_at, updated_at`

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.StoreID, &t.Name, &t.Game, &t.Format, &t.Description, &t.Rules, &t.Prizes,
		&t.StartDate, &t.StartTime, &t.EndDate, &t.EndTime, &t.MinParticipants, &t.MaxParticipants,
		&t.EntryFeeCents, &t.RegistrationClosesMinutesBefore, &t.Status, &t.Results,
		&t.IsRecurring, &t.RecurringScheduleID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `
		INSERT INTO tournaments (
			id, store_id, name, game, format, description, rules, prizes,
			start_date, start_time, end_date, end_time, min_participants, max_participants,
			entry_fee_cents, registration_closes_minutes_before, status, results,
			is_recurring, recurring_schedule_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		t.ID, t.StoreID, t.Name, t.Game, t.Format, t.Description, t.Rules, t.Prizes,
		t.StartDate, t.StartTime, t.EndDate, t.EndTime, t.MinParticipants, t.MaxParticipants,
		t.EntryFeeCents, t.RegistrationClosesMinutesBefore, t.Status, t.Results,
		t.IsRecurring, t.RecurringScheduleID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return r.getOne(ctx, r.db, `SELECT`+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.getOne(ctx, getExecutor(r.db, exec), `SELECT`+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, exec SQLExecutor, query string, id uuid.UUID) (*models.Tournament, error) {
	t, err := scanTournament(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.StoreID != nil {
		query += fmt.Sprintf(" AND store_id = $%d", argID)
		args = append(args, *filter.StoreID)
		argID++
	}
	if filter.Game != nil {
		query += fmt.Sprintf(" AND game = $%d", argID)
		args = append(args, *filter.Game)
		argID++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argID)
		args = append(args, pq.Array(statuses))
		argID++
	}
	if filter.FromDate != nil {
		query += fmt.Sprintf(" AND start_date >= $%d", argID)
		args = append(args, *filter.FromDate)
		argID++
	}
	if filter.ToDate != nil {
		query += fmt.Sprintf(" AND start_date <= $%d", argID)
		args = append(args, *filter.ToDate)
		argID++
	}

	query += " ORDER BY start_date ASC, start_time ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament, expected models.TournamentStatus) error {
	executor := getExecutor(r.db, exec)
	query := `
		UPDATE tournaments SET
			name = $1, game = $2, format = $3, description = $4, rules = $5, prizes = $6,
			start_date = $7, start_time = $8, end_date = $9, end_time = $10,
			min_participants = $11, max_participants = $12, entry_fee_cents = $13,
			registration_closes_minutes_before = $14, updated_at = NOW()
		WHERE id = $15 AND status = $16
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Game, t.Format, t.Description, t.Rules, t.Prizes,
		t.StartDate, t.StartTime, t.EndDate, t.EndTime,
		t.MinParticipants, t.MaxParticipants, t.EntryFeeCents,
		t.RegistrationClosesMinutesBefore, t.ID, expected,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.casFailure(ctx, executor, t.ID)
	}
	return handleTournamentError(err)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, from, to models.TournamentStatus) (*models.Tournament, error) {
	executor := getExecutor(r.db, exec)
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING` + tournamentColumns
	t, err := scanTournament(executor.QueryRowContext(ctx, query, to, id, from))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.casFailure(ctx, executor, id)
	}
	if err != nil {
		return nil, handleTournamentError(err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) Complete(ctx context.Context, exec SQLExecutor, id uuid.UUID, from models.TournamentStatus, results models.TournamentResults) (*models.Tournament, error) {
	executor := getExecutor(r.db, exec)
	query := `
		UPDATE tournaments SET status = $1, results = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING` + tournamentColumns
	t, err := scanTournament(executor.QueryRowContext(ctx, query, models.StatusCompleted, results, id, from))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.casFailure(ctx, executor, id)
	}
	if err != nil {
		return nil, handleTournamentError(err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) casFailure(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	exists, err := rowExists(ctx, exec, "tournaments", id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return ErrStatusConflict
}

func handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			switch pqErr.Constraint {
			case "tournaments_store_id_fkey":
				return ErrTournamentInvalidStore
			case "tournaments_recurring_schedule_id_fkey":
				return ErrTournamentInvalidSchedule
			}
		case "23514":
			return fmt.Errorf("%w: %s", ErrTournamentConstraintViolate, pqErr.Constraint)
		}
	}
	return err
}
