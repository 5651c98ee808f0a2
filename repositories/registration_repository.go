package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationConflict          = errors.New("player is already registered for this tournament")
	ErrRegistrationPlayerInvalid     = errors.New("registration player is invalid")
	ErrRegistrationTournamentInvalid = errors.New("registration tournament is invalid")
	ErrResultsMismatch               = errors.New("results reference players without a registration")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID) (*models.Registration, error)
	// ListByTournament returns registrations in creation order. An empty statuses slice means all.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, statuses []models.RegistrationStatus) ([]*models.Registration, error)
	CountActive(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error)
	CountAll(ctx context.Context, tournamentID uuid.UUID) (int, error)
	// Reactivate resets a withdrawn or cancelled row to pending if its status still equals from.
	Reactivate(ctx context.Context, exec SQLExecutor, id uuid.UUID, from models.RegistrationStatus) (*models.Registration, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, from, to models.RegistrationStatus, checkedInAt *time.Time) (*models.Registration, error)
	UpdatePayment(ctx context.Context, exec SQLExecutor, id uuid.UUID, from, to models.PaymentStatus, paidAt *time.Time) (*models.Registration, error)
	BulkCheckIn(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, at time.Time) (int, error)
	SetResults(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, results models.TournamentResults) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `
	r.id, r.tournament_id, r.player_id, r.status, r.payment_status, r.paid_at, r.checked_in_at,
	r.position, r.points, r.created_at, r.updated_at`

const registrationSelect = `SELECT` + registrationColumns + `, p.nickname
	FROM registrations r
	LEFT JOIN profiles p ON p.id = r.player_id`

func scanRegistration(row rowScanner, withNickname bool) (*models.Registration, error) {
	reg := &models.Registration{}
	dest := []interface{}{
		&reg.ID, &reg.TournamentID, &reg.PlayerID, &reg.Status, &reg.PaymentStatus, &reg.PaidAt, &reg.CheckedInAt,
		&reg.Position, &reg.Points, &reg.CreatedAt, &reg.UpdatedAt,
	}
	if withNickname {
		dest = append(dest, &reg.PlayerNickname)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	query := `
		INSERT INTO registrations (id, tournament_id, player_id, status, payment_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		reg.ID, reg.TournamentID, reg.PlayerID, reg.Status, reg.PaymentStatus,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return handleRegistrationError(err)
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, registrationSelect+` WHERE r.id = $1`, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration %s: %w", id, err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID) (*models.Registration, error) {
	query := registrationSelect + ` WHERE r.tournament_id = $1 AND r.player_id = $2`
	reg, err := scanRegistration(getExecutor(r.db, exec).QueryRowContext(ctx, query, tournamentID, playerID), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, statuses []models.RegistrationStatus) ([]*models.Registration, error) {
	query := registrationSelect + ` WHERE r.tournament_id = $1`
	args := []interface{}{tournamentID}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query += ` AND r.status = ANY($2)`
		args = append(args, pq.Array(values))
	}
	query += ` ORDER BY r.created_at ASC, r.id ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows, true)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		registrations = append(registrations, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) CountActive(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1 AND status NOT IN ('withdrawn', 'cancelled')`
	var count int
	if err := getExecutor(r.db, exec).QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) CountAll(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) Reactivate(ctx context.Context, exec SQLExecutor, id uuid.UUID, from models.RegistrationStatus) (*models.Registration, error) {
	query := `
		UPDATE registrations r SET
			status = 'pending', payment_status = 'pending', paid_at = NULL, checked_in_at = NULL,
			position = NULL, points = NULL, updated_at = NOW()
		WHERE r.id = $1 AND r.status = $2
		RETURNING` + registrationColumns
	return r.casUpdate(ctx, getExecutor(r.db, exec), id, query, id, from)
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, from, to models.RegistrationStatus, checkedInAt *time.Time) (*models.Registration, error) {
	query := `
		UPDATE registrations r SET status = $1, checked_in_at = $2, updated_at = NOW()
		WHERE r.id = $3 AND r.status = $4
		RETURNING` + registrationColumns
	return r.casUpdate(ctx, getExecutor(r.db, exec), id, query, to, checkedInAt, id, from)
}

func (r *postgresRegistrationRepository) UpdatePayment(ctx context.Context, exec SQLExecutor, id uuid.UUID, from, to models.PaymentStatus, paidAt *time.Time) (*models.Registration, error) {
	query := `
		UPDATE registrations r SET payment_status = $1, paid_at = $2, updated_at = NOW()
		WHERE r.id = $3 AND r.payment_status = $4
		RETURNING` + registrationColumns
	return r.casUpdate(ctx, getExecutor(r.db, exec), id, query, to, paidAt, id, from)
}

func (r *postgresRegistrationRepository) casUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID, query string, args ...interface{}) (*models.Registration, error) {
	reg, err := scanRegistration(exec.QueryRowContext(ctx, query, args...), false)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, handleRegistrationError(err)
	}
	exists, existsErr := rowExists(ctx, exec, "registrations", id)
	if existsErr != nil {
		return nil, existsErr
	}
	if !exists {
		return nil, ErrRegistrationNotFound
	}
	return nil, ErrStatusConflict
}

func (r *postgresRegistrationRepository) BulkCheckIn(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, at time.Time) (int, error) {
	query := `
		UPDATE registrations SET status = 'present', checked_in_at = $1, updated_at = NOW()
		WHERE tournament_id = $2 AND status NOT IN ('present', 'withdrawn', 'cancelled')`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, at, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to check in registrations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresRegistrationRepository) SetResults(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, results models.TournamentResults) error {
	query := `
		UPDATE registrations r SET position = x.position, points = x.points, updated_at = NOW()
		FROM jsonb_to_recordset($2::jsonb) AS x(position INTEGER, player_id UUID, points INTEGER)
		WHERE r.tournament_id = $1 AND r.player_id = x.player_id`
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, tournamentID, results)
	if err != nil {
		return fmt.Errorf("failed to store registration results: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if int(affected) != len(results) {
		return fmt.Errorf("%w: updated %d of %d", ErrResultsMismatch, affected, len(results))
	}
	return nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func handleRegistrationError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "registrations_tournament_id_player_id_key" {
				return ErrRegistrationConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "registrations_player_id_fkey":
				return ErrRegistrationPlayerInvalid
			case "registrations_tournament_id_fkey":
				return ErrRegistrationTournamentInvalid
			}
		}
	}
	return fmt.Errorf("registration query failed: %w", err)
}
