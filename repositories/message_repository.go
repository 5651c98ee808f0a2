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

var ErrMessageInvalidTournament = errors.New("message tournament is invalid")

type MessageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.TournamentMessage) error
	// ListByTournament returns messages oldest first with the author's nickname.
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentMessage, error)
}

type postgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) Create(ctx context.Context, exec SQLExecutor, m *models.TournamentMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO tournament_messages (id, tournament_id, author_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, m.ID, m.TournamentID, m.AuthorID, m.Message).Scan(&m.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "tournament_messages_tournament_id_fkey" {
			return ErrMessageInvalidTournament
		}
		return fmt.Errorf("failed to create tournament message: %w", err)
	}
	return nil
}

func (r *postgresMessageRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentMessage, error) {
	query := `
		SELECT m.id, m.tournament_id, m.author_id, p.nickname, m.message, m.created_at
		FROM tournament_messages m
		LEFT JOIN profiles p ON p.id = m.author_id
		WHERE m.tournament_id = $1
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.TournamentMessage, 0)
	for rows.Next() {
		var (
			m        models.TournamentMessage
			nickname sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.TournamentID, &m.AuthorID, &nickname, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament message row: %w", err)
		}
		if nickname.Valid {
			m.AuthorNickname = &nickname.String
		}
		messages = append(messages, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament message rows: %w", err)
	}
	return messages, nil
}
