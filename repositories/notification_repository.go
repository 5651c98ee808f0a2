package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
)

var ErrUnknownAudience = errors.New("unknown notification audience")

type NotificationRepository interface {
	// CreateForAudience stores one row per recipient and returns the recipients.
	CreateForAudience(ctx context.Context, req models.NotificationRequest) ([]uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateForAudience(ctx context.Context, req models.NotificationRequest) ([]uuid.UUID, error) {
	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification data: %w", err)
	}

	var (
		query string
		args  = []interface{}{req.Type, req.Title, req.Message, payload}
	)
	switch req.Audience.Kind {
	case models.AudienceUser:
		query = `
			INSERT INTO notifications (user_id, type, title, message, data)
			VALUES ($5, $1, $2, $3, $4)
			RETURNING user_id`
		args = append(args, req.Audience.UserID)
	case models.AudienceAdmins:
		query = `
			INSERT INTO notifications (user_id, type, title, message, data)
			SELECT id, $1, $2, $3, $4 FROM profiles WHERE role = 'admin'
			RETURNING user_id`
	case models.AudienceRegistrants:
		query = `
			INSERT INTO notifications (user_id, type, title, message, data)
			SELECT player_id, $1, $2, $3, $4 FROM registrations
			WHERE tournament_id = $5 AND status NOT IN ('withdrawn', 'cancelled')
			RETURNING user_id`
		args = append(args, req.Audience.TournamentID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAudience, req.Audience.Kind)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}
	defer rows.Close()

	recipients := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan notification recipient: %w", err)
		}
		recipients = append(recipients, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification recipients: %w", err)
	}
	return recipients, nil
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := `SELECT id, user_id, type, title, message, data, read, created_at FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n := &models.Notification{}
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to decode notification data: %w", err)
			}
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}
