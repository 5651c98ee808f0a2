package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
)

var ErrTemplateNotFound = errors.New("tournament template not found")

type TemplateRepository interface {
	Create(ctx context.Context, t *models.SavedTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SavedTemplate, error)
	// ListByOwner returns the owner's templates, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SavedTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresTemplateRepository struct {
	db *sql.DB
}

func NewPostgresTemplateRepository(db *sql.DB) TemplateRepository {
	return &postgresTemplateRepository{db: db}
}

const templateColumns = ` id, owner_id, name, template, created_at`

func scanTemplate(row rowScanner) (*models.SavedTemplate, error) {
	t := &models.SavedTemplate{}
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Template, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTemplateRepository) Create(ctx context.Context, t *models.SavedTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `
		INSERT INTO tournament_templates (id, owner_id, name, template)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, t.ID, t.OwnerID, t.Name, t.Template).Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("failed to create tournament template: %w", err)
	}
	return nil
}

func (r *postgresTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SavedTemplate, error) {
	query := `SELECT` + templateColumns + ` FROM tournament_templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get tournament template %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTemplateRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SavedTemplate, error) {
	query := `SELECT` + templateColumns + ` FROM tournament_templates WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*models.SavedTemplate, 0)
	for rows.Next() {
		t, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament template row: %w", scanErr)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament template rows: %w", err)
	}
	return templates, nil
}

func (r *postgresTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament template: %w", err)
	}
	return checkAffectedRows(result, ErrTemplateNotFound)
}
