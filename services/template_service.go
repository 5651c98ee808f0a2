package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, actor models.Actor, input CreateTemplateInput) (*models.SavedTemplate, error)
	ListTemplates(ctx context.Context, actor models.Actor) ([]*models.SavedTemplate, error)
	GetTemplate(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SavedTemplate, error)
	DeleteTemplate(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type CreateTemplateInput struct {
	Name     string                    `json:"name" validate:"required,min=1,max=200"`
	Template models.TournamentTemplate `json:"template"`
}

type templateService struct {
	templates repositories.TemplateRepository
	logger    *slog.Logger
}

func NewTemplateService(templates repositories.TemplateRepository, logger *slog.Logger) TemplateService {
	return &templateService{templates: templates, logger: logger}
}

func (s *templateService) CreateTemplate(ctx context.Context, actor models.Actor, input CreateTemplateInput) (*models.SavedTemplate, error) {
	if !canKeepTemplates(actor) {
		return nil, ErrUnauthorized
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := checkTemplate(input.Template); err != nil {
		return nil, err
	}

	tpl := &models.SavedTemplate{
		ID:       uuid.New(),
		OwnerID:  actor.ID,
		Name:     input.Name,
		Template: input.Template,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tournament template saved",
		slog.String("template_id", tpl.ID.String()), slog.String("owner_id", actor.ID.String()))
	return tpl, nil
}

func (s *templateService) ListTemplates(ctx context.Context, actor models.Actor) ([]*models.SavedTemplate, error) {
	if !canKeepTemplates(actor) {
		return nil, ErrUnauthorized
	}
	templates, err := s.templates.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament templates: %w", err)
	}
	return templates, nil
}

func (s *templateService) GetTemplate(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SavedTemplate, error) {
	return loadOwnedTemplate(ctx, s.templates, actor, id)
}

func (s *templateService) DeleteTemplate(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	tpl, err := loadOwnedTemplate(ctx, s.templates, actor, id)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, tpl.ID); err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament template deleted", slog.String("template_id", tpl.ID.String()))
	return nil
}

// canKeepTemplates reports whether actor may own saved templates.
func canKeepTemplates(actor models.Actor) bool {
	return actor.ID != uuid.Nil && (actor.Role == models.RoleOwner || actor.Role == models.RoleAdmin)
}

// loadOwnedTemplate returns the template when actor owns it or is privileged.
func loadOwnedTemplate(ctx context.Context, templates repositories.TemplateRepository, actor models.Actor, id uuid.UUID) (*models.SavedTemplate, error) {
	tpl, err := templates.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !canManage(actor, tpl.OwnerID) {
		return nil, ErrUnauthorized
	}
	return tpl, nil
}

// applyTemplate fills the fields input leaves empty from tpl.
func applyTemplate(input *CreateTournamentInput, tpl models.TournamentTemplate) {
	if input.Name == "" && tpl.Name != nil {
		input.Name = *tpl.Name
	}
	if input.Game == "" && tpl.Game != nil {
		input.Game = *tpl.Game
	}
	if input.Format == "" && tpl.Format != nil {
		input.Format = *tpl.Format
	}
	if input.Description == nil {
		input.Description = tpl.Description
	}
	if input.Rules == nil {
		input.Rules = tpl.Rules
	}
	if input.Prizes == nil {
		input.Prizes = tpl.Prizes
	}
	if input.MinParticipants == nil {
		input.MinParticipants = tpl.MinParticipants
	}
	if input.MaxParticipants == nil {
		input.MaxParticipants = tpl.MaxParticipants
	}
	if input.EntryFeeCents == 0 && tpl.EntryFeeCents != nil {
		input.EntryFeeCents = *tpl.EntryFeeCents
	}
	if input.RegistrationClosesMinutesBefore == nil {
		input.RegistrationClosesMinutesBefore = tpl.RegistrationClosesMinutesBefore
	}
}
