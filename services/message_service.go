package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
)

const messagePreviewRunes = 100

// MessageService runs the tournament group: the operator posts, registrants read.
type MessageService interface {
	PostMessage(ctx context.Context, actor models.Actor, tournamentID uuid.UUID, input PostMessageInput) (*models.TournamentMessage, Warnings, error)
	ListMessages(ctx context.Context, actor models.Actor, tournamentID uuid.UUID) ([]*models.TournamentMessage, error)
}

type PostMessageInput struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type messageService struct {
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	messages      repositories.MessageRepository
	stores        repositories.StoreRepository
	events        *Events
	logger        *slog.Logger
}

func NewMessageService(
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	messages repositories.MessageRepository,
	stores repositories.StoreRepository,
	events *Events,
	logger *slog.Logger,
) MessageService {
	return &messageService{
		tournaments:   tournaments,
		registrations: registrations,
		messages:      messages,
		stores:        stores,
		events:        events,
		logger:        logger,
	}
}

func (s *messageService) PostMessage(ctx context.Context, actor models.Actor, tournamentID uuid.UUID, input PostMessageInput) (*models.TournamentMessage, Warnings, error) {
	input.Message = strings.TrimSpace(input.Message)
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if err := authorizeStore(ctx, s.stores, actor, t.StoreID); err != nil {
		return nil, nil, err
	}

	msg := &models.TournamentMessage{
		ID:           uuid.New(),
		TournamentID: t.ID,
		AuthorID:     actor.ID,
		Message:      input.Message,
	}
	if err := s.messages.Create(ctx, nil, msg); err != nil {
		return nil, nil, mapRepoError(err)
	}
	if nickname, err := s.stores.GetNickname(ctx, actor.ID); err == nil && nickname != "" {
		msg.AuthorNickname = &nickname
	}

	s.logger.InfoContext(ctx, "tournament message posted",
		slog.String("tournament_id", t.ID.String()), slog.String("message_id", msg.ID.String()))

	var w Warnings
	s.events.notify(ctx, &w, models.NotificationRequest{
		Audience: models.ToRegistrants(t.ID),
		Type:     models.NotificationTournamentMessage,
		Title:    "New message in the tournament group",
		Message:  messagePreview(msg.Message),
		Data:     map[string]interface{}{"tournament_id": t.ID.String(), "message_id": msg.ID.String()},
	}, slog.String("tournament_id", t.ID.String()))
	s.events.broadcast(t.ID, live.EventMessagePosted, msg)
	return msg, w, nil
}

func (s *messageService) ListMessages(ctx context.Context, actor models.Actor, tournamentID uuid.UUID) ([]*models.TournamentMessage, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.authorizeReader(ctx, actor, t); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of tournament %s: %w", t.ID, err)
	}
	return messages, nil
}

// authorizeReader admits the store operator and players holding an active registration.
func (s *messageService) authorizeReader(ctx context.Context, actor models.Actor, t *models.Tournament) error {
	if actor.ID == uuid.Nil && !actor.IsPrivileged() {
		return ErrUnauthorized
	}
	err := authorizeStore(ctx, s.stores, actor, t.StoreID)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return err
	}
	reg, regErr := s.registrations.FindByTournamentAndPlayer(ctx, nil, t.ID, actor.ID)
	switch {
	case errors.Is(regErr, repositories.ErrRegistrationNotFound):
		return ErrUnauthorized
	case regErr != nil:
		return fmt.Errorf("failed to check registration: %w", regErr)
	case !reg.Status.IsActive():
		return ErrUnauthorized
	}
	return nil
}

func messagePreview(text string) string {
	if utf8.RuneCountInString(text) <= messagePreviewRunes {
		return text
	}
	return string([]rune(text)[:messagePreviewRunes]) + "..."
}
