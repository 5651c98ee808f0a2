package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, actor models.Actor, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, actor models.Actor) (int, error)
}

type notificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListNotifications(ctx context.Context, actor models.Actor, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if actor.ID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	notifications, err := s.repo.ListByUser(ctx, actor.ID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkNotificationsRead(ctx context.Context, actor models.Actor) (int, error) {
	if actor.ID == uuid.Nil {
		return 0, ErrUnauthorized
	}
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
