package service

import (
	"context"
	"errors"
	"fmt"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/repository"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение уведомлений: %w", err)
	}
	return notes, nil
}

// MarkRead отмечает уведомление прочитанным; чужое уведомление - FORBIDDEN
func (s *NotificationService) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	note, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("уведомление", id.String())
		}
		return fmt.Errorf("получение уведомления: %w", err)
	}

	if note.UserID != userID {
		return NewForbidden("отметка чужого уведомления")
	}
	if note.Read {
		return nil
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("отметка уведомления: %w", err)
	}
	return nil
}
