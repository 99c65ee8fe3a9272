package services

import (
	"context"
	"fmt"

	"caredraft/internal/models"
	"caredraft/internal/repository"

	"github.com/google/uuid"
)

// NotificationSink delivers user-facing alerts. The deadline processor
// depends on this interface so delivery can be swapped or faked.
type NotificationSink interface {
	Send(ctx context.Context, userID uint, notificationType, priority, title string, content models.JSONB) error
}

// NotificationService is the persisted notification sink: alerts land in
// the notifications table for the web client to render.
type NotificationService struct {
	repo *repository.Repository
}

func NewNotificationService(repo *repository.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Send persists one notification
func (s *NotificationService) Send(
	ctx context.Context,
	userID uint,
	notificationType, priority, title string,
	content models.JSONB,
) error {
	notification := &models.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     notificationType,
		Priority: priority,
		Title:    title,
		Content:  content,
	}
	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}
	return nil
}

// ListUserNotifications retrieves a user's notifications
func (s *NotificationService) ListUserNotifications(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListUserNotifications(ctx, userID, limit, offset)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, notificationID uuid.UUID, userID uint) (bool, error) {
	return s.repo.MarkNotificationRead(ctx, notificationID, userID)
}
