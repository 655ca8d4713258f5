package service

import (
	"context"
	"log/slog"

	"caseflow/internal/config"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
)

// NotificationService stores and lists user-facing notifications. Writes are
// best effort: a failed notification insert is logged and swallowed so it can
// never fail the operation it reports on.
type NotificationService struct {
	repo   repositories.NotificationRepository
	logger *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repositories.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > config.MaxNotificationLimit {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead flags all of a user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// NotifySuccess records a success notification.
func (s *NotificationService) NotifySuccess(ctx context.Context, userID, title, message string, itemID *string) {
	s.notify(ctx, userID, models.NotificationSuccess, title, message, itemID)
}

// NotifyWarning records a warning notification (policy refusals).
func (s *NotificationService) NotifyWarning(ctx context.Context, userID, title, message string, itemID *string) {
	s.notify(ctx, userID, models.NotificationWarning, title, message, itemID)
}

// NotifyError records an error notification.
func (s *NotificationService) NotifyError(ctx context.Context, userID, title, message string, itemID *string) {
	s.notify(ctx, userID, models.NotificationError, title, message, itemID)
}

func (s *NotificationService) notify(ctx context.Context, userID string, t models.NotificationType, title, message string, itemID *string) {
	if userID == "" {
		return
	}
	n := &models.Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		ItemID:  itemID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to store notification",
			"user_id", userID,
			"title", title,
			"error", err,
		)
	}
}
