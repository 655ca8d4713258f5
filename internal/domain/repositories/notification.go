package repositories

import (
	"context"

	"caseflow/internal/domain/models"
)

// NotificationRepository defines data access for stored user notifications.
type NotificationRepository interface {
	// Create inserts a notification and fills in its generated ID/timestamp
	Create(ctx context.Context, n *models.Notification) error

	// ListByUser returns a user's notifications, newest first
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)

	// MarkRead flags a single notification as read
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead flags all of a user's notifications as read
	MarkAllRead(ctx context.Context, userID string) error

	// Delete removes a notification
	Delete(ctx context.Context, id, userID string) error
}
