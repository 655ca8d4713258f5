package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
)

// PostgresNotificationRepository implements the NotificationRepository interface
type PostgresNotificationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(config *RepositoryConfig) repositories.NotificationRepository {
	return &PostgresNotificationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a notification row
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, type, title, message, item_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Notifications)

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		n.ItemID,
		n.Read,
		n.CreatedAt,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	filter := ""
	if unreadOnly {
		filter = "AND read = FALSE"
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, message, item_id, read, created_at
		FROM %s
		WHERE user_id = $1 %s
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.Notifications, filter)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var (
			n       models.Notification
			rawType string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &rawType, &n.Title, &n.Message, &n.ItemID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if t, err := models.ParseNotificationType(rawType); err == nil {
			n.Type = t
		} else {
			n.Type = models.NotificationInfo
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a single notification as read
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET read = TRUE WHERE id = $1 AND user_id = $2`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MarkAllRead flags all of a user's notifications as read
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET read = TRUE WHERE user_id = $1 AND read = FALSE`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}

// Delete removes a notification
func (r *PostgresNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
