package models

import (
	"fmt"
	"time"
)

// NotificationType classifies user-facing notifications.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// ParseNotificationType validates a raw notification type tag.
func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return NotificationType(s), nil
	default:
		return NotificationInfo, fmt.Errorf("unknown notification type %q", s)
	}
}

// Notification is a stored user-facing notification row. Change-feed events
// and mutation outcomes both surface here.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	ItemID    *string          `json:"item_id,omitempty" db:"item_id"` // document/folder the event concerns
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
