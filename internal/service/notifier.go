package service

import (
	"context"
	"log/slog"
	"strings"

	"caseflow/internal/changefeed"
)

// ChangeNotifier subscribes globally to the change feed and stores each
// event's notice as a notification for the document's owner. It only writes
// notifications; refreshing views is the stream consumers' job.
type ChangeNotifier struct {
	feed          *changefeed.Feed
	notifications *NotificationService
	logger        *slog.Logger
}

// NewChangeNotifier creates a new change notifier
func NewChangeNotifier(feed *changefeed.Feed, notifications *NotificationService, logger *slog.Logger) *ChangeNotifier {
	return &ChangeNotifier{
		feed:          feed,
		notifications: notifications,
		logger:        logger,
	}
}

// Run consumes the feed until the context is canceled. Returns nil on
// cancellation.
func (n *ChangeNotifier) Run(ctx context.Context) error {
	sub := n.feed.Subscribe(changefeed.Filter{})
	defer sub.Close()

	n.logger.Info("change notifier started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			n.record(ctx, &event)
		}
	}
}

// record persists the event's notice for the owning user.
func (n *ChangeNotifier) record(ctx context.Context, event *changefeed.Event) {
	userID := eventOwner(event)
	if userID == "" {
		// Folders and legacy rows carry no owner-scoped storage path;
		// nobody to notify.
		return
	}

	notice := changefeed.BuildNotice(event)
	var itemID *string
	if id := event.DocumentID(); id != "" {
		itemID = &id
	}
	n.notifications.notify(ctx, userID, notice.Type, notice.Title, notice.Message, itemID)
}

// eventOwner derives the owning user from the storage path, whose first
// segment is the uploader's user id.
func eventOwner(event *changefeed.Event) string {
	path := event.StoragePath()
	owner, _, found := strings.Cut(path, "/")
	if !found {
		return ""
	}
	return owner
}
