package changefeed

import (
	"fmt"

	"caseflow/internal/domain/models"
)

// Notice is the transient user-facing rendering of a change event. It is
// pushed alongside the event on the SSE stream and never stored.
type Notice struct {
	Type    models.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
}

// BuildNotice derives the notice for an event. For updates the text depends
// on whether the processing-status field changed value.
func BuildNotice(e *Event) Notice {
	title := changedTitle(e)

	switch e.Op {
	case OpInsert:
		if e.Record != nil && e.Record.IsFolder {
			return Notice{
				Type:    models.NotificationInfo,
				Title:   "Folder created",
				Message: fmt.Sprintf("Folder %q was created", title),
			}
		}
		return Notice{
			Type:    models.NotificationInfo,
			Title:   "Document added",
			Message: fmt.Sprintf("Document %q was added", title),
		}

	case OpDelete:
		return Notice{
			Type:    models.NotificationInfo,
			Title:   "Document removed",
			Message: fmt.Sprintf("%q was removed", title),
		}

	case OpUpdate:
		if e.StatusChanged() {
			return statusNotice(e, title)
		}
		return Notice{
			Type:    models.NotificationInfo,
			Title:   "Document updated",
			Message: fmt.Sprintf("%q was updated", title),
		}
	}

	return Notice{
		Type:    models.NotificationInfo,
		Title:   "Document changed",
		Message: fmt.Sprintf("%q changed", title),
	}
}

func statusNotice(e *Event, title string) Notice {
	switch e.Record.ProcessingStatus {
	case models.ProcessingStatusProcessing:
		return Notice{
			Type:    models.NotificationInfo,
			Title:   "Analysis started",
			Message: fmt.Sprintf("Analyzing %q", title),
		}
	case models.ProcessingStatusCompleted:
		return Notice{
			Type:    models.NotificationSuccess,
			Title:   "Analysis complete",
			Message: fmt.Sprintf("Analysis finished for %q", title),
		}
	case models.ProcessingStatusError:
		return Notice{
			Type:    models.NotificationError,
			Title:   "Analysis failed",
			Message: fmt.Sprintf("Analysis failed for %q", title),
		}
	default:
		return Notice{
			Type:    models.NotificationInfo,
			Title:   "Document updated",
			Message: fmt.Sprintf("%q was updated", title),
		}
	}
}

func changedTitle(e *Event) string {
	if e.Record != nil {
		return e.Record.Title
	}
	if e.Old != nil {
		return e.Old.Title
	}
	return "unknown"
}
