package changefeed

import (
	"testing"

	"caseflow/internal/domain/models"
)

func TestBuildNotice(t *testing.T) {
	tests := []struct {
		name      string
		ev        Event
		wantType  models.NotificationType
		wantTitle string
	}{
		{
			name: "folder insert",
			ev: Event{
				Op:     OpInsert,
				Record: &models.Document{ID: "f1", Title: "Petition Forms", IsFolder: true},
			},
			wantType:  models.NotificationInfo,
			wantTitle: "Folder created",
		},
		{
			name: "document insert",
			ev: Event{
				Op:     OpInsert,
				Record: &models.Document{ID: "d1", Title: "B101.pdf"},
			},
			wantType:  models.NotificationInfo,
			wantTitle: "Document added",
		},
		{
			name: "delete",
			ev: Event{
				Op:  OpDelete,
				Old: &models.Document{ID: "d1", Title: "B101.pdf"},
			},
			wantType:  models.NotificationInfo,
			wantTitle: "Document removed",
		},
		{
			name: "update without status change",
			ev: Event{
				Op:     OpUpdate,
				Record: &models.Document{ID: "d1", Title: "Renamed.pdf", ProcessingStatus: models.ProcessingStatusPending},
				Old:    &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusPending},
			},
			wantType:  models.NotificationInfo,
			wantTitle: "Document updated",
		},
		{
			name: "analysis started",
			ev: Event{
				Op:     OpUpdate,
				Record: &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusProcessing},
				Old:    &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusPending},
			},
			wantType:  models.NotificationInfo,
			wantTitle: "Analysis started",
		},
		{
			name: "analysis complete",
			ev: Event{
				Op:     OpUpdate,
				Record: &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusCompleted},
				Old:    &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusProcessing},
			},
			wantType:  models.NotificationSuccess,
			wantTitle: "Analysis complete",
		},
		{
			name: "analysis failed",
			ev: Event{
				Op:     OpUpdate,
				Record: &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusError},
				Old:    &models.Document{ID: "d1", Title: "B101.pdf", ProcessingStatus: models.ProcessingStatusProcessing},
			},
			wantType:  models.NotificationError,
			wantTitle: "Analysis failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildNotice(&tt.ev)
			if got.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Message == "" {
				t.Error("notice message must not be empty")
			}
		})
	}
}

func TestChangedTitleFallsBackToOldImage(t *testing.T) {
	ev := &Event{Op: OpDelete, Old: &models.Document{ID: "d1", Title: "Schedule I.pdf"}}
	if got := changedTitle(ev); got != "Schedule I.pdf" {
		t.Errorf("changedTitle() = %q, want old image title", got)
	}

	empty := &Event{Op: OpDelete}
	if got := changedTitle(empty); got != "unknown" {
		t.Errorf("changedTitle() without images = %q, want %q", got, "unknown")
	}
}
