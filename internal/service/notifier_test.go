package service

import (
	"context"
	"testing"

	"caseflow/internal/changefeed"
	"caseflow/internal/domain/models"
)

func TestChangeNotifierRecord(t *testing.T) {
	path := "user-1/abc.pdf"

	tests := []struct {
		name      string
		event     changefeed.Event
		wantCount int
		wantUser  string
		wantType  models.NotificationType
		wantTitle string
	}{
		{
			name: "insert stores added notice for the owner",
			event: changefeed.Event{
				Op:     changefeed.OpInsert,
				Record: &models.Document{ID: "d1", Title: "B101.pdf", StoragePath: &path},
			},
			wantCount: 1,
			wantUser:  "user-1",
			wantType:  models.NotificationInfo,
			wantTitle: "Document added",
		},
		{
			name: "status transition stores the analysis notice",
			event: changefeed.Event{
				Op:     changefeed.OpUpdate,
				Record: &models.Document{ID: "d1", Title: "B101.pdf", StoragePath: &path, ProcessingStatus: models.ProcessingStatusCompleted},
				Old:    &models.Document{ID: "d1", Title: "B101.pdf", StoragePath: &path, ProcessingStatus: models.ProcessingStatusProcessing},
			},
			wantCount: 1,
			wantUser:  "user-1",
			wantType:  models.NotificationSuccess,
			wantTitle: "Analysis complete",
		},
		{
			name: "delete stores removed notice from the old image",
			event: changefeed.Event{
				Op:  changefeed.OpDelete,
				Old: &models.Document{ID: "d1", Title: "B101.pdf", StoragePath: &path},
			},
			wantCount: 1,
			wantUser:  "user-1",
			wantType:  models.NotificationInfo,
			wantTitle: "Document removed",
		},
		{
			name: "folder event has no owner path and stores nothing",
			event: changefeed.Event{
				Op:     changefeed.OpInsert,
				Record: &models.Document{ID: "f1", Title: "Petition Forms", IsFolder: true},
			},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeNotificationRepository{}
			notifier := NewChangeNotifier(nil, NewNotificationService(repo, testLogger()), testLogger())

			notifier.record(context.Background(), &tt.event)

			if len(repo.created) != tt.wantCount {
				t.Fatalf("stored notifications = %d, want %d", len(repo.created), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			got := repo.created[0]
			if got.UserID != tt.wantUser {
				t.Errorf("user = %q, want %q", got.UserID, tt.wantUser)
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.ItemID == nil || *got.ItemID != "d1" {
				t.Errorf("item id = %v, want d1", got.ItemID)
			}
		})
	}
}
