package service

import (
	"reflect"
	"testing"

	"caseflow/internal/domain/models"
)

func TestExtractClients(t *testing.T) {
	records := []models.Document{
		{
			ID:    "d-1",
			Title: "Petition.pdf",
			Metadata: models.Metadata{
				ClientID:   "cl-2",
				ClientName: "Walter Zhang",
			},
		},
		{
			ID:         "f-1",
			Title:      "Abbott, Janet",
			IsFolder:   true,
			FolderType: models.FolderTypeClient,
			Metadata: models.Metadata{
				ClientID:   "cl-1",
				ClientName: "Janet Abbott",
			},
		},
		// Duplicate client id with a conflicting name: first occurrence wins.
		{
			ID:    "d-2",
			Title: "Statement.pdf",
			Metadata: models.Metadata{
				ClientID:   "cl-2",
				ClientName: "W. Zhang",
			},
		},
		// No client metadata: contributes nothing.
		{
			ID:    "d-3",
			Title: "Checklist.pdf",
		},
	}

	got := ExtractClients(records)

	// Sorted by name: "Abbott, Janet" before "Janet Abbott" before "Walter Zhang".
	want := []models.ClientRef{
		{ID: "f-1", Name: "Abbott, Janet"},
		{ID: "cl-1", Name: "Janet Abbott"},
		{ID: "cl-2", Name: "Walter Zhang"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractClients() = %+v, want %+v", got, want)
	}
}

func TestExtractClientsNameFallsBackToID(t *testing.T) {
	records := []models.Document{
		{
			ID:       "d-1",
			Title:    "Anon.pdf",
			Metadata: models.Metadata{ClientID: "cl-9"},
		},
	}

	got := ExtractClients(records)

	if len(got) != 1 || got[0].Name != "cl-9" {
		t.Errorf("ExtractClients() = %+v, want single entry named cl-9", got)
	}
}

func TestExtractClientsEmptyInput(t *testing.T) {
	got := ExtractClients(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("ExtractClients(nil) = %v, want empty non-nil slice", got)
	}
}
