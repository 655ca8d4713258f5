package models

import (
	"testing"
	"time"
)

func TestParseFolderType(t *testing.T) {
	tests := []struct {
		in      string
		want    FolderType
		wantErr bool
	}{
		{in: "client", want: FolderTypeClient},
		{in: "form", want: FolderTypeForm},
		{in: "financial", want: FolderTypeFinancial},
		{in: "general", want: FolderTypeGeneral},
		{in: "", want: FolderTypeNone},
		{in: "mystery", wantErr: true},
		{in: "Client", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFolderType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFolderType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFolderType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseProcessingStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    ProcessingStatus
		wantErr bool
	}{
		{in: "pending", want: ProcessingStatusPending},
		{in: "processing", want: ProcessingStatusProcessing},
		{in: "completed", want: ProcessingStatusCompleted},
		// Historical rows used "complete"; it normalizes on read.
		{in: "complete", want: ProcessingStatusCompleted},
		{in: "error", want: ProcessingStatusError},
		{in: "", want: ProcessingStatusNone},
		{in: "done", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseProcessingStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProcessingStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseProcessingStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLastModified(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	doc := Document{CreatedAt: created, UpdatedAt: updated}
	if got := doc.LastModified(); !got.Equal(updated) {
		t.Errorf("LastModified() = %v, want updated_at", got)
	}

	doc = Document{CreatedAt: created}
	if got := doc.LastModified(); !got.Equal(created) {
		t.Errorf("LastModified() = %v, want created_at fallback", got)
	}
}
