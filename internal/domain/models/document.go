package models

import (
	"fmt"
	"time"
)

// FolderType classifies folder records. It is a closed set: unknown tags are
// rejected at ingestion instead of silently falling into a default branch.
type FolderType string

const (
	FolderTypeNone      FolderType = ""
	FolderTypeClient    FolderType = "client"
	FolderTypeForm      FolderType = "form"
	FolderTypeFinancial FolderType = "financial"
	FolderTypeGeneral   FolderType = "general"
)

// ParseFolderType validates a raw folder_type tag.
func ParseFolderType(s string) (FolderType, error) {
	switch FolderType(s) {
	case FolderTypeNone, FolderTypeClient, FolderTypeForm, FolderTypeFinancial, FolderTypeGeneral:
		return FolderType(s), nil
	default:
		return FolderTypeNone, fmt.Errorf("unknown folder type %q", s)
	}
}

// ProcessingStatus tracks the asynchronous external analysis pipeline.
type ProcessingStatus string

const (
	ProcessingStatusNone       ProcessingStatus = ""
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusError      ProcessingStatus = "error"
)

// ParseProcessingStatus validates a raw status tag. The historical "complete"
// spelling normalizes to ProcessingStatusCompleted.
func ParseProcessingStatus(s string) (ProcessingStatus, error) {
	if s == "complete" {
		return ProcessingStatusCompleted, nil
	}
	switch ProcessingStatus(s) {
	case ProcessingStatusNone, ProcessingStatusPending, ProcessingStatusProcessing,
		ProcessingStatusCompleted, ProcessingStatusError:
		return ProcessingStatus(s), nil
	default:
		return ProcessingStatusNone, fmt.Errorf("unknown processing status %q", s)
	}
}

// Terminal reports whether the analysis pipeline is done with the record.
func (s ProcessingStatus) Terminal() bool {
	return s == ProcessingStatusCompleted || s == ProcessingStatusError
}

// Document is the unified record of the documents table. A row with
// IsFolder=true acts as a tree container; leaf rows carry a storage path
// referencing the file bytes in object storage.
type Document struct {
	ID               string           `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	IsFolder         bool             `json:"is_folder" db:"is_folder"`
	ParentFolderID   *string          `json:"parent_folder_id" db:"parent_folder_id"` // NULL = root level
	FolderType       FolderType       `json:"folder_type,omitempty" db:"folder_type"`
	Metadata         Metadata         `json:"metadata" db:"metadata"`
	StoragePath      *string          `json:"storage_path,omitempty" db:"storage_path"` // absent for folders
	ProcessingStatus ProcessingStatus `json:"ai_processing_status,omitempty" db:"ai_processing_status"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// LastModified returns the recency timestamp, falling back to CreatedAt when
// UpdatedAt was never set.
func (d *Document) LastModified() time.Time {
	if d.UpdatedAt.IsZero() {
		return d.CreatedAt
	}
	return d.UpdatedAt
}
