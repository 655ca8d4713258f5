package repositories

import (
	"context"

	"caseflow/internal/domain/models"
)

// DocumentRepository defines data access for the unified documents table.
// Folders and leaf documents share the table; IsFolder distinguishes them.
type DocumentRepository interface {
	// Create inserts a new record and fills in its generated ID/timestamps
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// Update writes title, parent, folder type, metadata and status
	Update(ctx context.Context, doc *models.Document) error

	// UpdateProcessingStatus writes only the analysis status column
	UpdateProcessingStatus(ctx context.Context, id string, status models.ProcessingStatus) error

	// Delete removes a record permanently
	Delete(ctx context.Context, id string) error

	// ListAll returns the full flat record list, folders and documents alike,
	// ordered by recency (updated_at falling back to created_at)
	ListAll(ctx context.Context) ([]models.Document, error)

	// ListByParent lists immediate children of a folder (nil = root level)
	ListByParent(ctx context.Context, parentID *string) ([]models.Document, error)

	// CountChildren counts records whose parent_folder_id is the given folder.
	// The empty-folder delete guard depends on this being checked first.
	CountChildren(ctx context.Context, folderID string) (int, error)

	// SearchByTitle returns records whose title contains the query
	// (case-insensitive substring)
	SearchByTitle(ctx context.Context, query string) ([]models.Document, error)
}
