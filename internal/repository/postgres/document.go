package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
// against the unified documents table.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, title, is_folder, parent_folder_id, folder_type, metadata, storage_path, ai_processing_status, created_at, updated_at`

// Create inserts a new record and backfills generated fields
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (title, is_folder, parent_folder_id, folder_type, metadata, storage_path, ai_processing_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		doc.Title,
		doc.IsFolder,
		doc.ParentFolderID,
		string(doc.FolderType),
		metadata,
		doc.StoragePath,
		string(doc.ProcessingStatus),
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			// Look up the existing row so the handler can return it with
			// the 409.
			existingID, lookupErr := r.getExistingID(ctx, doc.ParentFolderID, doc.Title)
			if lookupErr != nil {
				return fmt.Errorf("record %q already exists in this location: %w", doc.Title, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a record named %q already exists in this location", doc.Title),
				ResourceType: "document",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// getExistingID fetches the id of the sibling that caused a unique violation.
func (r *PostgresDocumentRepository) getExistingID(ctx context.Context, parentFolderID *string, title string) (string, error) {
	var query string
	var args []interface{}
	if parentFolderID != nil {
		query = fmt.Sprintf(`SELECT id FROM %s WHERE parent_folder_id = $1 AND title = $2`, r.tables.Documents)
		args = []interface{}{*parentFolderID, title}
	} else {
		query = fmt.Sprintf(`SELECT id FROM %s WHERE parent_folder_id IS NULL AND title = $1`, r.tables.Documents)
		args = []interface{}{title}
	}

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("find existing record: %w", err)
	}
	return id, nil
}

// GetByID retrieves a record by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// Update writes the mutable columns of a record
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, parent_folder_id = $3, folder_type = $4, metadata = $5, ai_processing_status = $6, updated_at = $7
		WHERE id = $1
	`, r.tables.Documents)

	doc.UpdatedAt = time.Now()

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.ParentFolderID,
		string(doc.FolderType),
		metadata,
		string(doc.ProcessingStatus),
		doc.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a record named %q already exists in this location", doc.Title),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdateProcessingStatus writes only the analysis status column. The external
// analysis pipeline calls this as it moves a document through its states.
func (r *PostgresDocumentRepository) UpdateProcessingStatus(ctx context.Context, id string, status models.ProcessingStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET ai_processing_status = $2, updated_at = $3
		WHERE id = $1
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, string(status), time.Now())
	if err != nil {
		return fmt.Errorf("update processing status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a record permanently
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListAll returns the full flat record list ordered by recency
func (r *PostgresDocumentRepository) ListAll(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY COALESCE(updated_at, created_at) DESC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListByParent lists immediate children of a folder (nil = root level)
func (r *PostgresDocumentRepository) ListByParent(ctx context.Context, parentID *string) ([]models.Document, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE parent_folder_id IS NULL
			ORDER BY is_folder DESC, title ASC
		`, documentColumns, r.tables.Documents)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE parent_folder_id = $1
			ORDER BY is_folder DESC, title ASC
		`, documentColumns, r.tables.Documents)
		args = []interface{}{*parentID}
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// CountChildren counts records parented to the given folder
func (r *PostgresDocumentRepository) CountChildren(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_folder_id = $1`, r.tables.Documents)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}

	return count, nil
}

// SearchByTitle returns records whose title contains the query
// (case-insensitive substring, no tokenization)
func (r *PostgresDocumentRepository) SearchByTitle(ctx context.Context, search string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE title ILIKE '%%' || $1 || '%%'
		ORDER BY COALESCE(updated_at, created_at) DESC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// scanDocument reads one row into a Document. Absent folder_type or status
// tags default to the zero value rather than failing the scan.
func scanDocument(row pgx.Row) (*models.Document, error) {
	var (
		doc        models.Document
		folderType *string
		status     *string
		metadata   []byte
	)

	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.IsFolder,
		&doc.ParentFolderID,
		&folderType,
		&metadata,
		&doc.StoragePath,
		&status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if folderType != nil {
		if ft, err := models.ParseFolderType(*folderType); err == nil {
			doc.FolderType = ft
		}
	}
	if status != nil {
		if ps, err := models.ParseProcessingStatus(*status); err == nil {
			doc.ProcessingStatus = ps
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]models.Document, error) {
	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
