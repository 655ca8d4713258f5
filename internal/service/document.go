package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"caseflow/internal/config"
	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
	"caseflow/internal/functions"
	"caseflow/internal/httputil"
	"caseflow/internal/storage"
)

// UploadDocumentRequest carries a new leaf document with its file bytes.
type UploadDocumentRequest struct {
	Title          string
	ParentFolderID *string
	Metadata       map[string]any // raw bag; normalized at ingestion
	Content        []byte
	ContentType    string
}

// UpdateDocumentRequest carries a PATCH of a document record.
type UpdateDocumentRequest struct {
	Title          *string                 `json:"title"`
	ParentFolderID httputil.OptionalString `json:"parent_folder_id"`
	Metadata       map[string]any          `json:"metadata"`
}

// DocumentService manages leaf document records and their file bytes, and
// drives the delegated analysis pipeline. Mutation always goes through the
// remote store; a fresh fetch is the only path back to a consistent view.
type DocumentService struct {
	docRepo       repositories.DocumentRepository
	store         *storage.Client
	functions     *functions.Client
	notifications *NotificationService
	logger        *slog.Logger
	inflight      singleflight.Group
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	store *storage.Client,
	fns *functions.Client,
	notifications *NotificationService,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:       docRepo,
		store:         store,
		functions:     fns,
		notifications: notifications,
		logger:        logger,
	}
}

// List applies the filter engine over the full flat record list.
func (s *DocumentService) List(ctx context.Context, opts FilterOptions) (FilterResult, error) {
	records, err := s.docRepo.ListAll(ctx)
	if err != nil {
		return FilterResult{}, err
	}
	return FilterRecords(records, opts), nil
}

// Clients derives the distinct client set from the full record list.
func (s *DocumentService) Clients(ctx context.Context) ([]models.ClientRef, error) {
	records, err := s.docRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ExtractClients(records), nil
}

// Get retrieves one record.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// Upload stores the file bytes in object storage, then inserts the record
// with analysis pending. The raw metadata bag is normalized to the canonical
// schema here - read paths never see legacy key spellings.
func (s *DocumentService) Upload(ctx context.Context, userID string, req *UploadDocumentRequest) (*models.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.Validate(req.Title,
		validation.Required.Error("document title cannot be blank"),
		validation.Length(1, config.MaxTitleLength),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: document has no content", domain.ErrValidation)
	}
	if len(req.Content) > config.MaxUploadBytes {
		return nil, fmt.Errorf("%w: document exceeds the %d byte upload limit", domain.ErrValidation, config.MaxUploadBytes)
	}

	storagePath := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), path.Ext(req.Title))
	if err := s.store.Upload(ctx, storagePath, req.Content, req.ContentType); err != nil {
		s.notifications.NotifyError(ctx, userID, "Upload failed", err.Error(), nil)
		return nil, fmt.Errorf("upload file bytes: %w", err)
	}

	doc := &models.Document{
		Title:            req.Title,
		IsFolder:         false,
		ParentFolderID:   req.ParentFolderID,
		Metadata:         models.NormalizeMetadata(req.Metadata),
		StoragePath:      &storagePath,
		ProcessingStatus: models.ProcessingStatusPending,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		// The record is the source of truth; orphaned bytes are removed
		// best effort.
		if rmErr := s.store.Remove(ctx, []string{storagePath}); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "path", storagePath, "error", rmErr)
		}
		s.notifications.NotifyError(ctx, userID, "Upload failed", err.Error(), nil)
		return nil, err
	}

	s.logger.Info("document uploaded",
		"id", doc.ID,
		"title", doc.Title,
		"storage_path", storagePath,
		"size", len(req.Content),
	)
	s.notifications.NotifySuccess(ctx, userID, "Document uploaded", fmt.Sprintf("Document %q was uploaded", doc.Title), &doc.ID)

	return doc, nil
}

// Update applies a PATCH to a record: rename, reparent, or replace metadata.
// Replacement metadata passes through the same normalization as ingestion.
func (s *DocumentService) Update(ctx context.Context, userID, id string, req *UpdateDocumentRequest) (*models.Document, error) {
	if req.Title == nil && !req.ParentFolderID.Present && req.Metadata == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validation.Validate(title,
			validation.Required.Error("document title cannot be blank"),
			validation.Length(1, config.MaxTitleLength),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		doc.Title = title
	}

	// Tri-state: only reparent when the field was present in the request
	if req.ParentFolderID.Present {
		if req.ParentFolderID.Value != nil {
			parent, err := s.docRepo.GetByID(ctx, *req.ParentFolderID.Value)
			if err != nil {
				return nil, fmt.Errorf("target folder: %w", err)
			}
			if !parent.IsFolder {
				return nil, fmt.Errorf("%w: target %s is not a folder", domain.ErrValidation, parent.ID)
			}
			doc.ParentFolderID = &parent.ID
		} else {
			doc.ParentFolderID = nil
		}
	}

	if req.Metadata != nil {
		doc.Metadata = models.NormalizeMetadata(req.Metadata)
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		s.notifications.NotifyError(ctx, userID, "Update failed", err.Error(), &id)
		return nil, err
	}

	s.logger.Info("document updated", "id", doc.ID, "title", doc.Title)
	return doc, nil
}

// Delete removes a leaf record and its stored bytes. Folder deletion goes
// through FolderService and its empty-folder guard instead.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	_, err, _ := s.inflight.Do(inflightKey("document-delete", id), func() (interface{}, error) {
		doc, err := s.docRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.IsFolder {
			return nil, fmt.Errorf("%w: record %s is a folder; use the folder delete operation", domain.ErrValidation, id)
		}

		if err := s.docRepo.Delete(ctx, id); err != nil {
			return nil, err
		}

		if doc.StoragePath != nil {
			if err := s.store.Remove(ctx, []string{*doc.StoragePath}); err != nil {
				// Bytes without a record are invisible; log and move on.
				s.logger.Warn("failed to remove stored bytes", "path", *doc.StoragePath, "error", err)
			}
		}

		s.logger.Info("document deleted", "id", id, "title", doc.Title)
		s.notifications.NotifySuccess(ctx, userID, "Document deleted", fmt.Sprintf("Document %q was deleted", doc.Title), nil)
		return nil, nil
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.notifications.NotifyError(ctx, userID, "Delete failed", err.Error(), &id)
	}

	return err
}

// Analyze runs the delegated OCR + analysis pipeline for one document and
// folds the extracted fields into its canonical metadata. The record's
// status tracks the pipeline: processing while in flight, then completed or
// error. Every call is fire-and-await; there is no streaming.
func (s *DocumentService) Analyze(ctx context.Context, userID, id string) (*models.Document, error) {
	result, err, _ := s.inflight.Do(inflightKey("document-analyze", id), func() (interface{}, error) {
		doc, err := s.docRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.IsFolder {
			return nil, fmt.Errorf("%w: folders cannot be analyzed", domain.ErrValidation)
		}
		if doc.StoragePath == nil {
			return nil, fmt.Errorf("%w: document has no stored bytes", domain.ErrValidation)
		}

		if err := s.docRepo.UpdateProcessingStatus(ctx, id, models.ProcessingStatusProcessing); err != nil {
			return nil, err
		}

		extracted, err := s.runPipeline(ctx, doc)
		if err != nil {
			if stErr := s.docRepo.UpdateProcessingStatus(ctx, id, models.ProcessingStatusError); stErr != nil {
				s.logger.Warn("failed to record analysis error status", "id", id, "error", stErr)
			}
			s.notifications.NotifyError(ctx, userID, "Analysis failed", err.Error(), &id)
			return nil, fmt.Errorf("analyze document %s: %w", id, err)
		}

		if doc.Metadata.ExtractedFields == nil {
			doc.Metadata.ExtractedFields = make(map[string]string)
		}
		for k, v := range extracted.Fields {
			doc.Metadata.ExtractedFields[k] = v
		}
		if extracted.FormType != "" {
			doc.Metadata.FormType = extracted.FormType
		}
		doc.Metadata.NeedsReview = extracted.NeedsReview
		doc.ProcessingStatus = models.ProcessingStatusCompleted

		if err := s.docRepo.Update(ctx, doc); err != nil {
			return nil, err
		}

		s.notifications.NotifySuccess(ctx, userID, "Analysis complete", fmt.Sprintf("Analysis finished for %q", doc.Title), &doc.ID)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.Document), nil
}

// runPipeline invokes the hosted OCR and analysis functions in sequence.
func (s *DocumentService) runPipeline(ctx context.Context, doc *models.Document) (*functions.AnalysisResult, error) {
	ocr, err := s.functions.ExtractText(ctx, &functions.OCRRequest{
		DocumentID:  doc.ID,
		StoragePath: *doc.StoragePath,
		FileURL:     s.store.PublicURL(*doc.StoragePath),
	})
	if err != nil {
		return nil, fmt.Errorf("ocr extraction: %w", err)
	}

	analysis, err := s.functions.AnalyzeDocument(ctx, &functions.AnalysisRequest{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Text:       ocr.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("document analysis: %w", err)
	}

	return analysis, nil
}
