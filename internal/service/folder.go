package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"

	"caseflow/internal/config"
	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

// CreateFolderRequest carries a folder creation.
type CreateFolderRequest struct {
	Title          string            `json:"title"`
	ParentFolderID *string           `json:"parent_folder_id"`
	FolderType     models.FolderType `json:"folder_type"`
	ClientID       string            `json:"client_id"`
	ClientName     string            `json:"client_name"`
}

// FolderService implements the folder mutation operations: create, rename,
// move and delete, with the empty-folder and self-move guards. Concurrent
// identical invocations collapse into one in-flight call per operation key,
// which keeps rapid repeated submissions from doubling up. This is not a
// distributed lock: two different call sites can still race on the store.
type FolderService struct {
	docRepo       repositories.DocumentRepository
	txManager     repositories.TransactionManager
	notifications *NotificationService
	logger        *slog.Logger
	inflight      singleflight.Group
}

// NewFolderService creates a new folder service
func NewFolderService(
	docRepo repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	notifications *NotificationService,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		docRepo:       docRepo,
		txManager:     txManager,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateFolder inserts a new folder-flagged record under the given parent.
// A blank title is a validation refusal, not a silent no-op.
func (s *FolderService) CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*models.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentFolderID != nil && *req.ParentFolderID == "" {
		req.ParentFolderID = nil
	}

	if req.ParentFolderID != nil {
		parent, err := s.docRepo.GetByID(ctx, *req.ParentFolderID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if !parent.IsFolder {
			return nil, fmt.Errorf("%w: parent %s is not a folder", domain.ErrValidation, parent.ID)
		}
	}

	key := inflightKey("folder-create", derefOr(req.ParentFolderID, "root"), req.Title)
	result, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		folder := &models.Document{
			Title:          req.Title,
			IsFolder:       true,
			ParentFolderID: req.ParentFolderID,
			FolderType:     req.FolderType,
			Metadata: models.Metadata{
				SchemaVersion: models.MetadataSchemaVersion,
				ClientID:      req.ClientID,
				ClientName:    req.ClientName,
			},
		}
		if err := s.docRepo.Create(ctx, folder); err != nil {
			return nil, err
		}
		return folder, nil
	})
	if err != nil {
		s.notifications.NotifyError(ctx, userID, "Folder creation failed", err.Error(), nil)
		return nil, err
	}

	folder := result.(*models.Document)
	s.logger.Info("folder created",
		"id", folder.ID,
		"title", folder.Title,
		"parent_folder_id", folder.ParentFolderID,
		"folder_type", folder.FolderType,
	)
	s.notifications.NotifySuccess(ctx, userID, "Folder created", fmt.Sprintf("Folder %q was created", folder.Title), &folder.ID)

	return folder, nil
}

// RenameFolder updates the title field only. A blank title is refused.
func (s *FolderService) RenameFolder(ctx context.Context, userID, folderID, newTitle string) (*models.Document, error) {
	newTitle = strings.TrimSpace(newTitle)
	if err := validation.Validate(newTitle,
		validation.Required.Error("folder name cannot be blank"),
		validation.Length(1, config.MaxTitleLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key := inflightKey("folder-rename", folderID, newTitle)
	result, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		folder, err := s.getFolder(ctx, folderID)
		if err != nil {
			return nil, err
		}

		folder.Title = newTitle
		if err := s.docRepo.Update(ctx, folder); err != nil {
			return nil, err
		}
		return folder, nil
	})
	if err != nil {
		s.notifications.NotifyError(ctx, userID, "Rename failed", err.Error(), &folderID)
		return nil, err
	}

	folder := result.(*models.Document)
	s.logger.Info("folder renamed", "id", folder.ID, "title", folder.Title)
	s.notifications.NotifySuccess(ctx, userID, "Folder renamed", fmt.Sprintf("Folder renamed to %q", folder.Title), &folder.ID)

	return folder, nil
}

// MoveFolder reparents a folder. newParentID nil moves it to the root.
// A folder cannot be moved into itself or into one of its own descendants.
func (s *FolderService) MoveFolder(ctx context.Context, userID, folderID string, newParentID *string) (*models.Document, error) {
	if newParentID != nil && *newParentID == "" {
		newParentID = nil
	}
	if newParentID != nil && *newParentID == folderID {
		return nil, fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
	}

	key := inflightKey("folder-move", folderID, derefOr(newParentID, "root"))
	result, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		folder, err := s.getFolder(ctx, folderID)
		if err != nil {
			return nil, err
		}

		if newParentID != nil {
			parent, err := s.docRepo.GetByID(ctx, *newParentID)
			if err != nil {
				return nil, fmt.Errorf("target folder: %w", err)
			}
			if !parent.IsFolder {
				return nil, fmt.Errorf("%w: target %s is not a folder", domain.ErrValidation, parent.ID)
			}
			if err := s.checkNoCycle(ctx, folderID, *newParentID); err != nil {
				return nil, err
			}
		}

		folder.ParentFolderID = newParentID
		if err := s.docRepo.Update(ctx, folder); err != nil {
			return nil, err
		}
		return folder, nil
	})
	if err != nil {
		s.notifications.NotifyError(ctx, userID, "Move failed", err.Error(), &folderID)
		return nil, err
	}

	folder := result.(*models.Document)
	s.logger.Info("folder moved", "id", folder.ID, "parent_folder_id", folder.ParentFolderID)
	s.notifications.NotifySuccess(ctx, userID, "Folder moved", fmt.Sprintf("Folder %q was moved", folder.Title), &folder.ID)

	return folder, nil
}

// DeleteFolder removes an empty folder. Children are counted first; if any
// exist the operation is refused before any delete is issued - there is no
// cascading delete and no force flag. The count and the delete run in one
// transaction so a document landing in the folder mid-delete cannot be
// orphaned.
func (s *FolderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	key := inflightKey("folder-delete", folderID)
	_, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		var folder *models.Document
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			var err error
			folder, err = s.getFolder(txCtx, folderID)
			if err != nil {
				return err
			}

			count, err := s.docRepo.CountChildren(txCtx, folderID)
			if err != nil {
				return fmt.Errorf("check folder contents: %w", err)
			}
			if count > 0 {
				return &domain.FolderNotEmptyError{FolderID: folderID, ChildCount: count}
			}

			return s.docRepo.Delete(txCtx, folderID)
		})
		if err != nil {
			if isRefusal(err) {
				s.notifications.NotifyWarning(ctx, userID, "Folder not empty", err.Error(), &folderID)
			}
			return nil, err
		}

		s.logger.Info("folder deleted", "id", folderID, "title", folder.Title)
		s.notifications.NotifySuccess(ctx, userID, "Folder deleted", fmt.Sprintf("Folder %q was deleted", folder.Title), nil)
		return nil, nil
	})
	if err != nil && !isRefusal(err) {
		s.notifications.NotifyError(ctx, userID, "Delete failed", err.Error(), &folderID)
	}

	return err
}

// getFolder loads a record and verifies it is folder-flagged.
func (s *FolderService) getFolder(ctx context.Context, folderID string) (*models.Document, error) {
	folder, err := s.docRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !folder.IsFolder {
		return nil, fmt.Errorf("%w: record %s is not a folder", domain.ErrValidation, folderID)
	}
	return folder, nil
}

// checkNoCycle walks up from the proposed parent; finding the moved folder on
// that chain would create a cycle. The walk is bounded so a pre-existing
// malformed chain cannot loop it.
func (s *FolderService) checkNoCycle(ctx context.Context, folderID, newParentID string) error {
	currentID := newParentID
	for hops := 0; hops < config.MaxTreeDepth; hops++ {
		current, err := s.docRepo.GetByID(ctx, currentID)
		if err != nil {
			// A missing ancestor terminates the chain; the move is safe.
			return nil
		}
		if current.ParentFolderID == nil {
			return nil
		}
		if *current.ParentFolderID == folderID {
			return fmt.Errorf("%w: cannot move a folder into its own descendant", domain.ErrValidation)
		}
		if *current.ParentFolderID == currentID {
			return nil
		}
		currentID = *current.ParentFolderID
	}
	return nil
}

func (s *FolderService) validateCreateRequest(req *CreateFolderRequest) error {
	if _, err := models.ParseFolderType(string(req.FolderType)); err != nil {
		return err
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("folder name cannot be blank"),
			validation.Length(1, config.MaxTitleLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
	)
}

func isRefusal(err error) bool {
	return errors.Is(err, domain.ErrRefused)
}

func inflightKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
