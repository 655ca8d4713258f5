package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/domain/repositories"
)

// fakeDocumentRepository is an in-memory DocumentRepository for service tests.
type fakeDocumentRepository struct {
	docs    map[string]*models.Document
	nextID  int
	deletes []string
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{docs: map[string]*models.Document{}}
}

func (f *fakeDocumentRepository) add(doc models.Document) *models.Document {
	stored := doc
	f.docs[stored.ID] = &stored
	return &stored
}

func (f *fakeDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	for _, existing := range f.docs {
		if existing.Title == doc.Title && sameParent(existing.ParentFolderID, doc.ParentFolderID) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a record named %q already exists in this location", doc.Title),
				ResourceType: "document",
				ResourceID:   existing.ID,
			}
		}
	}
	f.nextID++
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("gen-%d", f.nextID)
	}
	stored := *doc
	f.docs[doc.ID] = &stored
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *fakeDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	stored := *doc
	f.docs[doc.ID] = &stored
	return nil
}

func (f *fakeDocumentRepository) UpdateProcessingStatus(ctx context.Context, id string, status models.ProcessingStatus) error {
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.ProcessingStatus = status
	return nil
}

func (f *fakeDocumentRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(f.docs, id)
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeDocumentRepository) ListAll(ctx context.Context) ([]models.Document, error) {
	out := make([]models.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeDocumentRepository) ListByParent(ctx context.Context, parentID *string) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, doc := range f.docs {
		switch {
		case parentID == nil && doc.ParentFolderID == nil:
			out = append(out, *doc)
		case parentID != nil && doc.ParentFolderID != nil && *doc.ParentFolderID == *parentID:
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepository) CountChildren(ctx context.Context, folderID string) (int, error) {
	count := 0
	for _, doc := range f.docs {
		if doc.ParentFolderID != nil && *doc.ParentFolderID == folderID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDocumentRepository) SearchByTitle(ctx context.Context, query string) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, doc := range f.docs {
		if strings.Contains(strings.ToLower(doc.Title), strings.ToLower(query)) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

// fakeNotificationRepository records notifications instead of storing them.
type fakeNotificationRepository struct {
	created []models.Notification
}

func (f *fakeNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	return f.created, nil
}

func (f *fakeNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

func (f *fakeNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	return nil
}

// fakeTxManager runs the function directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFolderService(repo *fakeDocumentRepository) (*FolderService, *fakeNotificationRepository) {
	notifRepo := &fakeNotificationRepository{}
	notifications := NewNotificationService(notifRepo, testLogger())
	return NewFolderService(repo, fakeTxManager{}, notifications, testLogger()), notifRepo
}

func TestCreateFolder(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "parent", Title: "Clients", IsFolder: true, FolderType: models.FolderTypeGeneral})
	svc, _ := newTestFolderService(repo)

	folder, err := svc.CreateFolder(context.Background(), "user-1", &CreateFolderRequest{
		Title:          "  Hernandez, Maria  ",
		ParentFolderID: strPtr("parent"),
		FolderType:     models.FolderTypeClient,
		ClientID:       "cl-1",
		ClientName:     "Maria Hernandez",
	})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if folder.Title != "Hernandez, Maria" {
		t.Errorf("title = %q, want trimmed", folder.Title)
	}
	if !folder.IsFolder {
		t.Error("created record is not folder-flagged")
	}
	if folder.Metadata.ClientID != "cl-1" {
		t.Errorf("metadata client id = %q, want cl-1", folder.Metadata.ClientID)
	}
}

func TestCreateFolderValidation(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "leaf", Title: "Doc.pdf"})
	svc, _ := newTestFolderService(repo)

	tests := []struct {
		name string
		req  CreateFolderRequest
	}{
		{name: "blank title", req: CreateFolderRequest{Title: "   ", FolderType: models.FolderTypeGeneral}},
		{name: "slash in title", req: CreateFolderRequest{Title: "a/b", FolderType: models.FolderTypeGeneral}},
		{name: "unknown folder type", req: CreateFolderRequest{Title: "ok", FolderType: "mystery"}},
		{name: "parent is not a folder", req: CreateFolderRequest{Title: "ok", FolderType: models.FolderTypeGeneral, ParentFolderID: strPtr("leaf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFolder(context.Background(), "user-1", &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRenameFolderBlankTitleRefused(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "f1", Title: "Old", IsFolder: true})
	svc, _ := newTestFolderService(repo)

	_, err := svc.RenameFolder(context.Background(), "user-1", "f1", "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	stored, _ := repo.GetByID(context.Background(), "f1")
	if stored.Title != "Old" {
		t.Errorf("title = %q, refusal must not rename", stored.Title)
	}
}

func TestMoveFolderGuards(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "a", Title: "A", IsFolder: true})
	repo.add(models.Document{ID: "b", Title: "B", IsFolder: true, ParentFolderID: strPtr("a")})
	repo.add(models.Document{ID: "c", Title: "C", IsFolder: true, ParentFolderID: strPtr("b")})
	svc, _ := newTestFolderService(repo)

	t.Run("self move refused", func(t *testing.T) {
		_, err := svc.MoveFolder(context.Background(), "user-1", "a", strPtr("a"))
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("move into own descendant refused", func(t *testing.T) {
		_, err := svc.MoveFolder(context.Background(), "user-1", "a", strPtr("c"))
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("move to root", func(t *testing.T) {
		moved, err := svc.MoveFolder(context.Background(), "user-1", "c", nil)
		if err != nil {
			t.Fatalf("MoveFolder() error = %v", err)
		}
		if moved.ParentFolderID != nil {
			t.Errorf("parent = %v, want nil", *moved.ParentFolderID)
		}
	})
}

func TestDeleteFolderRefusesNonEmpty(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "f1", Title: "Forms", IsFolder: true})
	repo.add(models.Document{ID: "d1", Title: "Petition.pdf", ParentFolderID: strPtr("f1")})
	svc, notifRepo := newTestFolderService(repo)

	err := svc.DeleteFolder(context.Background(), "user-1", "f1")

	if !errors.Is(err, domain.ErrRefused) {
		t.Fatalf("error = %v, want ErrRefused", err)
	}
	var notEmpty *domain.FolderNotEmptyError
	if !errors.As(err, &notEmpty) {
		t.Fatalf("error = %T, want *FolderNotEmptyError", err)
	}
	if notEmpty.ChildCount != 1 {
		t.Errorf("child count = %d, want 1", notEmpty.ChildCount)
	}
	if len(repo.deletes) != 0 {
		t.Errorf("deletes issued = %v, refusal must precede any delete", repo.deletes)
	}
	if _, err := repo.GetByID(context.Background(), "f1"); err != nil {
		t.Error("folder must survive a refused delete")
	}

	// The refusal surfaces to the user as a warning, not an error.
	foundWarning := false
	for _, n := range notifRepo.created {
		if n.Type == models.NotificationWarning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Error("expected a warning notification for the refusal")
	}
}

func TestDeleteFolderEmpty(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "f1", Title: "Empty", IsFolder: true})
	svc, _ := newTestFolderService(repo)

	if err := svc.DeleteFolder(context.Background(), "user-1", "f1"); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "f1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("folder should be gone after delete")
	}
}

func TestDeleteFolderNotAFolder(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "d1", Title: "Doc.pdf"})
	svc, _ := newTestFolderService(repo)

	err := svc.DeleteFolder(context.Background(), "user-1", "d1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
