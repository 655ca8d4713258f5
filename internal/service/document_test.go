package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/functions"
	"caseflow/internal/httputil"
	"caseflow/internal/storage"
)

// newTestBackends spins up httptest servers standing in for object storage
// and the hosted functions, wired to canned pipeline responses.
func newTestBackends(t *testing.T) (*storage.Client, *functions.Client, *fakeBackendState) {
	t.Helper()
	state := &fakeBackendState{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/") && r.Method == http.MethodPost:
			state.uploads++
			w.WriteHeader(http.StatusOK)
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/") && r.Method == http.MethodDelete:
			state.removes++
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/functions/v1/ocr-extract":
			if state.failOCR {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "ocr backend unavailable"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"text": "extracted text", "confidence": 0.97})
		case r.URL.Path == "/functions/v1/analyze-document":
			json.NewEncoder(w).Encode(map[string]any{
				"form_type":    "B101",
				"fields":       map[string]string{"debtor": "Maria Hernandez", "chapter": "7"},
				"needs_review": true,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	store := storage.New(srv.URL, "test-key", "case-documents", testLogger())
	fns := functions.New(srv.URL, "test-key", testLogger())
	return store, fns, state
}

type fakeBackendState struct {
	uploads int
	removes int
	failOCR bool
}

func newTestDocumentService(t *testing.T, repo *fakeDocumentRepository) (*DocumentService, *fakeBackendState) {
	store, fns, state := newTestBackends(t)
	notifications := NewNotificationService(&fakeNotificationRepository{}, testLogger())
	return NewDocumentService(repo, store, fns, notifications, testLogger()), state
}

func TestUploadDocument(t *testing.T) {
	repo := newFakeDocumentRepository()
	svc, state := newTestDocumentService(t, repo)

	doc, err := svc.Upload(context.Background(), "user-1", &UploadDocumentRequest{
		Title:       "Petition.pdf",
		Content:     []byte("%PDF-1.7"),
		ContentType: "application/pdf",
		Metadata:    map[string]any{"clientId": "cl-1", "client_name": "Maria Hernandez"},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if state.uploads != 1 {
		t.Errorf("storage uploads = %d, want 1", state.uploads)
	}
	if doc.ProcessingStatus != models.ProcessingStatusPending {
		t.Errorf("status = %q, want pending", doc.ProcessingStatus)
	}
	if doc.StoragePath == nil || !strings.HasPrefix(*doc.StoragePath, "user-1/") {
		t.Errorf("storage path = %v, want user-scoped", doc.StoragePath)
	}
	// Legacy metadata spelling lands canonically.
	if doc.Metadata.ClientID != "cl-1" {
		t.Errorf("client id = %q, want cl-1", doc.Metadata.ClientID)
	}
	if doc.Metadata.SchemaVersion != models.MetadataSchemaVersion {
		t.Errorf("schema version = %d, want %d", doc.Metadata.SchemaVersion, models.MetadataSchemaVersion)
	}
}

func TestUploadDocumentSiblingTitleConflict(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "existing", Title: "Petition.pdf"})
	svc, state := newTestDocumentService(t, repo)

	_, err := svc.Upload(context.Background(), "user-1", &UploadDocumentRequest{
		Title:   "Petition.pdf",
		Content: []byte("%PDF-1.7"),
	})

	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("error = %v, want ConflictError", err)
	}
	if conflictErr.ResourceID != "existing" {
		t.Errorf("ResourceID = %q, want the conflicting row's id", conflictErr.ResourceID)
	}
	if state.removes != 1 {
		t.Errorf("storage removes = %d, orphaned bytes must be cleaned up", state.removes)
	}
}

func TestUploadDocumentValidation(t *testing.T) {
	repo := newFakeDocumentRepository()
	svc, state := newTestDocumentService(t, repo)

	tests := []struct {
		name string
		req  UploadDocumentRequest
	}{
		{name: "blank title", req: UploadDocumentRequest{Title: "  ", Content: []byte("x")}},
		{name: "no content", req: UploadDocumentRequest{Title: "a.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), "user-1", &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
	if state.uploads != 0 {
		t.Errorf("storage uploads = %d, validation must precede any upload", state.uploads)
	}
}

func TestUpdateDocumentTriState(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "folder", Title: "Forms", IsFolder: true})
	repo.add(models.Document{ID: "doc", Title: "Old.pdf", ParentFolderID: strPtr("folder")})

	svc, _ := newTestDocumentService(t, repo)
	ctx := context.Background()

	t.Run("absent field leaves parent untouched", func(t *testing.T) {
		newTitle := "New.pdf"
		updated, err := svc.Update(ctx, "user-1", "doc", &UpdateDocumentRequest{Title: &newTitle})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.ParentFolderID == nil || *updated.ParentFolderID != "folder" {
			t.Errorf("parent = %v, must be unchanged", updated.ParentFolderID)
		}
		if updated.Title != "New.pdf" {
			t.Errorf("title = %q, want New.pdf", updated.Title)
		}
	})

	t.Run("explicit null moves to root", func(t *testing.T) {
		updated, err := svc.Update(ctx, "user-1", "doc", &UpdateDocumentRequest{
			ParentFolderID: httputil.OptionalString{Present: true, Value: nil},
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.ParentFolderID != nil {
			t.Errorf("parent = %v, want nil (root)", *updated.ParentFolderID)
		}
	})

	t.Run("empty patch refused", func(t *testing.T) {
		_, err := svc.Update(ctx, "user-1", "doc", &UpdateDocumentRequest{})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("metadata replacement is normalized", func(t *testing.T) {
		updated, err := svc.Update(ctx, "user-1", "doc", &UpdateDocumentRequest{
			Metadata: map[string]any{"clientId": "cl-7"},
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Metadata.ClientID != "cl-7" {
			t.Errorf("client id = %q, want cl-7", updated.Metadata.ClientID)
		}
	})
}

func TestDeleteDocument(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "doc", Title: "A.pdf", StoragePath: strPtr("user-1/a.pdf")})
	repo.add(models.Document{ID: "folder", Title: "F", IsFolder: true})

	svc, state := newTestDocumentService(t, repo)
	ctx := context.Background()

	t.Run("folder redirected to folder delete", func(t *testing.T) {
		err := svc.Delete(ctx, "user-1", "folder")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("record and bytes removed", func(t *testing.T) {
		if err := svc.Delete(ctx, "user-1", "doc"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if state.removes != 1 {
			t.Errorf("storage removes = %d, want 1", state.removes)
		}
		if _, err := repo.GetByID(ctx, "doc"); !errors.Is(err, domain.ErrNotFound) {
			t.Error("record should be gone")
		}
	})
}

func TestAnalyzeDocument(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{
		ID:          "doc",
		Title:       "Petition.pdf",
		StoragePath: strPtr("user-1/petition.pdf"),
		Metadata:    models.Metadata{ClientID: "cl-1"},
	})
	svc, _ := newTestDocumentService(t, repo)

	doc, err := svc.Analyze(context.Background(), "user-1", "doc")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if doc.ProcessingStatus != models.ProcessingStatusCompleted {
		t.Errorf("status = %q, want completed", doc.ProcessingStatus)
	}
	if doc.Metadata.FormType != "B101" {
		t.Errorf("form type = %q, want B101", doc.Metadata.FormType)
	}
	if doc.Metadata.ExtractedFields["debtor"] != "Maria Hernandez" {
		t.Errorf("extracted fields = %v, want debtor merged", doc.Metadata.ExtractedFields)
	}
	if !doc.Metadata.NeedsReview {
		t.Error("needs_review should be set from the analysis result")
	}
	// Existing metadata survives the merge.
	if doc.Metadata.ClientID != "cl-1" {
		t.Errorf("client id = %q, merge must not drop existing metadata", doc.Metadata.ClientID)
	}
}

func TestAnalyzePipelineFailureSetsErrorStatus(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "doc", Title: "P.pdf", StoragePath: strPtr("user-1/p.pdf")})
	svc, state := newTestDocumentService(t, repo)
	state.failOCR = true

	_, err := svc.Analyze(context.Background(), "user-1", "doc")
	if err == nil {
		t.Fatal("Analyze() expected error")
	}

	stored, _ := repo.GetByID(context.Background(), "doc")
	if stored.ProcessingStatus != models.ProcessingStatusError {
		t.Errorf("status = %q, want error", stored.ProcessingStatus)
	}
}

func TestAnalyzeGuards(t *testing.T) {
	repo := newFakeDocumentRepository()
	repo.add(models.Document{ID: "folder", Title: "F", IsFolder: true})
	repo.add(models.Document{ID: "nobytes", Title: "N.pdf"})
	svc, _ := newTestDocumentService(t, repo)

	for _, id := range []string{"folder", "nobytes"} {
		if _, err := svc.Analyze(context.Background(), "user-1", id); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Analyze(%s) error = %v, want ErrValidation", id, err)
		}
	}
}
