package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"caseflow/internal/config"
	"caseflow/internal/domain"
	"caseflow/internal/domain/models"
	"caseflow/internal/httputil"
	"caseflow/internal/service"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService *service.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// ListDocuments returns the filtered folder and document lists
// GET /api/documents?q=...&folder=...&client=...
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := service.FilterOptions{
		Query:    q.Get("q"),
		ClientID: q.Get("client"),
	}
	if q.Has("folder") {
		folder := q.Get("folder")
		opts.FolderScope = &folder
	}

	result, err := h.docService.List(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UploadDocument ingests a new document with its file bytes
// POST /api/documents (multipart/form-data: file, title, parent_folder_id, metadata)
// Returns 201 if created, 409 with existing document if duplicate
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read file part")
		return
	}

	req := &service.UploadDocumentRequest{
		Title:       r.FormValue("title"),
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
	}
	if req.Title == "" {
		req.Title = header.Filename
	}
	if parent := r.FormValue("parent_folder_id"); parent != "" {
		req.ParentFolderID = &parent
	}
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Metadata); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "metadata must be a JSON object")
			return
		}
	}

	doc, err := h.docService.Upload(r.Context(), userID, req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Document, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return h.docService.Get(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// UpdateDocument patches a document's title, parent or metadata
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	doc, err := h.docService.Update(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document record and its stored bytes
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docService.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AnalyzeDocument runs the extraction and analysis pipeline on a document
// POST /api/documents/{id}/analyze
func (h *DocumentHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.Analyze(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
