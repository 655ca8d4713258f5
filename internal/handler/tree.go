package handler

import (
	"log/slog"
	"net/http"

	"caseflow/internal/httputil"
	"caseflow/internal/service"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService *service.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService *service.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/document tree
// GET /api/tree?q=...
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	tree, err := h.treeService.GetTree(r.Context(), query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
