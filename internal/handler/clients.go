package handler

import (
	"log/slog"
	"net/http"

	"caseflow/internal/httputil"
	"caseflow/internal/service"
)

// ClientHandler exposes the derived client list
type ClientHandler struct {
	docService *service.DocumentService
	logger     *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(docService *service.DocumentService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		docService: docService,
		logger:     logger,
	}
}

// ListClients returns the deduplicated, sorted client references derived
// from the current record set
// GET /api/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.docService.Clients(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, clients)
}
