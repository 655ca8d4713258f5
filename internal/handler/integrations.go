package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"caseflow/internal/functions"
	"caseflow/internal/httputil"
)

// IntegrationHandler fronts the hosted platform functions that are not tied
// to a stored document: bank-link token exchange and regulation search.
type IntegrationHandler struct {
	fns    *functions.Client
	logger *slog.Logger
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(fns *functions.Client, logger *slog.Logger) *IntegrationHandler {
	return &IntegrationHandler{fns: fns, logger: logger}
}

type plaidExchangeRequest struct {
	PublicToken string `json:"public_token"`
}

// ExchangePlaidToken exchanges a Plaid Link public token for an access token.
// POST /api/plaid/exchange
func (h *IntegrationHandler) ExchangePlaidToken(w http.ResponseWriter, r *http.Request) {
	var req plaidExchangeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}
	if strings.TrimSpace(req.PublicToken) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "public_token is required")
		return
	}

	result, err := h.fns.ExchangePlaidToken(r.Context(), req.PublicToken)
	if err != nil {
		h.logger.Error("plaid token exchange failed", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "bank link exchange failed")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// SearchRegulations proxies a regulation search query to the hosted function.
// GET /api/regulations/search?q=...&limit=N
func (h *IntegrationHandler) SearchRegulations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	result, err := h.fns.SearchRegulations(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("regulation search failed", "query", query, "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "regulation search failed")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
