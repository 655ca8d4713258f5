package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caseflow/internal/functions"
)

func newIntegrationFixture(t *testing.T) *IntegrationHandler {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/functions/v1/plaid-exchange-token":
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode plaid request: %v", err)
			}
			if req["public_token"] == "bad-token" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid public token"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "access-123",
				"item_id":      "item-456",
			})
		case "/functions/v1/regulation-search":
			json.NewEncoder(w).Encode(map[string]any{
				"hits": []map[string]string{
					{"title": "Means test", "citation": "11 U.S.C. § 707(b)", "url": "https://example.test/707b", "snippet": "..."},
				},
			})
		default:
			t.Fatalf("unexpected backend path %s", r.URL.Path)
		}
	}))
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIntegrationHandler(functions.New(backend.URL, "test-key", logger), logger)
}

func TestExchangePlaidToken(t *testing.T) {
	h := newIntegrationFixture(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid token", body: `{"public_token":"public-abc"}`, wantStatus: http.StatusOK},
		{name: "missing token", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "platform rejects token", body: `{"public_token":"bad-token"}`, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/plaid/exchange", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.ExchangePlaidToken(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var result functions.PlaidExchangeResult
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if result.AccessToken != "access-123" || result.ItemID != "item-456" {
				t.Errorf("unexpected exchange result %+v", result)
			}
		})
	}
}

func TestSearchRegulations(t *testing.T) {
	h := newIntegrationFixture(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "valid query", target: "/api/regulations/search?q=means+test", wantStatus: http.StatusOK},
		{name: "missing query", target: "/api/regulations/search", wantStatus: http.StatusBadRequest},
		{name: "bad limit", target: "/api/regulations/search?q=x&limit=zero", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			h.SearchRegulations(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var result functions.RegulationSearchResult
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(result.Hits) != 1 || result.Hits[0].Citation != "11 U.S.C. § 707(b)" {
				t.Errorf("unexpected search result %+v", result)
			}
		})
	}
}
