// Package functions invokes named hosted edge functions: JSON in, JSON out,
// fire-and-await. OCR, document analysis, bank-link token exchange and
// regulation search all ride the same contract.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client invokes hosted edge functions by name.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a function-invocation client. baseURL is the project URL.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// OCR on large scans is slow; the deadline rides on the context
		// when callers need a tighter one.
		http:   &http.Client{Timeout: 120 * time.Second},
		logger: logger,
	}
}

// Invoke calls the named function with a JSON body and decodes the JSON
// response into out. A non-2xx response is an error carrying the platform
// message.
func (c *Client) Invoke(ctx context.Context, name string, request, out any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", name, err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", name, err)
	}

	c.logger.Debug("function invoked",
		"function", name,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 400 {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		detail := resp.Status
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Message != "" {
				detail = payload.Message
			} else if payload.Error != "" {
				detail = payload.Error
			}
		}
		return fmt.Errorf("invoke %s: %s", name, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}

	return nil
}
