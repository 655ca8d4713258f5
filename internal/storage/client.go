// Package storage is a thin client for the hosted object-storage API.
// File bytes live there; only the storage_path reference is persisted in
// the documents table.
package storage

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

// Client talks to the Supabase Storage REST API for one bucket.
type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a storage client. baseURL is the project URL, e.g.
// https://xyz.supabase.co.
func New(baseURL, apiKey, bucket string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		bucket:  bucket,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// EnsureBucket creates the bucket if it does not exist yet. A conflict
// response means the bucket is already there.
func (c *Client) EnsureBucket(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{
		"id":     c.bucket,
		"name":   c.bucket,
		"public": true,
	})
	if err != nil {
		return fmt.Errorf("encode bucket request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/storage/v1/bucket", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("create bucket: %s", readError(resp))
	}

	c.logger.Info("storage bucket created", "bucket", c.bucket)
	return nil
}

// Upload writes file bytes at the given path inside the bucket.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/storage/v1/object/%s/%s", c.bucket, path),
		bytes.NewReader(data))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("upload object %s: %s", path, readError(resp))
	}

	c.logger.Debug("object uploaded", "bucket", c.bucket, "path", path, "size", len(data))
	return nil
}

// PublicURL returns the public URL for an object path. No request is made;
// the bucket is public and the URL shape is fixed.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}

// Remove deletes the given object paths from the bucket.
func (c *Client) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]any{"prefixes": paths})
	if err != nil {
		return fmt.Errorf("encode remove request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodDelete,
		fmt.Sprintf("/storage/v1/object/%s", c.bucket),
		bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remove objects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("remove objects: %s", readError(resp))
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build storage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
	return req, nil
}

// readError extracts the platform error message, falling back to the status.
func readError(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return resp.Status
}
