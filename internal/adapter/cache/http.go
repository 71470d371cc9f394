// Package cache tells the downstream read API that the silver table changed.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPInvalidator calls the read API's cache invalidation endpoint.
type HTTPInvalidator struct {
	endpoint   string
	apiKey     string
	keys       []string
	httpClient *http.Client
}

// NewHTTPInvalidator creates an invalidator for endpoint. An empty key list
// asks the API to drop its whole cache.
func NewHTTPInvalidator(endpoint, apiKey string, timeout time.Duration, keys ...string) *HTTPInvalidator {
	if keys == nil {
		keys = []string{}
	}
	return &HTTPInvalidator{
		endpoint:   endpoint,
		apiKey:     apiKey,
		keys:       keys,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type invalidateRequest struct {
	Keys []string `json:"keys"`
}

// Invalidate POSTs the key list. Only a 200 response counts as success.
func (h *HTTPInvalidator) Invalidate(ctx context.Context) error {
	body, err := json.Marshal(invalidateRequest{Keys: h.keys})
	if err != nil {
		return fmt.Errorf("encode invalidation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cache invalidation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("failed to invalidate cache: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
