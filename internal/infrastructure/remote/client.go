// Package remote implements the HTTP clients for the remote inventory,
// stock and order endpoints. Transport failures surface as
// RemoteUnavailable; payload semantics stay in the domain services.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tillpos/internal/core/apperror"
)

// Client is the shared HTTP transport for all remote endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Config configures the remote client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// doJSON issues one request and decodes the JSON response into out.
// A non-2xx status other than 207 is an error; 207 is passed through so
// callers can read per-item statuses.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperror.NewInternal(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.NewRemoteUnavailable(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusMultiStatus {
		return apperror.NewRemoteUnavailable(path,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewRemoteUnavailable(path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
