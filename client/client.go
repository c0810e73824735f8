// Package client is the single configured HTTP client the feature
// services share: bearer injection, refresh-then-replay on 401, and a
// JSON codec over the backend's REST contract.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carectl/internal/domain"
)

// Client is a typed JSON client for the CareCompare backend.
type Client struct {
	baseURL   string
	http      *http.Client
	transport *Transport
	logger    *slog.Logger
}

// Config configures the shared client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Store   domain.SessionStore
	Logger  *slog.Logger
	// OnSessionExpired fires when a 401-recovery refresh is rejected.
	OnSessionExpired func()
}

// New builds the shared client. Wire the session manager in afterwards
// with SetRefresher.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := NewTransport(nil, cfg.Store, cfg.Logger, cfg.OnSessionExpired)
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		transport: transport,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: cfg.Logger,
	}
}

// SetRefresher wires the session manager into the 401-recovery path.
func (c *Client) SetRefresher(r domain.Refresher) {
	c.transport.SetRefresher(r)
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetURL issues a GET against an absolute URL (external registries).
// Callers opt out of bearer injection with WithoutAuth.
func (c *Client) GetURL(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.exec(req, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.exec(req, out)
}

func (c *Client) exec(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// Unwrap the url.Error shell so callers can test sentinels.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, urlErr.Err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", domain.ErrInvalidResponse)
	}
	return nil
}

// statusError maps an HTTP rejection to a typed error. 5xx wraps
// ErrServerUnavailable so the UI shows a transient message without
// touching session state.
func (c *Client) statusError(resp *http.Response) error {
	apiErr := &domain.APIError{
		Status:  resp.StatusCode,
		Message: errorMessage(resp.Body),
	}
	c.logger.Debug("request rejected", "status", resp.StatusCode, "url", resp.Request.URL.Path)
	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", domain.ErrServerUnavailable, apiErr)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
	default:
		return apiErr
	}
}

// errorMessage pulls the backend's error or message field from a
// rejection body, tolerating anything malformed.
func errorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 8192)).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
