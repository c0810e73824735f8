package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"carectl/internal/domain"
)

// AuthGateway talks to the backend's auth endpoints over a plain client.
// It deliberately does not run behind the refresh-on-401 transport: this
// IS the refresh path, and recursing through it would deadlock the
// recovery protocol.
// Implements domain.AuthGateway.
type AuthGateway struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewAuthGateway creates the auth endpoint client.
func NewAuthGateway(baseURL string, timeout time.Duration, logger *slog.Logger) *AuthGateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AuthGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type loginRequest struct {
	Username     string `json:"username,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
	Password     string `json:"password"`
}

type credentialsResponse struct {
	Token   string              `json:"token"`
	User    *domain.UserProfile `json:"user"`
	Message string              `json:"message"`
}

// Login authenticates with a username or a policy number. A response
// missing either the token or the user payload counts as a failure.
func (g *AuthGateway) Login(ctx context.Context, identifier, password string, policyLogin bool) (*domain.Credentials, error) {
	body := loginRequest{Password: password}
	if policyLogin {
		body.PolicyNumber = identifier
	} else {
		body.Username = identifier
	}

	var payload credentialsResponse
	if err := g.post(ctx, "/api/auth/login", "", body, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" || payload.User == nil {
		return nil, fmt.Errorf("login response missing token or user: %w", domain.ErrInvalidResponse)
	}
	return &domain.Credentials{Token: payload.Token, User: payload.User}, nil
}

// Register creates an account. Backends with an auto-login policy return
// token and user; others return only a message.
func (g *AuthGateway) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterOutcome, error) {
	var payload credentialsResponse
	if err := g.post(ctx, "/api/auth/register", "", reg, &payload); err != nil {
		return nil, err
	}
	return &domain.RegisterOutcome{
		Token:   payload.Token,
		User:    payload.User,
		Message: payload.Message,
	}, nil
}

// Refresh exchanges the current token for a fresh one.
func (g *AuthGateway) Refresh(ctx context.Context, token string) (string, error) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := g.post(ctx, "/api/auth/refresh", token, struct{}{}, &payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", fmt.Errorf("refresh response missing token: %w", domain.ErrInvalidResponse)
	}
	return payload.Token, nil
}

// FetchUser retrieves the authenticated profile.
func (g *AuthGateway) FetchUser(ctx context.Context, token string) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/auth/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var user domain.UserProfile
	if err := g.exec(req, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 && user.Username == "" {
		return nil, fmt.Errorf("empty user payload: %w", domain.ErrInvalidResponse)
	}
	return &user, nil
}

// Logout notifies the server. Callers treat failure as best-effort.
func (g *AuthGateway) Logout(ctx context.Context, token string) error {
	return g.post(ctx, "/api/auth/logout", token, struct{}{}, nil)
}

func (g *AuthGateway) post(ctx context.Context, path, token string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return g.exec(req, out)
}

func (g *AuthGateway) exec(req *http.Request, out any) error {
	resp, err := g.http.Do(req)
	if err != nil {
		// Keep the transport failure distinguishable from an HTTP
		// rejection: no APIError here.
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &domain.APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, domain.ErrInvalidResponse)
	}
	return nil
}
