package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"carectl/internal/domain"
)

type contextKey int

const skipAuthKey contextKey = iota

// WithoutAuth marks a request context so the transport skips bearer
// injection, for endpoints outside the backend's auth boundary (public
// registries, health probes).
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipAuthKey, true)
}

func skipAuth(ctx context.Context) bool {
	v, _ := ctx.Value(skipAuthKey).(bool)
	return v
}

// Transport injects the bearer token into outgoing requests and recovers
// from 401s: the first rejected request triggers a refresh, requests that
// fail while the refresh is under way queue behind it as pending
// resolvers, and on success each is replayed once with the new token.
type Transport struct {
	base   http.RoundTripper
	store  domain.SessionStore
	logger *slog.Logger

	// onSessionExpired fires when a refresh fails with a genuine auth
	// rejection: the UI layer navigates to login with an expired marker.
	onSessionExpired func()

	mu         sync.Mutex
	refresher  domain.Refresher
	refreshing bool
	pending    []chan domain.RefreshResult
}

// NewTransport wraps base (nil means http.DefaultTransport).
func NewTransport(base http.RoundTripper, store domain.SessionStore, logger *slog.Logger, onSessionExpired func()) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if onSessionExpired == nil {
		onSessionExpired = func() {}
	}
	return &Transport{
		base:             base,
		store:            store,
		logger:           logger,
		onSessionExpired: onSessionExpired,
	}
}

// SetRefresher wires the session manager in after construction; the
// manager itself needs a client to exist first.
func (t *Transport) SetRefresher(r domain.Refresher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refresher = r
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}
	authed := false
	if !skipAuth(req.Context()) {
		if token, ok := t.store.Token(); ok {
			out.Header.Set("Authorization", "Bearer "+token)
			authed = true
		}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !authed {
		return resp, err
	}

	// Replaying needs a rewindable body.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	drain(resp)
	res := t.awaitRefresh(req.Context())
	if !res.Success {
		if !res.KeepAuth {
			t.onSessionExpired()
			return nil, domain.ErrSessionExpired
		}
		// Transient refresh trouble: the caller sees the auth failure but
		// the session survives for a later retry.
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Message: "could not refresh session"}
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := t.store.Token(); ok {
		retry.Header.Set("Authorization", "Bearer "+token)
	}
	t.logger.Debug("replaying request after refresh", "method", req.Method, "url", req.URL.Path)
	return t.base.RoundTrip(retry)
}

// awaitRefresh serializes concurrent recoveries: the first caller runs
// the refresh, later callers queue and share its outcome.
func (t *Transport) awaitRefresh(ctx context.Context) domain.RefreshResult {
	t.mu.Lock()
	refresher := t.refresher
	if refresher == nil {
		t.mu.Unlock()
		return domain.RefreshResult{Success: false, KeepAuth: true, Err: domain.ErrNoToken}
	}
	if t.refreshing {
		ch := make(chan domain.RefreshResult, 1)
		t.pending = append(t.pending, ch)
		t.mu.Unlock()
		select {
		case res := <-ch:
			return res
		case <-ctx.Done():
			return domain.RefreshResult{Success: false, KeepAuth: true, Err: ctx.Err()}
		}
	}
	t.refreshing = true
	t.mu.Unlock()

	res := refresher.Refresh(ctx)

	t.mu.Lock()
	t.refreshing = false
	waiters := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}
	return res
}

func drain(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}
}
