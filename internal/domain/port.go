package domain

import (
	"context"
	"time"
)

// SessionStore persists session data under named keys. Soft clear removes
// only the token; hard clear removes everything.
type SessionStore interface {
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error

	User() (*UserProfile, bool)
	SetUser(user *UserProfile) error

	LastRefresh() (time.Time, bool)
	SetLastRefresh(t time.Time) error

	// Clear removes token, user and refresh bookkeeping (hard clear).
	Clear() error
}

// TokenInspector evaluates a raw bearer token without verifying it.
// Expiry here is a UX heuristic, never a security boundary.
type TokenInspector interface {
	HasToken(raw string) bool
	IsExpired(raw string) bool
	SecondsUntilExpiration(raw string) int64
	ShouldRefresh(raw string, threshold time.Duration) bool
}

// AuthGateway talks to the backend's auth endpoints. Implementations
// return *APIError for HTTP rejections and plain errors for transport
// failures.
type AuthGateway interface {
	Login(ctx context.Context, identifier, password string, policyLogin bool) (*Credentials, error)
	Register(ctx context.Context, reg Registration) (*RegisterOutcome, error)
	Refresh(ctx context.Context, token string) (string, error)
	FetchUser(ctx context.Context, token string) (*UserProfile, error)
	Logout(ctx context.Context, token string) error
}

// Refresher is the slice of the session manager the HTTP transport needs
// to recover from a 401.
type Refresher interface {
	Refresh(ctx context.Context) RefreshResult
}
