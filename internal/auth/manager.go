package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"carectl/internal/domain"
)

// Options tune the session lifecycle. Zero values fall back to the
// defaults the backend's 15-minute token lifetime was tuned against.
type Options struct {
	// RefreshInterval is the background refresh period. Kept shorter than
	// the token lifetime so a live session never lapses between ticks.
	RefreshInterval time.Duration
	// RefreshFloor is the minimum gap between background refreshes
	// regardless of timer jitter.
	RefreshFloor time.Duration
	// DebounceWindow is how recently a completed refresh counts as still
	// fresh: calls inside the window return cached success.
	DebounceWindow time.Duration
	// InFlightWait bounds how long a caller waits for a concurrent
	// refresh before proceeding independently.
	InFlightWait time.Duration
	// RefreshTimeout caps the refresh HTTP call itself.
	RefreshTimeout time.Duration
	// RefreshThreshold is how close to expiry a token must be before a
	// session check refreshes it proactively.
	RefreshThreshold time.Duration
}

func (o *Options) applyDefaults() {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = 14 * time.Minute
	}
	if o.RefreshFloor <= 0 {
		o.RefreshFloor = 60 * time.Second
	}
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = 10 * time.Second
	}
	if o.InFlightWait <= 0 {
		o.InFlightWait = 5 * time.Second
	}
	if o.RefreshTimeout <= 0 {
		o.RefreshTimeout = 5 * time.Second
	}
	if o.RefreshThreshold <= 0 {
		o.RefreshThreshold = 10 * time.Minute
	}
}

// Manager owns the client-side session lifecycle: the state machine over
// {unauthenticated, authenticated, degraded}, the refresh debounces, and
// the soft-clear/hard-clear trust policy. Every operation resolves to a
// tagged result or a state transition; none panics on backend failure.
type Manager struct {
	store     domain.SessionStore
	inspector domain.TokenInspector
	gateway   domain.AuthGateway
	logger    *slog.Logger
	opts      Options
	now       func() time.Time

	mu      sync.RWMutex
	state   domain.AuthState
	user    *domain.UserProfile
	message string
	loading bool

	// refresh coordination: owned by the manager, not ambient globals
	refreshMu   sync.Mutex
	inFlight    chan struct{}
	autoLimiter *rate.Limiter
}

// NewManager builds a manager and derives the initial state synchronously
// from the store: authenticated iff a token exists and is not expired by
// the inspector's check. The async server-side confirmation happens in
// VerifySession.
func NewManager(store domain.SessionStore, inspector domain.TokenInspector, gateway domain.AuthGateway, logger *slog.Logger, opts Options) *Manager {
	opts.applyDefaults()

	m := &Manager{
		store:       store,
		inspector:   inspector,
		gateway:     gateway,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
		state:       domain.StateUnauthenticated,
		loading:     true,
		autoLimiter: rate.NewLimiter(rate.Every(opts.RefreshFloor), 1),
	}

	if user, ok := store.User(); ok {
		m.user = user
	}
	if tok, ok := store.Token(); ok && inspector.HasToken(tok) && !inspector.IsExpired(tok) {
		m.state = domain.StateAuthenticated
	}
	return m
}

// State returns the current auth state.
func (m *Manager) State() domain.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the current profile snapshot, if any.
func (m *Manager) User() *domain.UserProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Loading reports whether the initial session check is still pending.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Message returns the pending session-level user message, if any.
func (m *Manager) Message() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.message
}

func (m *Manager) setMessage(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.message = msg
}

// Session returns the persisted session snapshot.
func (m *Manager) Session() domain.Session {
	s := domain.Session{}
	if tok, ok := m.store.Token(); ok {
		s.AccessToken = tok
	}
	if user, ok := m.store.User(); ok {
		s.User = user
	}
	if t, ok := m.store.LastRefresh(); ok {
		s.LastRefreshAt = t
	}
	return s
}

// Login authenticates with a username or policy number. The backend must
// return both a token and a user payload; anything less is a failure and
// the state stays unauthenticated.
func (m *Manager) Login(ctx context.Context, identifier, password string, policyLogin bool) domain.LoginResult {
	creds, err := m.gateway.Login(ctx, identifier, password, policyLogin)
	if err != nil {
		msg := userMessage(err, "Login failed. Please try again.")
		m.setMessage(msg)
		m.logger.Warn("login failed", "policy_login", policyLogin, "error", err)
		return domain.LoginResult{Success: false, Error: msg}
	}
	if creds.Token == "" || creds.User == nil {
		msg := "Login failed. Please try again."
		m.setMessage(msg)
		return domain.LoginResult{Success: false, Error: msg}
	}

	if err := m.store.SetToken(creds.Token); err != nil {
		m.logger.Error("persisting token failed", "error", err)
	}
	if err := m.store.SetUser(creds.User); err != nil {
		m.logger.Error("persisting user failed", "error", err)
	}

	m.mu.Lock()
	m.state = domain.StateAuthenticated
	m.user = creds.User
	m.message = ""
	m.loading = false
	m.mu.Unlock()

	m.logger.Info("login succeeded", "username", creds.User.Username)
	return domain.LoginResult{Success: true, User: creds.User}
}

// Register creates an account. When the backend auto-logs-in (returns
// token and user) this behaves like a successful login; otherwise it
// reports success without touching session state.
func (m *Manager) Register(ctx context.Context, reg domain.Registration) domain.RegisterResult {
	outcome, err := m.gateway.Register(ctx, reg)
	if err != nil {
		msg := userMessage(err, "Registration failed. Please try again.")
		m.setMessage(msg)
		return domain.RegisterResult{Success: false, Error: msg}
	}

	if outcome.Token != "" && outcome.User != nil {
		if err := m.store.SetToken(outcome.Token); err != nil {
			m.logger.Error("persisting token failed", "error", err)
		}
		if err := m.store.SetUser(outcome.User); err != nil {
			m.logger.Error("persisting user failed", "error", err)
		}
		m.mu.Lock()
		m.state = domain.StateAuthenticated
		m.user = outcome.User
		m.message = ""
		m.loading = false
		m.mu.Unlock()
		return domain.RegisterResult{Success: true, AutoLogin: true, User: outcome.User}
	}

	msg := outcome.Message
	if msg == "" {
		msg = "Registration successful. Please log in."
	}
	return domain.RegisterResult{Success: true, Message: msg}
}

// Refresh replaces the stored token, guarded by three independent
// debounces: a completed refresh inside the debounce window returns
// cached success; a concurrent refresh is waited on for a bounded time
// and then raced past (cooperative, not a hard lock); no token rejects
// immediately. Failures are classified: only a genuine 401 clears
// KeepAuth.
func (m *Manager) Refresh(ctx context.Context) domain.RefreshResult {
	token, ok := m.store.Token()
	if !ok {
		return domain.RefreshResult{Success: false, Err: domain.ErrNoToken}
	}

	start := m.now()
	if last, ok := m.store.LastRefresh(); ok && start.Sub(last) < m.opts.DebounceWindow {
		return domain.RefreshResult{Success: true, Cached: true}
	}

	m.refreshMu.Lock()
	if ch := m.inFlight; ch != nil {
		m.refreshMu.Unlock()
		select {
		case <-ch:
			// The other refresh finished; reuse it if it actually landed.
			if last, ok := m.store.LastRefresh(); ok && last.After(start) {
				return domain.RefreshResult{Success: true, Cached: true}
			}
		case <-time.After(m.opts.InFlightWait):
			m.logger.Warn("timed out waiting for in-flight refresh, proceeding independently")
		case <-ctx.Done():
			return domain.RefreshResult{Success: false, KeepAuth: true, Err: ctx.Err()}
		}
		m.refreshMu.Lock()
	}
	done := make(chan struct{})
	m.inFlight = done
	m.refreshMu.Unlock()

	defer func() {
		m.refreshMu.Lock()
		if m.inFlight == done {
			m.inFlight = nil
		}
		m.refreshMu.Unlock()
		close(done)
	}()

	callCtx, cancel := context.WithTimeout(ctx, m.opts.RefreshTimeout)
	defer cancel()

	newToken, err := m.gateway.Refresh(callCtx, token)
	if err != nil {
		return m.classifyRefreshFailure(err)
	}

	if err := m.store.SetToken(newToken); err != nil {
		m.logger.Error("persisting refreshed token failed", "error", err)
	}
	if err := m.store.SetLastRefresh(m.now()); err != nil {
		m.logger.Error("recording refresh time failed", "error", err)
	}

	// A refresh the server accepted is proof of a live session, so this
	// also promotes a degraded session back to full trust.
	m.mu.Lock()
	m.state = domain.StateAuthenticated
	m.mu.Unlock()

	m.logger.Debug("token refreshed")
	return domain.RefreshResult{Success: true}
}

// classifyRefreshFailure applies the trust policy: network trouble and
// non-auth statuses keep the session; a genuine 401 downgrades it, with
// a soft clear when a cached profile exists and a hard clear otherwise.
func (m *Manager) classifyRefreshFailure(err error) domain.RefreshResult {
	if !domain.IsAuthRejection(err) {
		m.logger.Warn("token refresh failed, keeping session", "error", err)
		return domain.RefreshResult{Success: false, KeepAuth: true, Err: err}
	}

	m.logger.Warn("token rejected by server", "error", err)
	if _, ok := m.store.User(); ok {
		m.SoftClearSession()
	} else {
		m.ClearSession()
	}
	return domain.RefreshResult{Success: false, KeepAuth: false, Err: err}
}

// Logout notifies the server best-effort and clears the session
// unconditionally.
func (m *Manager) Logout(ctx context.Context) {
	if token, ok := m.store.Token(); ok {
		if err := m.gateway.Logout(ctx, token); err != nil {
			m.logger.Warn("server logout failed, clearing locally anyway", "error", err)
		}
	}
	m.ClearSession()
}

// ClearSession removes all session data and transitions to
// unauthenticated (hard clear). No-op when already unauthenticated.
func (m *Manager) ClearSession() {
	m.mu.Lock()
	if m.state == domain.StateUnauthenticated {
		m.mu.Unlock()
		return
	}
	m.state = domain.StateUnauthenticated
	m.user = nil
	m.message = "Session expired. Please log in again."
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Error("clearing session store failed", "error", err)
	}
}

// SoftClearSession removes only the credential, keeping the cached
// profile and the authenticated UI state in its degraded form. Used when
// the server cannot currently confirm identity but local data should not
// be discarded.
func (m *Manager) SoftClearSession() {
	if err := m.store.ClearToken(); err != nil {
		m.logger.Error("clearing token failed", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.store.User(); ok {
		m.user = user
		m.state = domain.StateDegraded
	}
}

// FetchUser returns the profile, from cache unless forceRefresh. The
// server path refreshes the token first, then merges server data onto the
// cached snapshot so partial responses never wipe profile fields.
func (m *Manager) FetchUser(ctx context.Context, forceRefresh bool) domain.FetchUserResult {
	cached, hasCached := m.store.User()
	if hasCached && !forceRefresh {
		return domain.FetchUserResult{Success: true, User: cached, Source: "cache"}
	}

	// Best effort: a failed refresh still lets the GET try with the old
	// token.
	m.Refresh(ctx)

	token, _ := m.store.Token()
	serverUser, err := m.gateway.FetchUser(ctx, token)
	if err != nil {
		if domain.IsAuthRejection(err) {
			if hasCached {
				m.SoftClearSession()
				return domain.FetchUserResult{Success: true, User: cached, Source: "cache", Error: err.Error()}
			}
			m.ClearSession()
			return domain.FetchUserResult{Success: false, Error: userMessage(err, "Session expired. Please log in again.")}
		}
		if hasCached {
			return domain.FetchUserResult{Success: true, User: cached, Source: "cache", Error: err.Error()}
		}
		return domain.FetchUserResult{Success: false, Error: userMessage(err, "Could not load profile.")}
	}

	merged := *serverUser
	if hasCached {
		merged = cached.Merge(*serverUser)
	}
	if err := m.store.SetUser(&merged); err != nil {
		m.logger.Error("persisting user failed", "error", err)
	}

	m.mu.Lock()
	m.user = &merged
	m.state = domain.StateAuthenticated
	m.mu.Unlock()

	return domain.FetchUserResult{Success: true, User: &merged, Source: "server"}
}

// UpdateUser merges updated profile fields into the cached snapshot.
// Only valid while authenticated.
func (m *Manager) UpdateUser(updated domain.UserProfile) {
	m.mu.Lock()
	if !m.state.Authenticated() || m.user == nil {
		m.mu.Unlock()
		m.logger.Warn("ignoring profile update while unauthenticated")
		return
	}
	merged := m.user.Merge(updated)
	m.user = &merged
	m.mu.Unlock()

	if err := m.store.SetUser(&merged); err != nil {
		m.logger.Error("persisting user failed", "error", err)
	}
}

// VerifySession is the asynchronous counterpart of the constructor's
// synchronous check: it confirms (or degrades) the optimistic state
// against the server. Refreshes proactively when the token is expired or
// inside the refresh threshold, then revalidates the profile.
func (m *Manager) VerifySession(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	token, hasToken := m.store.Token()
	user, hasUser := m.store.User()
	if !hasToken || !m.inspector.HasToken(token) || !hasUser {
		m.mu.Lock()
		m.state = domain.StateUnauthenticated
		m.mu.Unlock()
		return
	}

	expired := m.inspector.IsExpired(token)
	if !expired {
		m.mu.Lock()
		m.user = user
		m.state = domain.StateAuthenticated
		m.mu.Unlock()
	}

	if expired || m.inspector.ShouldRefresh(token, m.opts.RefreshThreshold) {
		res := m.Refresh(ctx)
		if !res.Success {
			if res.KeepAuth && !expired {
				// Network trouble with a still-valid token: carry on.
				m.logger.Warn("session check refresh failed, keeping session", "error", res.Err)
			} else if expired {
				// Expired token that could not be refreshed: fall back to
				// cached identity rather than discarding it.
				m.SoftClearSession()
				return
			}
		}
	}

	m.FetchUser(ctx, true)
}

// AutoRefresh runs the background refresh loop until ctx is cancelled.
// Ticks while unauthenticated are skipped, and the rate limiter enforces
// the floor between attempts regardless of timer jitter.
func (m *Manager) AutoRefresh(ctx context.Context) {
	ticker := time.NewTicker(m.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.State().Authenticated() {
				continue
			}
			if !m.autoLimiter.Allow() {
				m.logger.Debug("skipping auto-refresh, refreshed too recently")
				continue
			}
			res := m.Refresh(ctx)
			if !res.Success && !res.KeepAuth {
				m.logger.Warn("auto-refresh rejected, session cleared")
			}
		}
	}
}

// userMessage maps an error to something fit for the UI: the server's own
// message when it sent one, a timeout note, else the fallback.
func userMessage(err error, fallback string) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout"
	}
	return fallback
}
