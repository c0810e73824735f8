package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carectl/internal/domain"
)

// memStore is an in-memory domain.SessionStore for tests.
type memStore struct {
	mu    sync.Mutex
	token string
	user  *domain.UserProfile
	last  time.Time
	has   bool
}

func (s *memStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *memStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memStore) User() (*domain.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.user != nil
}

func (s *memStore) SetUser(user *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	return nil
}

func (s *memStore) LastRefresh() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.has
}

func (s *memStore) SetLastRefresh(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last, s.has = t, true
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.last, s.has = "", nil, time.Time{}, false
	return nil
}

// fakeRefresher scripts the session manager's refresh outcome.
type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	fn    func() domain.RefreshResult
}

func (f *fakeRefresher) Refresh(ctx context.Context) domain.RefreshResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.fn()
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func newTestClient(t *testing.T, handler http.Handler, store domain.SessionStore, onExpired func()) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:          srv.URL,
		Timeout:          5 * time.Second,
		Store:            store,
		Logger:           discardLogger(),
		OnSessionExpired: onExpired,
	})
}

func TestTransport_InjectsBearerAndRequestID(t *testing.T) {
	store := &memStore{token: "tok-1"}
	var gotAuth, gotReqID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}), store, nil)

	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/api/hospitals", &out))
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestTransport_WithoutAuthSkipsBearer(t *testing.T) {
	store := &memStore{token: "tok-1"}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Store: store, Logger: discardLogger()})

	var out []any
	require.NoError(t, c.GetURL(WithoutAuth(context.Background()), srv.URL+"/search", &out))
	assert.Empty(t, gotAuth)
}

func TestTransport_RefreshAndReplayOn401(t *testing.T) {
	store := &memStore{token: "old"}
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Authorization") != "Bearer new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":7}`))
	})
	c := newTestClient(t, handler, store, nil)
	c.SetRefresher(&fakeRefresher{fn: func() domain.RefreshResult {
		store.SetToken("new")
		return domain.RefreshResult{Success: true}
	}})

	var out struct {
		ID int64 `json:"id"`
	}
	// The 401 recovery is invisible to the caller.
	require.NoError(t, c.Get(context.Background(), "/api/users/profile", &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, 2, attempts)
}

func TestTransport_ReplaysBodyOnce(t *testing.T) {
	store := &memStore{token: "old"}
	var bodies []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		if r.Header.Get("Authorization") != "Bearer new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})
	c := newTestClient(t, handler, store, nil)
	c.SetRefresher(&fakeRefresher{fn: func() domain.RefreshResult {
		store.SetToken("new")
		return domain.RefreshResult{Success: true}
	}})

	var out map[string]any
	require.NoError(t, c.Post(context.Background(), "/api/appointments", map[string]string{"date": "2026-09-20"}, &out))

	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "the replay must carry the same body")
	assert.Contains(t, bodies[1], "2026-09-20")
}

func TestTransport_RefreshRejected_SessionExpired(t *testing.T) {
	store := &memStore{token: "old"}
	expired := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, handler, store, func() { expired = true })
	c.SetRefresher(&fakeRefresher{fn: func() domain.RefreshResult {
		return domain.RefreshResult{Success: false, KeepAuth: false, Err: &domain.APIError{Status: 401}}
	}})

	err := c.Get(context.Background(), "/api/users/profile", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.True(t, expired, "the session-expired hook must fire")
}

func TestTransport_RefreshTransientFailure_KeepsSession(t *testing.T) {
	store := &memStore{token: "old"}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	expired := false
	c := newTestClient(t, handler, store, func() { expired = true })
	c.SetRefresher(&fakeRefresher{fn: func() domain.RefreshResult {
		return domain.RefreshResult{Success: false, KeepAuth: true, Err: context.DeadlineExceeded}
	}})

	err := c.Get(context.Background(), "/api/users/profile", nil)

	require.Error(t, err)
	assert.Equal(t, 401, domain.StatusOf(err))
	assert.False(t, expired, "transient refresh trouble must not end the session")
	tok, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "old", tok)
}

func TestTransport_Unauthenticated401PassesThrough(t *testing.T) {
	// No stored token: the transport must not try to recover.
	store := &memStore{}
	refresher := &fakeRefresher{fn: func() domain.RefreshResult {
		return domain.RefreshResult{Success: true}
	}}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, handler, store, nil)
	c.SetRefresher(refresher)

	err := c.Get(context.Background(), "/api/users/profile", nil)

	require.Error(t, err)
	assert.Equal(t, 401, domain.StatusOf(err))
	assert.Equal(t, 0, refresher.callCount())
}

func TestTransport_ConcurrentRecoveriesShareOneRefresh(t *testing.T) {
	store := &memStore{token: "old"}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})
	refresher := &fakeRefresher{
		delay: 50 * time.Millisecond,
		fn: func() domain.RefreshResult {
			store.SetToken("new")
			return domain.RefreshResult{Success: true}
		},
	}
	c := newTestClient(t, handler, store, nil)
	c.SetRefresher(refresher)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out map[string]any
			errs[i] = c.Get(context.Background(), "/api/hospitals", &out)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, refresher.callCount(), "queued recoveries must share the first refresh")
}
