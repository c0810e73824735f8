package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"carectl/client"
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

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// newAPIClient spins an httptest server and a client pointed at it.
func newAPIClient(t *testing.T, handler http.Handler, store domain.SessionStore) (*client.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := client.New(client.Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Store:   store,
		Logger:  discardLogger(),
	})
	return c, srv
}
