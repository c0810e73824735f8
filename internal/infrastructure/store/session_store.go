package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"carectl/internal/domain"
)

// storage keys, fixed so sessions written by older builds stay readable
const (
	keyToken       = "token"
	keyUser        = "user"
	keyLastRefresh = "lastTokenRefresh"
)

// FileStore persists session data as a JSON file so it survives process
// restarts. All access is mutex-guarded; every mutation is flushed with a
// temp-file rename so a crash never leaves a torn session on disk.
// Implements domain.SessionStore.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// NewFileStore opens (or creates) the session file at path. A missing or
// unreadable file yields an empty store rather than an error: a corrupt
// session is indistinguishable from a logged-out one.
func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return s
	}
	s.data = data
	return s
}

// Token returns the stored access token, if any.
func (s *FileStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[keyToken]
	if !ok {
		return "", false
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil || token == "" {
		return "", false
	}
	return token, true
}

// SetToken stores the access token.
func (s *FileStore) SetToken(token string) error {
	return s.set(keyToken, token)
}

// ClearToken removes only the token, leaving the cached user profile in
// place (soft clear).
func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, keyToken)
	return s.flush()
}

// User returns the stored profile snapshot, if any.
func (s *FileStore) User() (*domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[keyUser]
	if !ok {
		return nil, false
	}
	var user domain.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// SetUser stores the profile snapshot.
func (s *FileStore) SetUser(user *domain.UserProfile) error {
	return s.set(keyUser, user)
}

// LastRefresh returns when the last successful refresh completed.
func (s *FileStore) LastRefresh() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[keyLastRefresh]
	if !ok {
		return time.Time{}, false
	}
	var millis int64
	if err := json.Unmarshal(raw, &millis); err != nil || millis <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// SetLastRefresh records a completed refresh.
func (s *FileStore) SetLastRefresh(t time.Time) error {
	return s.set(keyLastRefresh, t.UnixMilli())
}

// Clear removes token, user and refresh bookkeeping (hard clear).
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]json.RawMessage)
	return s.flush()
}

func (s *FileStore) set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = raw
	return s.flush()
}

// flush writes the store to disk. Callers hold s.mu.
func (s *FileStore) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
