package token

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintToken builds an unsigned JWT-shaped token with the given claims.
// The signature segment is junk; nothing here verifies signatures.
func mintToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestHasToken(t *testing.T) {
	i := NewInspector()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"empty", "", false},
		{"one segment", "abc", false},
		{"two segments", "abc.def", false},
		{"three segments", "abc.def.ghi", true},
		{"four segments", "a.b.c.d", false},
		{"real shape", mintToken(t, map[string]any{"sub": "1"}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, i.HasToken(tt.raw))
		})
	}
}

func TestDecodePayload(t *testing.T) {
	i := NewInspector()

	t.Run("valid token", func(t *testing.T) {
		raw := mintToken(t, map[string]any{"sub": "42", "username": "alice"})
		claims := i.DecodePayload(raw)
		require.NotNil(t, claims)
		assert.Equal(t, "alice", claims["username"])
	})

	t.Run("garbage payload segment", func(t *testing.T) {
		assert.Nil(t, i.DecodePayload("abc.!!!.ghi"))
	})

	t.Run("not a token", func(t *testing.T) {
		assert.Nil(t, i.DecodePayload("hello"))
	})
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := NewInspectorAt(fixedClock(now))

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"future exp", mintToken(t, map[string]any{"exp": now.Add(time.Hour).Unix()}), false},
		{"past exp", mintToken(t, map[string]any{"exp": now.Add(-time.Hour).Unix()}), true},
		{"exp exactly now", mintToken(t, map[string]any{"exp": now.Unix()}), true},
		{"no exp claim", mintToken(t, map[string]any{"sub": "1"}), true},
		{"malformed", "not.a.token", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, i.IsExpired(tt.raw))
		})
	}
}

func TestSecondsUntilExpiration(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := NewInspectorAt(fixedClock(now))

	t.Run("future token counts down", func(t *testing.T) {
		raw := mintToken(t, map[string]any{"exp": now.Add(90 * time.Second).Unix()})
		assert.Equal(t, int64(90), i.SecondsUntilExpiration(raw))
	})

	t.Run("expired token is negative", func(t *testing.T) {
		raw := mintToken(t, map[string]any{"exp": now.Add(-30 * time.Second).Unix()})
		assert.Equal(t, int64(-30), i.SecondsUntilExpiration(raw))
	})

	t.Run("sub-second expiry still reads negative", func(t *testing.T) {
		exp := float64(now.Add(-500*time.Millisecond).UnixMilli()) / 1000
		raw := mintToken(t, map[string]any{"exp": exp})
		assert.True(t, i.IsExpired(raw))
		assert.Equal(t, int64(-1), i.SecondsUntilExpiration(raw))
	})

	t.Run("sub-second remainder floors to zero", func(t *testing.T) {
		exp := float64(now.Add(500*time.Millisecond).UnixMilli()) / 1000
		raw := mintToken(t, map[string]any{"exp": exp})
		assert.False(t, i.IsExpired(raw))
		assert.Equal(t, int64(0), i.SecondsUntilExpiration(raw))
	})

	t.Run("undecodable is -1", func(t *testing.T) {
		assert.Equal(t, int64(-1), i.SecondsUntilExpiration("garbage"))
		assert.Equal(t, int64(-1), i.SecondsUntilExpiration(""))
	})

	t.Run("no exp claim is -1", func(t *testing.T) {
		raw := mintToken(t, map[string]any{"sub": "1"})
		assert.Equal(t, int64(-1), i.SecondsUntilExpiration(raw))
	})
}

func TestShouldRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := NewInspectorAt(fixedClock(now))
	threshold := 10 * time.Minute

	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"well before threshold", now.Add(time.Hour), false},
		{"inside threshold", now.Add(5 * time.Minute), true},
		{"just inside threshold", now.Add(threshold - time.Second), true},
		{"already expired", now.Add(-time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mintToken(t, map[string]any{"exp": tt.exp.Unix()})
			assert.Equal(t, tt.want, i.ShouldRefresh(raw, threshold))
		})
	}

	t.Run("undecodable never refreshes", func(t *testing.T) {
		assert.False(t, i.ShouldRefresh("garbage", threshold))
	})
}
