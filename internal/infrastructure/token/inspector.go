package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspector evaluates bearer tokens without verifying signatures. The
// backend owns correctness of authentication; everything here is a UX
// heuristic, so every method fails safe toward "expired" on malformed
// input and never returns an error.
// Implements domain.TokenInspector.
type Inspector struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewInspector creates an inspector using the wall clock.
func NewInspector() *Inspector {
	return &Inspector{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// NewInspectorAt creates an inspector with an injected clock.
func NewInspectorAt(now func() time.Time) *Inspector {
	return &Inspector{
		parser: jwt.NewParser(),
		now:    now,
	}
}

// HasToken reports whether raw looks like a JWT: non-empty and exactly
// three dot-separated segments. Format only, not validation.
func (i *Inspector) HasToken(raw string) bool {
	return raw != "" && len(strings.Split(raw, ".")) == 3
}

// DecodePayload returns the JSON-decoded claims segment, or nil on any
// malformed input.
func (i *Inspector) DecodePayload(raw string) map[string]any {
	if !i.HasToken(raw) {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}
	return claims
}

// expiresAt returns the exp claim as a time, or false when the token is
// undecodable or carries no usable exp.
func (i *Inspector) expiresAt(raw string) (time.Time, bool) {
	claims := i.DecodePayload(raw)
	if claims == nil {
		return time.Time{}, false
	}
	exp, err := jwt.MapClaims(claims).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired reports whether the token's exp claim has passed. A token
// without a decodable exp counts as expired.
func (i *Inspector) IsExpired(raw string) bool {
	exp, ok := i.expiresAt(raw)
	if !ok {
		return true
	}
	return !i.now().Before(exp)
}

// SecondsUntilExpiration returns the signed number of seconds until the
// exp claim, floored so a token expired by any amount reads negative.
// -1 on undecodable input.
func (i *Inspector) SecondsUntilExpiration(raw string) int64 {
	exp, ok := i.expiresAt(raw)
	if !ok {
		return -1
	}
	millis := exp.Sub(i.now()).Milliseconds()
	secs := millis / 1000
	if millis%1000 != 0 && millis < 0 {
		secs--
	}
	return secs
}

// ShouldRefresh reports whether the token is still valid but has fewer
// than threshold remaining, the window where a proactive refresh is
// worthwhile.
func (i *Inspector) ShouldRefresh(raw string, threshold time.Duration) bool {
	left := i.SecondsUntilExpiration(raw)
	return left > 0 && left < int64(threshold/time.Second)
}
