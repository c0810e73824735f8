package domain

import "time"

// AuthState describes the session state machine.
type AuthState int

const (
	// StateUnauthenticated means no usable session exists.
	StateUnauthenticated AuthState = iota
	// StateAuthenticated means the server has confirmed the session.
	StateAuthenticated
	// StateDegraded means the UI treats the session as authenticated from
	// cached data, but the last server check failed or was ambiguous.
	StateDegraded
)

func (s AuthState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateDegraded:
		return "degraded"
	default:
		return "unauthenticated"
	}
}

// Authenticated reports whether the UI should treat the session as live.
// Degraded counts: continuity over strict correctness when the backend
// cannot currently confirm identity.
func (s AuthState) Authenticated() bool {
	return s == StateAuthenticated || s == StateDegraded
}

// Session is the persisted client-side session snapshot.
type Session struct {
	AccessToken   string
	User          *UserProfile
	LastRefreshAt time.Time
}

// HasCredentials reports whether both a token and a user snapshot exist,
// the condition for optimistic admission before any server round trip.
func (s Session) HasCredentials() bool {
	return s.AccessToken != "" && s.User != nil
}

// Credentials is a successful login/registration payload.
type Credentials struct {
	Token string
	User  *UserProfile
}

// Registration is the payload for account creation.
type Registration struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PolicyNumber string `json:"policyNumber,omitempty"`
}

// RegisterOutcome is what the backend returns from registration. Token and
// User are both set when the backend auto-logs-in the new account;
// otherwise only Message is set.
type RegisterOutcome struct {
	Token   string
	User    *UserProfile
	Message string
}
