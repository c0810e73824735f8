// Package guard decides whether a protected view may render. It mirrors
// the trust policy of the session manager: locally cached credentials
// admit optimistically, a redirect happens only once the session check
// has finished and nothing local remains to fall back on.
package guard

import (
	"time"

	"carectl/internal/domain"
)

// Decision is the admission verdict for a protected view.
type Decision int

const (
	// Admit renders the protected view.
	Admit Decision = iota
	// Pending means the session check has not resolved yet.
	Pending
	// Deny redirects to login, preserving the requested location.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case Pending:
		return "pending"
	default:
		return "deny"
	}
}

// SpinnerDelay is how long a pending check may run before a loading
// indicator is worth showing; quicker checks resolve without flicker.
const SpinnerDelay = 700 * time.Millisecond

// refreshStaleness is how old the last refresh may be before entering a
// protected view kicks a background refresh.
const refreshStaleness = 30 * time.Second

// Input captures everything the guard looks at.
type Input struct {
	State domain.AuthState
	// Loading is true while the async session check is unresolved.
	Loading bool
	// HasLocalCredentials is true when both a token and a user snapshot
	// exist in the session store.
	HasLocalCredentials bool
	// Elapsed is how long the view has been waiting on the check.
	Elapsed time.Duration
	// Target is the protected location being navigated to.
	Target string
}

// Outcome is the guard's verdict plus its rendering hints.
type Outcome struct {
	Decision Decision
	// ShowSpinner is set on Pending once the check has outlived the
	// flicker debounce.
	ShowSpinner bool
	// ReturnTo carries the originally requested location on Deny so
	// login can come back to it.
	ReturnTo string
}

// Evaluate applies the admission rules in order: cached credentials admit
// immediately (even mid-check), an unresolved check is Pending, and only
// a finished check with no local fallback denies.
func Evaluate(in Input) Outcome {
	if in.HasLocalCredentials {
		return Outcome{Decision: Admit}
	}
	if in.Loading {
		return Outcome{
			Decision:    Pending,
			ShowSpinner: in.Elapsed >= SpinnerDelay,
		}
	}
	if !in.State.Authenticated() {
		return Outcome{Decision: Deny, ReturnTo: in.Target}
	}
	return Outcome{Decision: Admit}
}

// ShouldKickRefresh reports whether entering a protected view should
// trigger a background token refresh: only when the last one is stale
// enough to be worth the call.
func ShouldKickRefresh(lastRefresh time.Time, hasLast bool, now time.Time) bool {
	if !hasLast {
		return true
	}
	return now.Sub(lastRefresh) > refreshStaleness
}
