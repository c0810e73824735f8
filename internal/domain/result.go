package domain

// RefreshResult is the tagged outcome of a token refresh. No refresh path
// panics or returns a bare error: callers branch on the tags.
type RefreshResult struct {
	Success bool
	// Cached is set when a recent refresh was reused instead of calling
	// the backend again.
	Cached bool
	// KeepAuth tells the caller not to log the user out: the failure was
	// a network problem or a non-auth status, not proof of a bad session.
	KeepAuth bool
	Err      error
}

// LoginResult is the tagged outcome of a login attempt. Error holds a
// user-facing message, never internals.
type LoginResult struct {
	Success bool
	User    *UserProfile
	Error   string
}

// RegisterResult is the tagged outcome of a registration attempt.
// AutoLogin is set when the backend returned credentials and the session
// was established in the same step.
type RegisterResult struct {
	Success   bool
	AutoLogin bool
	User      *UserProfile
	Message   string
	Error     string
}

// FetchUserResult reports where profile data came from. Source is "cache"
// when the cached snapshot was used, "server" after a successful GET.
type FetchUserResult struct {
	Success bool
	User    *UserProfile
	Source  string
	Error   string
}
