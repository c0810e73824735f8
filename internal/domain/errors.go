package domain

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	ErrNoToken         = errors.New("no token to refresh")
	ErrSessionExpired  = errors.New("session expired, please log in again")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrLoginRequired   = errors.New("login required")
	ErrInvalidResponse = errors.New("invalid response from server")
)

// Backend errors.
var (
	ErrServerUnavailable = errors.New("temporary server issue, please try again later")
	ErrNotFound          = errors.New("resource not found")
)

// APIError carries the HTTP status of a rejected backend call so callers
// can separate genuine auth rejections from everything else. A network
// failure never produces an APIError.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// StatusOf extracts the HTTP status from err, or 0 when err carries none
// (network failure, timeout, cancellation).
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsAuthRejection reports whether err is a genuine 401 from the backend,
// the only error class that may cost a user their session.
func IsAuthRejection(err error) bool {
	return StatusOf(err) == 401
}
