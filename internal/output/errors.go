package output

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"carectl/internal/domain"
)

// Exit code constants
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitAuthError   = 3
	ExitServerError = 4
	ExitConfigError = 5
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
}

// Error implements the error interface, returning the summary
func (e *CLIError) Error() string {
	return e.Summary
}

// FormatError prints a structured error message to stderr
func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		colorError(p, e)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	}
}

// FromError maps a backend or session error onto the CLI's error
// taxonomy: auth problems suggest logging in, 5xx surfaces as a transient
// server issue, everything else is general.
func FromError(err error) *CLIError {
	switch {
	case errors.Is(err, domain.ErrLoginRequired):
		return &CLIError{
			Summary:    "login required",
			Suggestion: "Run 'carectl login' first",
			ExitCode:   ExitAuthError,
		}
	case errors.Is(err, domain.ErrSessionExpired):
		return &CLIError{
			Summary:    "session expired",
			Suggestion: "Run 'carectl login' to start a new session",
			ExitCode:   ExitAuthError,
		}
	case errors.Is(err, domain.ErrServerUnavailable) || domain.StatusOf(err) >= 500:
		return &CLIError{
			Summary:    "temporary server issue",
			Detail:     err.Error(),
			Suggestion: "Please try again later",
			ExitCode:   ExitServerError,
		}
	case domain.IsAuthRejection(err):
		return &CLIError{
			Summary:    "not authorized",
			Detail:     err.Error(),
			Suggestion: "Run 'carectl login' to start a new session",
			ExitCode:   ExitAuthError,
		}
	case errors.Is(err, domain.ErrNotFound):
		return &CLIError{
			Summary:  "resource not found",
			Detail:   err.Error(),
			ExitCode: ExitGeneral,
		}
	default:
		return &CLIError{
			Summary:  err.Error(),
			ExitCode: ExitGeneral,
		}
	}
}

func colorError(p *Printer, e *CLIError) {
	color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	}
}
