package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"carectl/internal/output"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage the stored session",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	Long: `Display the session state, the signed-in user, and how long the
stored token remains valid. The token is inspected locally; no request
is made.`,
	RunE: runSessionStatus,
}

var sessionRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the stored token",
	Long: `Ask the backend for a fresh token. A refresh completed moments ago
is reused instead of calling the backend again.`,
	RunE: runSessionRefresh,
}

var sessionWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session fresh until interrupted",
	Long: `Run the background refresh loop: the stored token is refreshed on a
fixed cadence while the session stays live, with a floor between
attempts regardless of timer jitter. Useful alongside long-running
scripts that call carectl repeatedly.`,
	RunE: runSessionWatch,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionRefreshCmd)
	sessionCmd.AddCommand(sessionWatchCmd)
}

func runSessionStatus(cmd *cobra.Command, args []string) error {
	state := app.manager.State()
	session := app.manager.Session()

	printer.Print("%s %s", printer.SessionBadge(state.String()), printer.Bold(state.String()))

	if user := app.manager.User(); user != nil {
		printer.Print("User:          %s <%s>", user.Username, dash(user.Email))
	}
	if session.AccessToken != "" {
		left := app.inspector.SecondsUntilExpiration(session.AccessToken)
		switch {
		case left < 0:
			printer.Print("Token:         %s", printer.Dim("expired or unreadable"))
		default:
			printer.Print("Token:         valid for %s", (time.Duration(left) * time.Second).String())
		}
	} else {
		printer.Print("Token:         %s", printer.Dim("none"))
	}
	if !session.LastRefreshAt.IsZero() {
		printer.Print("Last refresh:  %s ago", time.Since(session.LastRefreshAt).Round(time.Second))
	}
	if msg := app.manager.Message(); msg != "" {
		printer.Warning("%s", msg)
	}
	return nil
}

func runSessionWatch(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "session watch"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer.Info("Refreshing the session every %s (Ctrl-C to stop)", cfg.Auth.RefreshInterval)
	app.manager.AutoRefresh(ctx)
	printer.Print("Stopped")
	return nil
}

func runSessionRefresh(cmd *cobra.Command, args []string) error {
	res := app.manager.Refresh(cmd.Context())
	switch {
	case res.Success && res.Cached:
		printer.Info("Token refreshed recently, nothing to do")
	case res.Success:
		printer.Success("Token refreshed")
	case res.KeepAuth:
		return &output.CLIError{
			Summary:    "refresh failed, session kept",
			Detail:     fmt.Sprint(res.Err),
			Suggestion: "Check connectivity and try again",
			ExitCode:   output.ExitServerError,
		}
	default:
		return output.FromError(res.Err)
	}
	return nil
}
