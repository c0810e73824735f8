package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"carectl/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in to CareCompare",
	Long: `Authenticate against the CareCompare backend and store the session
locally. The password is prompted for unless --password is given.

Examples:
  carectl login alice                  # Sign in with a username
  carectl login POL-12345 --policy     # Sign in with a policy number`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().Bool("policy", false, "treat the identifier as an insurance policy number")
	loginCmd.Flags().String("password", "", "password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	policy, _ := cmd.Flags().GetBool("policy")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		var err error
		password, err = promptPassword(cmd)
		if err != nil {
			return err
		}
	}
	if password == "" {
		return &output.CLIError{
			Summary:  "password required",
			ExitCode: output.ExitUsageError,
		}
	}

	res := app.manager.Login(cmd.Context(), args[0], password, policy)
	if !res.Success {
		return &output.CLIError{
			Summary:  res.Error,
			ExitCode: output.ExitAuthError,
		}
	}

	printer.Success("Signed in as %s", res.User.Username)
	return nil
}

// promptPassword reads a password from stdin. Interactive sessions see a
// prompt on stderr so stdout stays scriptable.
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
