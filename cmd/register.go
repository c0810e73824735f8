package cmd

import (
	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/output"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a CareCompare account",
	Long: `Register a new account. When the backend signs the new account in
directly, the session is stored and no separate login is needed.

Examples:
  carectl register --username alice --email alice@example.com
  carectl register --username bob --email bob@example.com --policy-number POL-12345`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("username", "", "account username")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "password (prompted when omitted)")
	registerCmd.Flags().String("policy-number", "", "insurance policy number to link")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
}

func runRegister(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	policyNumber, _ := cmd.Flags().GetString("policy-number")

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

	res := app.manager.Register(cmd.Context(), domain.Registration{
		Username:     username,
		Email:        email,
		Password:     password,
		PolicyNumber: policyNumber,
	})
	if !res.Success {
		return &output.CLIError{
			Summary:  res.Error,
			ExitCode: output.ExitGeneral,
		}
	}

	if res.AutoLogin {
		printer.Success("Account created, signed in as %s", res.User.Username)
		return nil
	}
	printer.Success("Account created")
	if res.Message != "" {
		printer.Info("%s", res.Message)
	}
	return nil
}
