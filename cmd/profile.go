package cmd

import (
	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and update your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Long: `Show the signed-in user's profile. The cached snapshot is shown by
default; --refresh fetches the latest from the server.`,
	RunE: runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Send changed profile fields to the server. Only the flags you set
are changed; everything else keeps its current value.

Examples:
  carectl profile update --phone 555-0142
  carectl profile update --first-name Alice --address "12 Main St"`,
	RunE: runProfileUpdate,
}

var profileAssignInsuranceCmd = &cobra.Command{
	Use:   "assign-insurance <plan-id>",
	Short: "Attach an insurance plan to your account",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAssignInsurance,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileAssignInsuranceCmd)

	profileShowCmd.Flags().Bool("refresh", false, "fetch the latest profile from the server")

	profileUpdateCmd.Flags().String("first-name", "", "first name")
	profileUpdateCmd.Flags().String("last-name", "", "last name")
	profileUpdateCmd.Flags().String("email", "", "email address")
	profileUpdateCmd.Flags().String("phone", "", "phone number")
	profileUpdateCmd.Flags().String("address", "", "postal address")
	profileUpdateCmd.Flags().String("date-of-birth", "", "date of birth (YYYY-MM-DD)")
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "profile"); err != nil {
		return err
	}
	refresh, _ := cmd.Flags().GetBool("refresh")

	res := app.manager.FetchUser(cmd.Context(), refresh)
	if !res.Success {
		return &output.CLIError{
			Summary:  res.Error,
			ExitCode: output.ExitAuthError,
		}
	}
	if res.Error != "" {
		printer.Warning("Showing cached profile: %s", res.Error)
	}

	user := res.User
	printer.Header(user.Username)
	printer.Print("Name:     %s %s", dash(user.FirstName), dash(user.LastName))
	printer.Print("Email:    %s", dash(user.Email))
	printer.Print("Phone:    %s", dash(user.Phone))
	printer.Print("Address:  %s", dash(user.Address))
	printer.Print("Born:     %s", dash(user.DateOfBirth))
	printer.Print("Policy:   %s", dash(user.PolicyNumber))
	if user.InsurancePlan != nil {
		printer.Print("Plan:     %s (%s)", user.InsurancePlan.Name, dash(user.InsurancePlan.Provider))
	} else {
		printer.Print("Plan:     %s", printer.Dim("none assigned"))
	}
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "profile"); err != nil {
		return err
	}

	changes := domain.UserProfile{}
	changes.FirstName, _ = cmd.Flags().GetString("first-name")
	changes.LastName, _ = cmd.Flags().GetString("last-name")
	changes.Email, _ = cmd.Flags().GetString("email")
	changes.Phone, _ = cmd.Flags().GetString("phone")
	changes.Address, _ = cmd.Flags().GetString("address")
	changes.DateOfBirth, _ = cmd.Flags().GetString("date-of-birth")

	if changes == (domain.UserProfile{}) {
		return &output.CLIError{
			Summary:  "nothing to update",
			Detail:   "set at least one profile flag",
			ExitCode: output.ExitUsageError,
		}
	}

	updated, err := app.profile.Update(cmd.Context(), changes)
	if err != nil {
		return fail(err)
	}
	printer.Success("Profile updated for %s", updated.Username)
	return nil
}

func runProfileAssignInsurance(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "profile"); err != nil {
		return err
	}
	planID, err := parseID(args[0])
	if err != nil {
		return err
	}

	updated, err := app.profile.AssignInsurance(cmd.Context(), planID)
	if err != nil {
		return fail(err)
	}
	if updated.InsurancePlan != nil {
		printer.Success("Plan %s assigned", updated.InsurancePlan.Name)
	} else {
		printer.Success("Plan %d assigned", planID)
	}
	return nil
}
