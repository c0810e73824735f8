package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/output"
)

var insuranceCmd = &cobra.Command{
	Use:   "insurance",
	Short: "Browse insurance plans",
}

var insuranceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List insurance plans",
	RunE:  runInsuranceList,
}

var insuranceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one insurance plan in detail",
	Long: `Show an insurance plan by id, or look one up by policy number.

Examples:
  carectl insurance show 4
  carectl insurance show --policy POL-12345`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInsuranceShow,
}

func init() {
	rootCmd.AddCommand(insuranceCmd)
	insuranceCmd.AddCommand(insuranceListCmd)
	insuranceCmd.AddCommand(insuranceShowCmd)

	insuranceShowCmd.Flags().String("policy", "", "look up by policy number instead of id")
}

func runInsuranceList(cmd *cobra.Command, args []string) error {
	plans, err := app.insurance.List(cmd.Context())
	if err != nil {
		return fail(err)
	}
	if len(plans) == 0 {
		printer.Warning("No insurance plans found")
		return nil
	}

	table := output.NewTable([]string{"ID", "PLAN", "PROVIDER", "COVERAGE"})
	for _, p := range plans {
		table.AddRow([]string{fmt.Sprint(p.ID), p.Name, dash(p.Provider), dash(p.Coverage)})
	}
	table.Render()
	printer.Info("Total: %d plan(s)", len(plans))
	return nil
}

func runInsuranceShow(cmd *cobra.Command, args []string) error {
	policy, _ := cmd.Flags().GetString("policy")

	var (
		plan *domain.InsurancePlan
		err  error
	)
	switch {
	case policy != "":
		plan, err = app.insurance.ByPolicyNumber(cmd.Context(), policy)
	case len(args) == 1:
		var id int64
		id, err = parseID(args[0])
		if err != nil {
			return err
		}
		plan, err = app.insurance.Get(cmd.Context(), id)
	default:
		return &output.CLIError{
			Summary:  "a plan id or --policy is required",
			ExitCode: output.ExitUsageError,
		}
	}
	if err != nil {
		return fail(err)
	}

	printer.Header(plan.Name)
	printer.Print("Provider:  %s", dash(plan.Provider))
	printer.Print("Coverage:  %s", dash(plan.Coverage))
	printer.Print("Benefits:  %s", dash(plan.Benefits))
	if plan.PolicyNumber != "" {
		printer.Print("Policy:    %s", plan.PolicyNumber)
	}
	return nil
}
