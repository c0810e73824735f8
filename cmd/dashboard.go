package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/output"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your aggregated overview",
	Long: `Fetch the signed-in user's overview: insurance plan comparisons,
upcoming appointments, and medical history. Sections that cannot be
loaded are skipped rather than failing the whole view.`,
	RunE: runDashboard,
}

var dashboardCompareCmd = &cobra.Command{
	Use:   "compare <plan-id> [plan-id...]",
	Short: "Compare specific insurance plans",
	Long: `Compare insurance plans by the hospitals that accept them.

Examples:
  carectl dashboard compare 2 4 7`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDashboardCompare,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardCompareCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "dashboard"); err != nil {
		return err
	}

	overview, err := app.dashboard.Load(cmd.Context(), app.appointments)
	if err != nil {
		return fail(err)
	}

	if user := app.manager.User(); user != nil {
		printer.Print("%s Signed in as %s", printer.SessionBadge(app.manager.State().String()), printer.Bold(user.Username))
	}

	printer.Header("Plan Comparisons")
	renderComparisons(overview.Plans)

	printer.Header("Appointments")
	if len(overview.Appointments) == 0 {
		printer.Print("No upcoming appointments.")
	} else {
		renderAppointments(overview.Appointments)
	}

	printer.Header("Medical History")
	if len(overview.Records) == 0 {
		printer.Print("No records on file.")
	} else {
		table := output.NewTable([]string{"DATE", "DIAGNOSIS", "TREATMENT"})
		for _, r := range overview.Records {
			table.AddRow([]string{dash(r.Date), r.Diagnosis, dash(r.Treatment)})
		}
		table.Render()
	}
	return nil
}

func runDashboardCompare(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "dashboard"); err != nil {
		return err
	}

	planIDs := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		planIDs = append(planIDs, id)
	}

	comparisons, err := app.dashboard.Compare(cmd.Context(), planIDs)
	if err != nil {
		return fail(err)
	}
	renderComparisons(comparisons)
	return nil
}

func renderComparisons(comparisons []domain.PlanComparison) {
	if len(comparisons) == 0 {
		printer.Print("No plan comparisons available.")
		return
	}

	table := output.NewTable([]string{"PLAN", "PROVIDER", "ACCEPTED AT"})
	for _, c := range comparisons {
		names := make([]string, 0, len(c.Hospitals))
		for _, h := range c.Hospitals {
			names = append(names, h.Name)
		}
		accepted := "-"
		if len(names) > 0 {
			accepted = fmt.Sprintf("%d: %s", len(names), strings.Join(names, ", "))
		}
		table.AddRow([]string{c.Plan.Name, dash(c.Plan.Provider), accepted})
	}
	table.Render()
}
