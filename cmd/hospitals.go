package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/output"
)

var hospitalsCmd = &cobra.Command{
	Use:   "hospitals",
	Short: "Browse and search the hospital directory",
}

var hospitalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hospitals",
	Long: `List the hospital directory, optionally filtered by US state.

Examples:
  carectl hospitals list
  carectl hospitals list --state CA`,
	RunE: runHospitalsList,
}

var hospitalsSearchCmd = &cobra.Command{
	Use:   "search <terms>",
	Short: "Search hospitals by name",
	Long: `Search the hospital directory. With --registry the public NPI
organization registry is searched instead of the backend directory.

Examples:
  carectl hospitals search mercy
  carectl hospitals search "st. mary" --location Boston
  carectl hospitals search cardiology --registry --limit 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHospitalsSearch,
}

var hospitalsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one hospital in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runHospitalsShow,
}

func init() {
	rootCmd.AddCommand(hospitalsCmd)
	hospitalsCmd.AddCommand(hospitalsListCmd)
	hospitalsCmd.AddCommand(hospitalsSearchCmd)
	hospitalsCmd.AddCommand(hospitalsShowCmd)

	hospitalsListCmd.Flags().String("state", "", "filter by US state code")
	hospitalsSearchCmd.Flags().String("location", "", "filter by city or state")
	hospitalsSearchCmd.Flags().Bool("registry", false, "search the public NPI registry instead of the directory")
	hospitalsSearchCmd.Flags().Int("limit", 25, "maximum registry results")
}

func runHospitalsList(cmd *cobra.Command, args []string) error {
	state, _ := cmd.Flags().GetString("state")

	var (
		hospitals []domain.Hospital
		err       error
	)
	if state != "" {
		hospitals, err = app.hospitals.ByState(cmd.Context(), state)
	} else {
		hospitals, err = app.hospitals.List(cmd.Context())
	}
	if err != nil {
		return fail(err)
	}

	renderHospitals(hospitals)
	return nil
}

func runHospitalsSearch(cmd *cobra.Command, args []string) error {
	terms := strings.Join(args, " ")
	registry, _ := cmd.Flags().GetBool("registry")
	location, _ := cmd.Flags().GetString("location")
	limit, _ := cmd.Flags().GetInt("limit")

	var (
		hospitals []domain.Hospital
		err       error
	)
	if registry {
		hospitals, err = app.hospitals.RegistrySearch(cmd.Context(), terms, limit)
	} else {
		hospitals, err = app.hospitals.Search(cmd.Context(), terms, location)
	}
	if err != nil {
		return fail(err)
	}

	renderHospitals(hospitals)
	return nil
}

func runHospitalsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	hospital, err := app.hospitals.Get(cmd.Context(), id)
	if err != nil {
		return fail(err)
	}

	printer.Header(hospital.Name)
	printer.Print("Address:     %s", dash(hospitalAddress(*hospital)))
	printer.Print("Phone:       %s", dash(hospital.Phone))
	printer.Print("Website:     %s", dash(hospital.Website))
	if hospital.Rating > 0 {
		printer.Print("Rating:      %.1f", hospital.Rating)
	}
	if len(hospital.Specialties) > 0 {
		printer.Print("Specialties: %s", strings.Join(hospital.Specialties, ", "))
	}
	if len(hospital.AcceptedPlans) > 0 {
		printer.Header("Accepted Plans")
		table := output.NewTable([]string{"ID", "PLAN", "PROVIDER"})
		for _, plan := range hospital.AcceptedPlans {
			table.AddRow([]string{fmt.Sprint(plan.ID), plan.Name, dash(plan.Provider)})
		}
		table.Render()
	}
	return nil
}

func renderHospitals(hospitals []domain.Hospital) {
	if len(hospitals) == 0 {
		printer.Warning("No hospitals found")
		return
	}

	table := output.NewTable([]string{"ID", "NAME", "ADDRESS", "RATING"})
	for _, h := range hospitals {
		rating := "-"
		if h.Rating > 0 {
			rating = fmt.Sprintf("%.1f", h.Rating)
		}
		table.AddRow([]string{fmt.Sprint(h.ID), h.Name, dash(hospitalAddress(h)), rating})
	}
	table.Render()
	printer.Info("Total: %d hospital(s)", len(hospitals))
}

func hospitalAddress(h domain.Hospital) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{h.Address, h.City, h.State, h.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
