package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/service"
)

var symptomsCmd = &cobra.Command{
	Use:   "symptoms <description>",
	Short: "Check symptoms against possible conditions",
	Long: `Describe your symptoms in free text and get a list of possible
conditions with advice. The backend's checker is used when reachable;
otherwise the same rules run locally.

Examples:
  carectl symptoms "headache and fever"
  carectl symptoms "chest pain" --local`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSymptoms,
}

func init() {
	rootCmd.AddCommand(symptomsCmd)

	symptomsCmd.Flags().Bool("local", false, "skip the backend and assess locally")
}

func runSymptoms(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "symptoms"); err != nil {
		return err
	}

	description := strings.Join(args, " ")
	local, _ := cmd.Flags().GetBool("local")

	var report *domain.SymptomReport
	if local {
		report = service.CheckLocally(description)
		report.Source = "local"
	} else {
		var err error
		report, err = app.symptoms.Check(cmd.Context(), description)
		if err != nil {
			return fail(err)
		}
	}

	printer.Header("Assessment")
	if len(report.Conditions) == 0 {
		printer.Print("No specific conditions identified.")
	} else {
		for _, c := range report.Conditions {
			printer.Print("  - %s", c)
		}
	}
	printer.Print("")
	printer.Print("%s", report.Advice)
	if report.Source == "local" {
		printer.Info("Assessed locally (backend unreachable or --local)")
	}
	return nil
}
