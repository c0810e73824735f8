package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carectl/internal/output"
)

var treatmentCmd = &cobra.Command{
	Use:   "treatment",
	Short: "Look up treatments and what they mean",
}

var treatmentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one treatment in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runTreatmentShow,
}

var treatmentHospitalCmd = &cobra.Command{
	Use:   "hospital <hospital-id>",
	Short: "List the treatments a hospital offers",
	Args:  cobra.ExactArgs(1),
	RunE:  runTreatmentHospital,
}

var treatmentExplainCmd = &cobra.Command{
	Use:   "explain <name>",
	Short: "Explain a treatment in plain language",
	Long: `Fetch a plain-language description of a treatment by name.

Examples:
  carectl treatment explain "MRI scan"
  carectl treatment explain angioplasty`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTreatmentExplain,
}

func init() {
	rootCmd.AddCommand(treatmentCmd)
	treatmentCmd.AddCommand(treatmentShowCmd)
	treatmentCmd.AddCommand(treatmentHospitalCmd)
	treatmentCmd.AddCommand(treatmentExplainCmd)
}

func runTreatmentShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	treatment, err := app.treatments.Get(cmd.Context(), id)
	if err != nil {
		return fail(err)
	}

	printer.Header(treatment.Name)
	printer.Print("Description: %s", dash(treatment.Description))
	if treatment.Cost > 0 {
		printer.Print("Cost:        $%.2f", treatment.Cost)
	}
	if treatment.Hospital != nil {
		printer.Print("Hospital:    %s", treatment.Hospital.Name)
	}
	return nil
}

func runTreatmentHospital(cmd *cobra.Command, args []string) error {
	hospitalID, err := parseID(args[0])
	if err != nil {
		return err
	}

	treatments, err := app.treatments.ByHospital(cmd.Context(), hospitalID)
	if err != nil {
		return fail(err)
	}
	if len(treatments) == 0 {
		printer.Warning("No treatments found")
		return nil
	}

	table := output.NewTable([]string{"ID", "TREATMENT", "COST"})
	for _, t := range treatments {
		cost := "-"
		if t.Cost > 0 {
			cost = fmt.Sprintf("$%.2f", t.Cost)
		}
		table.AddRow([]string{fmt.Sprint(t.ID), t.Name, cost})
	}
	table.Render()
	printer.Info("Total: %d treatment(s)", len(treatments))
	return nil
}

func runTreatmentExplain(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	explanation, err := app.treatments.Explain(cmd.Context(), name)
	if err != nil {
		return fail(err)
	}

	printer.Header(explanation.Name)
	printer.Print("%s", explanation.Explanation)
	return nil
}
