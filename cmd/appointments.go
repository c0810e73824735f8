package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"carectl/internal/domain"
	"carectl/internal/output"
)

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"appts"},
	Short:   "Book and manage appointments",
}

var appointmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your appointments",
	RunE:  runAppointmentsList,
}

var appointmentsBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a new appointment",
	Long: `Book a visit at a hospital.

Examples:
  carectl appointments book --hospital 3 --date 2026-09-20 --doctor "Dr. Chen" --specialty Cardiology
  carectl appointments book --hospital 3 --date 2026-09-20 --time 14:30 --doctor "Dr. Chen" --specialty Cardiology --notes "follow-up"`,
	RunE: runAppointmentsBook,
}

var appointmentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an existing appointment",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppointmentsUpdate,
}

var appointmentsCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel an appointment",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppointmentsCancel,
}

func init() {
	rootCmd.AddCommand(appointmentsCmd)
	appointmentsCmd.AddCommand(appointmentsListCmd)
	appointmentsCmd.AddCommand(appointmentsBookCmd)
	appointmentsCmd.AddCommand(appointmentsUpdateCmd)
	appointmentsCmd.AddCommand(appointmentsCancelCmd)

	addAppointmentFlags(appointmentsBookCmd)
	_ = appointmentsBookCmd.MarkFlagRequired("hospital")
	_ = appointmentsBookCmd.MarkFlagRequired("date")
	_ = appointmentsBookCmd.MarkFlagRequired("doctor")
	_ = appointmentsBookCmd.MarkFlagRequired("specialty")

	addAppointmentFlags(appointmentsUpdateCmd)
	appointmentsUpdateCmd.Flags().String("status", "", "appointment status")
}

func addAppointmentFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("hospital", 0, "hospital id")
	cmd.Flags().String("date", "", "visit date (YYYY-MM-DD)")
	cmd.Flags().String("time", "", "visit time (HH:MM)")
	cmd.Flags().String("doctor", "", "doctor name")
	cmd.Flags().String("specialty", "", "medical specialty")
	cmd.Flags().String("notes", "", "notes for the visit")
}

func appointmentFromFlags(cmd *cobra.Command) domain.Appointment {
	hospitalID, _ := cmd.Flags().GetInt64("hospital")
	date, _ := cmd.Flags().GetString("date")
	timeOfDay, _ := cmd.Flags().GetString("time")
	doctor, _ := cmd.Flags().GetString("doctor")
	specialty, _ := cmd.Flags().GetString("specialty")
	notes, _ := cmd.Flags().GetString("notes")

	appt := domain.Appointment{
		Date:      date,
		Time:      timeOfDay,
		Doctor:    doctor,
		Specialty: specialty,
		Notes:     notes,
	}
	if hospitalID > 0 {
		appt.Hospital = &domain.HospitalRef{ID: hospitalID}
	}
	return appt
}

func runAppointmentsList(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "appointments"); err != nil {
		return err
	}

	appointments, err := app.appointments.ForCurrentUser(cmd.Context())
	if err != nil {
		return fail(err)
	}
	renderAppointments(appointments)
	return nil
}

func runAppointmentsBook(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "appointments"); err != nil {
		return err
	}

	created, err := app.appointments.Create(cmd.Context(), appointmentFromFlags(cmd))
	if err != nil {
		return fail(err)
	}
	printer.Success("Appointment %d booked for %s with %s", created.ID, created.Date, created.Doctor)
	return nil
}

func runAppointmentsUpdate(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "appointments"); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	appt := appointmentFromFlags(cmd)
	appt.Status, _ = cmd.Flags().GetString("status")

	updated, err := app.appointments.Update(cmd.Context(), id, appt)
	if err != nil {
		return fail(err)
	}
	printer.Success("Appointment %d updated", updated.ID)
	return nil
}

func runAppointmentsCancel(cmd *cobra.Command, args []string) error {
	if err := requireSession(cmd.Context(), "appointments"); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := app.appointments.Cancel(cmd.Context(), id); err != nil {
		return fail(err)
	}
	printer.Success("Appointment %d cancelled", id)
	return nil
}

func renderAppointments(appointments []domain.Appointment) {
	if len(appointments) == 0 {
		printer.Warning("No appointments")
		return
	}

	table := output.NewTable([]string{"ID", "DATE", "TIME", "DOCTOR", "SPECIALTY", "HOSPITAL", "STATUS"})
	for _, a := range appointments {
		hospital := "-"
		if a.Hospital != nil && a.Hospital.Name != "" {
			hospital = a.Hospital.Name
		} else if a.Hospital != nil {
			hospital = fmt.Sprint(a.Hospital.ID)
		}
		table.AddRow([]string{
			fmt.Sprint(a.ID), a.Date, dash(a.Time), a.Doctor, a.Specialty, hospital, dash(a.Status),
		})
	}
	table.Render()
	printer.Info("Total: %d appointment(s)", len(appointments))
}
