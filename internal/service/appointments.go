package service

import (
	"context"
	"fmt"
	"log/slog"

	"carectl/client"
	"carectl/internal/domain"
)

// Appointments books and manages visits. Every operation requires a
// stored session: booking for someone else is not a thing the client
// supports, so the owning user is always taken from the session store.
type Appointments struct {
	api    *client.Client
	store  domain.SessionStore
	logger *slog.Logger
}

// NewAppointments creates the appointment service.
func NewAppointments(api *client.Client, store domain.SessionStore, logger *slog.Logger) *Appointments {
	return &Appointments{api: api, store: store, logger: logger}
}

// requireUser resolves the authenticated user, rejecting early instead of
// letting the backend bounce an anonymous request.
func (a *Appointments) requireUser() (*domain.UserProfile, error) {
	if _, ok := a.store.Token(); !ok {
		return nil, domain.ErrLoginRequired
	}
	user, ok := a.store.User()
	if !ok {
		return nil, domain.ErrLoginRequired
	}
	return user, nil
}

// ForCurrentUser lists the authenticated user's appointments.
func (a *Appointments) ForCurrentUser(ctx context.Context) ([]domain.Appointment, error) {
	user, err := a.requireUser()
	if err != nil {
		return nil, err
	}
	var appointments []domain.Appointment
	if err := a.api.Get(ctx, fmt.Sprintf("/api/appointments/user/%d", user.ID), &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// Create books a visit. The user reference is overwritten with the
// authenticated identity regardless of what the caller filled in.
func (a *Appointments) Create(ctx context.Context, appt domain.Appointment) (*domain.Appointment, error) {
	user, err := a.requireUser()
	if err != nil {
		return nil, err
	}
	appt.User = &domain.UserRef{ID: user.ID}

	var created domain.Appointment
	if err := a.api.Post(ctx, "/api/appointments", appt, &created); err != nil {
		return nil, err
	}
	a.logger.Info("appointment booked", "id", created.ID, "date", created.Date)
	return &created, nil
}

// Update changes an existing appointment.
func (a *Appointments) Update(ctx context.Context, id int64, appt domain.Appointment) (*domain.Appointment, error) {
	if _, err := a.requireUser(); err != nil {
		return nil, err
	}
	var updated domain.Appointment
	if err := a.api.Put(ctx, fmt.Sprintf("/api/appointments/%d", id), appt, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Cancel deletes an appointment.
func (a *Appointments) Cancel(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	return a.api.Delete(ctx, fmt.Sprintf("/api/appointments/%d", id))
}
