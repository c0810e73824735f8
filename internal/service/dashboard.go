package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"carectl/client"
	"carectl/internal/domain"
)

// Dashboard aggregates the signed-in user's view: plan comparisons,
// upcoming appointments and medical history.
type Dashboard struct {
	api    *client.Client
	store  domain.SessionStore
	logger *slog.Logger
}

// NewDashboard creates the dashboard service.
func NewDashboard(api *client.Client, store domain.SessionStore, logger *slog.Logger) *Dashboard {
	return &Dashboard{api: api, store: store, logger: logger}
}

// Overview is the aggregated dashboard payload.
type Overview struct {
	Plans        []domain.PlanComparison
	Appointments []domain.Appointment
	Records      []domain.MedicalRecord
}

func (d *Dashboard) userID() (int64, error) {
	user, ok := d.store.User()
	if !ok {
		return 0, domain.ErrLoginRequired
	}
	return user.ID, nil
}

// Plans fetches the comparison set for the user's situation.
func (d *Dashboard) Plans(ctx context.Context) ([]domain.PlanComparison, error) {
	id, err := d.userID()
	if err != nil {
		return nil, err
	}
	var plans []domain.PlanComparison
	if err := d.api.Get(ctx, fmt.Sprintf("/api/dashboard/plans/%d", id), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Compare asks the backend to compare specific plans for the user.
func (d *Dashboard) Compare(ctx context.Context, planIDs []int64) ([]domain.PlanComparison, error) {
	id, err := d.userID()
	if err != nil {
		return nil, err
	}
	var result []domain.PlanComparison
	body := map[string][]int64{"planIds": planIDs}
	if err := d.api.Post(ctx, fmt.Sprintf("/api/dashboard/compare/%d", id), body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Records fetches the user's medical history.
func (d *Dashboard) Records(ctx context.Context) ([]domain.MedicalRecord, error) {
	id, err := d.userID()
	if err != nil {
		return nil, err
	}
	var records []domain.MedicalRecord
	if err := d.api.Get(ctx, fmt.Sprintf("/api/medical-records/%d", id), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Load fans the three dashboard sections out concurrently. Sections that
// fail individually come back empty; only a failure of every section is
// an error, matching the app's degrade-to-partial-data behavior.
func (d *Dashboard) Load(ctx context.Context, appointments *Appointments) (*Overview, error) {
	if _, err := d.userID(); err != nil {
		return nil, err
	}

	overview := &Overview{}
	var failures atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plans, err := d.Plans(ctx)
		if err != nil {
			d.logger.Warn("dashboard plans unavailable", "error", err)
			failures.Add(1)
			return nil
		}
		overview.Plans = plans
		return nil
	})
	g.Go(func() error {
		appts, err := appointments.ForCurrentUser(ctx)
		if err != nil {
			d.logger.Warn("dashboard appointments unavailable", "error", err)
			failures.Add(1)
			return nil
		}
		overview.Appointments = appts
		return nil
	})
	g.Go(func() error {
		records, err := d.Records(ctx)
		if err != nil {
			d.logger.Warn("dashboard records unavailable", "error", err)
			failures.Add(1)
			return nil
		}
		overview.Records = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failures.Load() == 3 {
		return nil, domain.ErrServerUnavailable
	}
	return overview, nil
}
