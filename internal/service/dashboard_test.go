package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carectl/internal/domain"
)

func TestDashboard_Load_PartialFailuresDegrade(t *testing.T) {
	store := &memStore{token: "tok", user: &domain.UserProfile{ID: 7}}
	api, _ := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/appointments/user/7":
			w.Write([]byte(`[{"id":1,"date":"2026-09-20","doctor":"Dr. Chen","specialty":"Cardiology"}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}), store)
	d := NewDashboard(api, store, discardLogger())
	a := NewAppointments(api, store, discardLogger())

	overview, err := d.Load(context.Background(), a)

	require.NoError(t, err, "one live section is enough")
	assert.Len(t, overview.Appointments, 1)
	assert.Empty(t, overview.Plans)
	assert.Empty(t, overview.Records)
}

func TestDashboard_Load_AllSectionsDownIsAnError(t *testing.T) {
	store := &memStore{token: "tok", user: &domain.UserProfile{ID: 7}}
	api, _ := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), store)
	d := NewDashboard(api, store, discardLogger())
	a := NewAppointments(api, store, discardLogger())

	_, err := d.Load(context.Background(), a)

	assert.ErrorIs(t, err, domain.ErrServerUnavailable)
}

func TestDashboard_Load_RequiresSession(t *testing.T) {
	store := &memStore{}
	api, _ := newAPIClient(t, http.NotFoundHandler(), store)
	d := NewDashboard(api, store, discardLogger())
	a := NewAppointments(api, store, discardLogger())

	_, err := d.Load(context.Background(), a)

	assert.ErrorIs(t, err, domain.ErrLoginRequired)
}

func TestDashboard_Compare(t *testing.T) {
	store := &memStore{token: "tok", user: &domain.UserProfile{ID: 7}}
	var gotPath string
	var gotBody map[string][]int64
	api, _ := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = decodeJSON(r, &gotBody)
		w.Write([]byte(`[{"plan":{"id":2,"name":"Silver PPO"},"hospitals":[{"id":3,"name":"Mercy General"}]}]`))
	}), store)
	d := NewDashboard(api, store, discardLogger())

	comparisons, err := d.Compare(context.Background(), []int64{2, 4})

	require.NoError(t, err)
	require.Len(t, comparisons, 1)
	assert.Equal(t, "/api/dashboard/compare/7", gotPath)
	assert.Equal(t, []int64{2, 4}, gotBody["planIds"])
	assert.Equal(t, "Silver PPO", comparisons[0].Plan.Name)
	require.Len(t, comparisons[0].Hospitals, 1)
}
