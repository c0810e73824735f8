package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carectl/internal/domain"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		want        Decision
		wantSpinner bool
		wantReturn  string
	}{
		{
			name: "cached credentials admit immediately",
			in:   Input{State: domain.StateUnauthenticated, Loading: true, HasLocalCredentials: true},
			want: Admit,
		},
		{
			name: "pending check without spinner at first",
			in:   Input{Loading: true, Elapsed: 100 * time.Millisecond},
			want: Pending,
		},
		{
			name:        "pending check shows spinner after the debounce",
			in:          Input{Loading: true, Elapsed: SpinnerDelay},
			want:        Pending,
			wantSpinner: true,
		},
		{
			name:       "finished check without credentials denies with return location",
			in:         Input{State: domain.StateUnauthenticated, Target: "appointments"},
			want:       Deny,
			wantReturn: "appointments",
		},
		{
			name: "authenticated admits",
			in:   Input{State: domain.StateAuthenticated},
			want: Admit,
		},
		{
			name: "degraded still admits",
			in:   Input{State: domain.StateDegraded},
			want: Admit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(tt.in)
			assert.Equal(t, tt.want, out.Decision)
			assert.Equal(t, tt.wantSpinner, out.ShowSpinner)
			assert.Equal(t, tt.wantReturn, out.ReturnTo)
		})
	}
}

func TestShouldKickRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, ShouldKickRefresh(time.Time{}, false, now), "no recorded refresh is always stale")
	assert.False(t, ShouldKickRefresh(now.Add(-10*time.Second), true, now))
	assert.True(t, ShouldKickRefresh(now.Add(-31*time.Second), true, now))
}
