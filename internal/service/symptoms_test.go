package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carectl/client"
	"carectl/internal/domain"
)

func TestCheckLocally(t *testing.T) {
	t.Run("single symptom", func(t *testing.T) {
		report := CheckLocally("I have a headache")

		assert.Equal(t, []string{"migraine", "tension headache", "sinus issue"}, report.Conditions)
		assert.Contains(t, report.Advice, "you might be experiencing: migraine, tension headache, sinus issue")
		assert.Contains(t, report.Advice, "Rest in a dark, quiet room")
		assert.True(t, strings.HasSuffix(report.Advice, "not a substitute for professional medical advice."))
	})

	t.Run("multiple symptoms deduplicate conditions", func(t *testing.T) {
		// Both cough and sore throat suggest "common cold" and "allergies";
		// each condition appears once.
		report := CheckLocally("a bad cough and a sore throat")

		assert.Equal(t, []string{"common cold", "bronchitis", "allergies", "strep throat"}, report.Conditions)
	})

	t.Run("word boundaries prevent partial matches", func(t *testing.T) {
		report := CheckLocally("I feel feverish")
		assert.Empty(t, report.Conditions)
	})

	t.Run("multi-word symptom", func(t *testing.T) {
		report := CheckLocally("sudden chest pain at night")
		assert.Equal(t, []string{"cardiac issue", "heartburn", "muscle strain"}, report.Conditions)
	})

	t.Run("no match gives generic advice", func(t *testing.T) {
		report := CheckLocally("itchy elbow")

		assert.Empty(t, report.Conditions)
		assert.Contains(t, report.Advice, "couldn't identify specific conditions")
		assert.Contains(t, report.Advice, "not a substitute")
	})

	t.Run("first condition without advice falls back", func(t *testing.T) {
		// "nausea" leads with "food poisoning", which has no advice entry.
		report := CheckLocally("nausea")

		assert.Equal(t, "food poisoning", report.Conditions[0])
		assert.Contains(t, report.Advice, "Consider consulting a healthcare professional")
	})
}

func TestSymptoms_Check_ServerAnswer(t *testing.T) {
	api, _ := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/symptom-checker", r.URL.Path)
		w.Write([]byte(`{"possibleConditions":["flu"],"advice":"Rest."}`))
	}), &memStore{token: "tok"})
	s := NewSymptoms(api, discardLogger())

	report, err := s.Check(context.Background(), "fever")

	require.NoError(t, err)
	assert.Equal(t, "server", report.Source)
	assert.Equal(t, []string{"flu"}, report.Conditions)
}

func TestSymptoms_Check_FallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable backend

	api := client.New(client.Config{
		BaseURL: srv.URL,
		Timeout: time.Second,
		Store:   &memStore{},
		Logger:  discardLogger(),
	})
	s := NewSymptoms(api, discardLogger())

	report, err := s.Check(context.Background(), "headache and fever")

	require.NoError(t, err)
	assert.Equal(t, "local", report.Source)
	assert.Contains(t, report.Conditions, "migraine")
	assert.Contains(t, report.Conditions, "flu")
}

func TestSymptoms_Check_ServerRejectionStands(t *testing.T) {
	api, _ := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"symptoms required"}`))
	}), &memStore{token: "tok"})
	s := NewSymptoms(api, discardLogger())

	_, err := s.Check(context.Background(), "fever")

	require.Error(t, err)
	assert.Equal(t, 400, domain.StatusOf(err), "an answering backend must not be second-guessed locally")
}

func TestSymptoms_Check_EmptyInput(t *testing.T) {
	api, _ := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}), &memStore{})
	s := NewSymptoms(api, discardLogger())

	_, err := s.Check(context.Background(), "   ")
	assert.Error(t, err)
}
