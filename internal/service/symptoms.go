package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"carectl/client"
	"carectl/internal/domain"
)

// symptomConditions maps recognizable symptom phrases to conditions, in
// the order the advice should mention them.
var symptomConditions = []struct {
	symptom    string
	conditions []string
}{
	{"headache", []string{"migraine", "tension headache", "sinus issue"}},
	{"fever", []string{"common cold", "flu", "infection"}},
	{"cough", []string{"common cold", "bronchitis", "allergies"}},
	{"chest pain", []string{"cardiac issue", "heartburn", "muscle strain"}},
	{"fatigue", []string{"anemia", "sleep disorder", "depression"}},
	{"sore throat", []string{"strep throat", "common cold", "allergies"}},
	{"dizziness", []string{"vertigo", "low blood pressure", "dehydration"}},
	{"shortness of breath", []string{"anxiety", "asthma", "heart condition"}},
	{"nausea", []string{"food poisoning", "migraine", "pregnancy"}},
}

var conditionAdvice = map[string]string{
	"common cold": "Rest, stay hydrated, and consider over-the-counter medications for symptom relief.",
	"flu":         "Rest, stay hydrated, and consult a doctor if symptoms are severe.",
	"migraine":    "Rest in a dark, quiet room and consider over-the-counter pain relievers.",
	"allergies":   "Avoid allergens if known and consider antihistamines.",
	"infection":   "Consult a doctor as antibiotics may be needed.",
	"dehydration": "Increase fluid intake and rest. Seek medical help if severe.",
}

const adviceDisclaimer = " Note: This is not a substitute for professional medical advice."

// Symptoms runs the symptom checker: the backend when reachable, a local
// assessment with the same rules when it is not. Degrading to the local
// table keeps the feature alive offline, consistent with how the session
// layer prefers cached data over hard failure.
type Symptoms struct {
	api    *client.Client
	logger *slog.Logger
}

// NewSymptoms creates the symptom checker service.
func NewSymptoms(api *client.Client, logger *slog.Logger) *Symptoms {
	return &Symptoms{api: api, logger: logger}
}

// Check assesses a free-text symptom description.
func (s *Symptoms) Check(ctx context.Context, symptoms string) (*domain.SymptomReport, error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, errors.New("please describe your symptoms")
	}

	var report domain.SymptomReport
	err := s.api.Post(ctx, "/api/symptom-checker", map[string]string{"symptoms": symptoms}, &report)
	if err == nil {
		report.Source = "server"
		return &report, nil
	}
	if domain.StatusOf(err) != 0 {
		// The backend answered; its rejection stands.
		return nil, err
	}

	s.logger.Warn("symptom checker unreachable, assessing locally", "error", err)
	local := CheckLocally(symptoms)
	local.Source = "local"
	return local, nil
}

// CheckLocally assesses symptoms against the built-in rules, mirroring
// the backend's own table.
func CheckLocally(symptoms string) *domain.SymptomReport {
	normalized := strings.ToLower(strings.TrimSpace(symptoms))

	var conditions []string
	seen := map[string]bool{}
	for _, entry := range symptomConditions {
		matched, err := regexp.MatchString(`\b`+regexp.QuoteMeta(entry.symptom)+`\b`, normalized)
		if err != nil || !matched {
			continue
		}
		for _, c := range entry.conditions {
			if !seen[c] {
				seen[c] = true
				conditions = append(conditions, c)
			}
		}
	}

	var advice strings.Builder
	if len(conditions) == 0 {
		advice.WriteString("Based on the information provided, I couldn't identify specific conditions. ")
		advice.WriteString("Please consult a healthcare professional for proper diagnosis.")
	} else {
		advice.WriteString("Based on your symptoms, you might be experiencing: ")
		advice.WriteString(strings.Join(conditions, ", "))
		advice.WriteString(". ")
		if tip, ok := conditionAdvice[conditions[0]]; ok {
			advice.WriteString(tip)
		} else {
			advice.WriteString("Consider consulting a healthcare professional for proper diagnosis and treatment.")
		}
	}
	advice.WriteString(adviceDisclaimer)

	return &domain.SymptomReport{
		Conditions: conditions,
		Advice:     advice.String(),
	}
}
