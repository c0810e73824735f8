package service

import (
	"context"
	"fmt"
	"net/url"

	"carectl/client"
	"carectl/internal/domain"
)

// Treatments reads the treatment catalog and its plain-language
// explanations.
type Treatments struct {
	api *client.Client
}

// NewTreatments creates the treatment service.
func NewTreatments(api *client.Client) *Treatments {
	return &Treatments{api: api}
}

// Get fetches one treatment by id.
func (t *Treatments) Get(ctx context.Context, id int64) (*domain.Treatment, error) {
	var treatment domain.Treatment
	if err := t.api.Get(ctx, fmt.Sprintf("/api/treatment/%d", id), &treatment); err != nil {
		return nil, err
	}
	return &treatment, nil
}

// ByHospital lists the treatments a hospital offers.
func (t *Treatments) ByHospital(ctx context.Context, hospitalID int64) ([]domain.Treatment, error) {
	var treatments []domain.Treatment
	if err := t.api.Get(ctx, fmt.Sprintf("/api/treatment/hospital/%d", hospitalID), &treatments); err != nil {
		return nil, err
	}
	return treatments, nil
}

// Explain fetches the plain-language description of a treatment by name.
func (t *Treatments) Explain(ctx context.Context, name string) (*domain.TreatmentExplanation, error) {
	var explanation domain.TreatmentExplanation
	if err := t.api.Get(ctx, "/api/treatment/explain/"+url.PathEscape(name), &explanation); err != nil {
		return nil, err
	}
	if explanation.Name == "" {
		explanation.Name = name
	}
	return &explanation, nil
}
