package service

import (
	"context"
	"fmt"
	"net/url"

	"carectl/client"
	"carectl/internal/domain"
)

// Insurance browses the insurance plan directory.
type Insurance struct {
	api *client.Client
}

// NewInsurance creates the insurance service.
func NewInsurance(api *client.Client) *Insurance {
	return &Insurance{api: api}
}

// List fetches all browsable plans.
func (i *Insurance) List(ctx context.Context) ([]domain.InsurancePlan, error) {
	var plans []domain.InsurancePlan
	if err := i.api.Get(ctx, "/api/insurance", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Get fetches one plan by id.
func (i *Insurance) Get(ctx context.Context, id int64) (*domain.InsurancePlan, error) {
	var plan domain.InsurancePlan
	if err := i.api.Get(ctx, fmt.Sprintf("/api/insurance/%d", id), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ByPolicyNumber resolves the plan behind a policy number.
func (i *Insurance) ByPolicyNumber(ctx context.Context, policyNumber string) (*domain.InsurancePlan, error) {
	var plan domain.InsurancePlan
	if err := i.api.Get(ctx, "/api/insurance/policy/"+url.PathEscape(policyNumber), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
