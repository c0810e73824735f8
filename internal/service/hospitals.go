// Package service contains the feature clients the CLI views call. Each
// is a thin typed wrapper over the shared HTTP client; the session
// machinery stays in the transport underneath.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"carectl/client"
	"carectl/internal/domain"
)

// defaultRegistryURL is the NPI organization registry used for provider
// search when looking beyond the backend's own hospital directory.
const defaultRegistryURL = "https://clinicaltables.nlm.nih.gov/api/npi_org/v3/search"

// Hospitals searches and reads the hospital directory.
type Hospitals struct {
	api         *client.Client
	registryURL string
	logger      *slog.Logger
}

// NewHospitals creates the hospital service. An empty registryURL falls
// back to the public NPI registry.
func NewHospitals(api *client.Client, registryURL string, logger *slog.Logger) *Hospitals {
	if registryURL == "" {
		registryURL = defaultRegistryURL
	}
	return &Hospitals{api: api, registryURL: registryURL, logger: logger}
}

// List fetches the backend's hospital directory.
func (h *Hospitals) List(ctx context.Context) ([]domain.Hospital, error) {
	var hospitals []domain.Hospital
	if err := h.api.Get(ctx, "/api/hospitals", &hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

// Get fetches one hospital by id.
func (h *Hospitals) Get(ctx context.Context, id int64) (*domain.Hospital, error) {
	var hospital domain.Hospital
	if err := h.api.Get(ctx, fmt.Sprintf("/api/hospitals/%d", id), &hospital); err != nil {
		return nil, err
	}
	return &hospital, nil
}

// ByState filters the directory by US state code.
func (h *Hospitals) ByState(ctx context.Context, state string) ([]domain.Hospital, error) {
	var hospitals []domain.Hospital
	if err := h.api.Get(ctx, "/api/hospitals/state/"+url.PathEscape(strings.ToUpper(state)), &hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

// Search queries the backend directory by name and location.
func (h *Hospitals) Search(ctx context.Context, name, location string) ([]domain.Hospital, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	if location != "" {
		q.Set("location", location)
	}
	var hospitals []domain.Hospital
	if err := h.api.Get(ctx, "/api/hospitals/search?"+q.Encode(), &hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

// RegistrySearch queries the public NPI organization registry. The
// registry is outside the backend's auth boundary, so the request opts
// out of bearer injection.
//
// The registry answers with a positional array:
// [count, [codes...], extras, [[name, address]...]].
func (h *Hospitals) RegistrySearch(ctx context.Context, terms string, limit int) ([]domain.Hospital, error) {
	if strings.TrimSpace(terms) == "" {
		terms = "hospital"
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := url.Values{}
	q.Set("terms", terms)
	q.Set("maxList", fmt.Sprint(limit))
	q.Set("df", "name.full,addr_practice.full")

	var payload []any
	err := h.api.GetURL(client.WithoutAuth(ctx), h.registryURL+"?"+q.Encode(), &payload)
	if err != nil {
		return nil, err
	}
	return parseRegistryPayload(payload), nil
}

func parseRegistryPayload(payload []any) []domain.Hospital {
	if len(payload) < 4 {
		return nil
	}
	rows, ok := payload[3].([]any)
	if !ok {
		return nil
	}

	hospitals := make([]domain.Hospital, 0, len(rows))
	for i, row := range rows {
		fields, ok := row.([]any)
		if !ok || len(fields) == 0 {
			continue
		}
		hospital := domain.Hospital{ID: int64(i + 1)}
		if name, ok := fields[0].(string); ok {
			hospital.Name = name
		}
		if len(fields) > 1 {
			if addr, ok := fields[1].(string); ok {
				hospital.Address = addr
			}
		}
		if hospital.Name == "" {
			continue
		}
		hospitals = append(hospitals, hospital)
	}
	return hospitals
}
