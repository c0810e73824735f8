package service

import (
	"context"
	"fmt"
	"log/slog"

	"carectl/client"
	"carectl/internal/domain"
)

// sessionUpdater is the slice of the session manager the profile service
// needs to keep the cached snapshot in sync with server-side updates.
type sessionUpdater interface {
	UpdateUser(updated domain.UserProfile)
}

// Profile updates the authenticated user's profile and insurance
// assignment, mirroring every accepted change into the session cache so
// the rest of the app sees it without a refetch.
type Profile struct {
	api     *client.Client
	store   domain.SessionStore
	session sessionUpdater
	logger  *slog.Logger
}

// NewProfile creates the profile service.
func NewProfile(api *client.Client, store domain.SessionStore, session sessionUpdater, logger *slog.Logger) *Profile {
	return &Profile{api: api, store: store, session: session, logger: logger}
}

// Update sends changed profile fields and merges the server's answer into
// the cached snapshot.
func (p *Profile) Update(ctx context.Context, changes domain.UserProfile) (*domain.UserProfile, error) {
	var updated domain.UserProfile
	if err := p.api.Put(ctx, "/api/users/profile", changes, &updated); err != nil {
		return nil, err
	}
	p.session.UpdateUser(updated)
	return &updated, nil
}

// AssignInsurance attaches an insurance plan to the user's account.
func (p *Profile) AssignInsurance(ctx context.Context, planID int64) (*domain.UserProfile, error) {
	user, ok := p.store.User()
	if !ok {
		return nil, domain.ErrLoginRequired
	}

	var updated domain.UserProfile
	path := fmt.Sprintf("/api/users/%d/assign-insurance", user.ID)
	if err := p.api.Post(ctx, path, map[string]int64{"planId": planID}, &updated); err != nil {
		return nil, err
	}
	p.session.UpdateUser(updated)
	p.logger.Info("insurance plan assigned", "plan_id", planID)
	return &updated, nil
}
