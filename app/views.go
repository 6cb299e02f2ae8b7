package app

import (
	"context"

	"github.com/jrsteele09/sanctyr/api"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/jrsteele09/sanctyr/session"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Overview is a member's dashboard next to someone's public profile.
type Overview struct {
	Dashboard api.DashboardData
	Profile   api.PublicProfile
}

// requireMember guards a member-only route and turns a redirect into an error.
func (a *App) requireMember(ctx context.Context, route string) error {
	d, err := a.Guard(ctx, route)
	if err != nil {
		return err
	}
	switch {
	case d.Action == session.Allow:
		return nil
	case d.To == session.RouteSessionExpired:
		return apperrors.ErrSessionExpired
	default:
		return apperrors.ErrNotAuthenticated
	}
}

// Dashboard loads the member's dashboard. A placeholder identity left by a
// social login is replaced with the identity the dashboard reports.
func (a *App) Dashboard(ctx context.Context) (api.DashboardData, error) {
	if err := a.requireMember(ctx, session.RouteDashboard); err != nil {
		return api.DashboardData{}, err
	}

	data, err := a.client.Dashboard(ctx)
	if err != nil {
		return api.DashboardData{}, a.sessionError(err)
	}
	if a.store.Hydrate(data.SessionIdentity()) {
		a.logger.Debug().Str("user", data.Email).Msg("app: identity hydrated from dashboard")
	}
	return data, nil
}

// Overview loads the dashboard and the public profile of username concurrently.
func (a *App) Overview(ctx context.Context, username string) (Overview, error) {
	var ov Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := a.Dashboard(gctx)
		ov.Dashboard = data
		return err
	})
	g.Go(func() error {
		profile, err := a.client.PublicProfile(gctx, username)
		ov.Profile = profile
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// SaveProfile updates the profile settings. Failures are returned for the
// caller to show inline; the session is only affected if it expired.
func (a *App) SaveProfile(ctx context.Context, update api.ProfileUpdate) error {
	if err := a.requireMember(ctx, session.RouteSettings); err != nil {
		return err
	}
	if err := a.client.UpdateProfile(ctx, update); err != nil {
		return a.sessionError(err)
	}
	return nil
}

// SaveCustomization updates roles, theme, bio and socials.
func (a *App) SaveCustomization(ctx context.Context, update api.CustomizationUpdate) error {
	if err := a.requireMember(ctx, session.RouteCustomization); err != nil {
		return err
	}
	if err := a.client.UpdateCustomization(ctx, update); err != nil {
		return a.sessionError(err)
	}
	return nil
}

// PublicProfile needs no session.
func (a *App) PublicProfile(ctx context.Context, username string) (api.PublicProfile, error) {
	return a.client.PublicProfile(ctx, username)
}

// sessionError reports a gateway expiry as ErrSessionExpired.
func (a *App) sessionError(err error) error {
	if errors.Is(err, apperrors.ErrSessionExpired) {
		return apperrors.ErrSessionExpired
	}
	return err
}
