package app

import (
	"context"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/session"
	"github.com/pkg/errors"
)

// Login signs in with email and password and adopts the returned credential.
func (a *App) Login(ctx context.Context, email, password string) (session.Identity, error) {
	ar, err := a.client.Login(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}
	identity := ar.SessionIdentity()
	if err := a.store.Login(ctx, ar.AccessToken, identity); err != nil {
		return session.Identity{}, errors.Wrap(err, "[Login]")
	}
	return identity, nil
}

// Register creates an account and signs it in.
func (a *App) Register(ctx context.Context, req api.RegisterRequest) (session.Identity, error) {
	ar, err := a.client.Register(ctx, req)
	if err != nil {
		return session.Identity{}, err
	}
	identity := ar.SessionIdentity()
	if err := a.store.Login(ctx, ar.AccessToken, identity); err != nil {
		return session.Identity{}, errors.Wrap(err, "[Register]")
	}
	return identity, nil
}

// Logout always leaves the client signed out.
func (a *App) Logout(ctx context.Context) {
	a.store.Logout(ctx)
}

// Callback completes a social login from the provider's redirect URL and
// returns the route to show next.
func (a *App) Callback(ctx context.Context, callbackURL string) (string, error) {
	return a.store.AdoptCallback(ctx, callbackURL)
}

// DiscordLoginURL is where a browser starts the Discord sign in.
func (a *App) DiscordLoginURL() string {
	return a.client.DiscordLoginURL()
}
