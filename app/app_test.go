package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/app"
	"github.com/jrsteele09/sanctyr/credential/memstore"
	"github.com/jrsteele09/sanctyr/internal/config"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/jrsteele09/sanctyr/server"
	"github.com/jrsteele09/sanctyr/session"
	tokenjwt "github.com/jrsteele09/sanctyr/token/jwt"
	refreshrepofake "github.com/jrsteele09/sanctyr/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/sanctyr/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	demoEmail    = "ember@sanctyr.dev"
	demoPassword = "Emb3rFlame!"
)

type countingTransport struct {
	requests atomic.Int64
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

// newApp starts a dev server and a client app pointed at it.
func newApp(t *testing.T, opts ...app.Option) (*app.App, *prometheus.Registry) {
	t.Helper()

	cfg := config.New()
	cfg.Viper().Set("env", "TEST")
	cfg.Viper().Set("demo.password", demoPassword)
	cfg.Viper().Set("security.rate_limit", false)

	srv, err := server.New(cfg, server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, server.WithLogger(zerolog.Nop()), server.WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	cfg.Viper().Set("api_url", ts.URL)

	reg := prometheus.NewRegistry()
	a, err := app.New(cfg, append([]app.Option{
		app.WithLogger(zerolog.Nop()),
		app.WithCredentialStore(memstore.New()),
		app.WithRegisterer(reg),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	a.Init(context.Background())
	return a, reg
}

func TestApp_SignedOut(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()

	d, err := a.Guard(ctx, session.RouteDashboard)
	require.NoError(t, err)
	require.Equal(t, session.Redirect, d.Action)
	require.Equal(t, session.RouteLogin, d.To)

	_, err = a.Dashboard(ctx)
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	profile, err := a.PublicProfile(ctx, "obsidia")
	require.NoError(t, err)
	require.Equal(t, "obsidia", profile.Identity.Username)

	_, err = a.Login(ctx, demoEmail, "Wr0ngPassword")
	require.Error(t, err)
	require.False(t, a.Session().IsAuthenticated())
}

func TestApp_MemberJourney(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()

	identity, err := a.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)
	require.Equal(t, demoEmail, identity.Email)

	d, err := a.Guard(ctx, session.RouteLogin)
	require.NoError(t, err)
	require.Equal(t, session.Redirect, d.Action)
	require.Equal(t, session.RouteDashboard, d.To)

	ov, err := a.Overview(ctx, "obsidia")
	require.NoError(t, err)
	require.Equal(t, "ember", ov.Dashboard.Identity.Username)
	require.Equal(t, "obsidia", ov.Profile.Identity.Username)

	cu := api.CustomizationUpdateFrom(ov.Dashboard.Identity)
	cu.SelectedTheme = "celestial"
	cu.SelectedSpecialRole = "Lorekeeper"
	require.NoError(t, a.SaveCustomization(ctx, cu))

	pu := api.ProfileUpdateFrom(ov.Dashboard.Identity)
	pu.DisplayName = "Ember the Bright"
	require.NoError(t, a.SaveProfile(ctx, pu))

	data, err := a.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, "celestial", data.Identity.SelectedTheme)
	require.Equal(t, "Lorekeeper", data.Identity.SelectedSpecialRole)
	require.Equal(t, "Ember the Bright", data.Identity.DisplayName)

	cu.SelectedTheme = "neon"
	err = a.SaveCustomization(ctx, cu)
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.True(t, a.Session().IsAuthenticated(), "a rejected save keeps the session")

	a.Logout(ctx)
	require.False(t, a.Session().IsAuthenticated())
	_, err = a.Dashboard(ctx)
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestApp_ExpiredCredentialIsRefreshed(t *testing.T) {
	a, reg := newApp(t)
	ctx := context.Background()

	_, err := a.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)

	// an hour on, the access token has expired but the session cookie has not
	later := time.Now().Add(time.Hour)
	tokenjwt.NowTimeFunc = func() time.Time { return later }
	t.Cleanup(func() { tokenjwt.NowTimeFunc = time.Now })

	data, err := a.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, demoEmail, data.Email)
	require.Equal(t, 1.0, counterValue(t, reg, "sanctyr_gateway_refresh_total", "success"))
}

func TestApp_SessionExpiresWhenRefreshFails(t *testing.T) {
	a, reg := newApp(t)
	ctx := context.Background()

	_, err := a.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	tokenjwt.NowTimeFunc = func() time.Time { return later }
	t.Cleanup(func() { tokenjwt.NowTimeFunc = time.Now })

	// the server session is gone, so the refresh is refused
	require.NoError(t, a.API().Logout(ctx))

	_, err = a.Dashboard(ctx)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.False(t, a.Session().IsAuthenticated())
	require.Equal(t, 1.0, counterValue(t, reg, "sanctyr_gateway_refresh_total", "failure"))

	d, err := a.Guard(ctx, session.RouteDashboard)
	require.NoError(t, err)
	require.Equal(t, session.RouteSessionExpired, d.To)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestApp_WithTransport(t *testing.T) {
	rt := &countingTransport{}
	a, _ := newApp(t, app.WithTransport(rt))
	ctx := context.Background()

	_, err := a.Session().Wait(ctx)
	require.NoError(t, err)
	_, err = a.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)
	_, err = a.Dashboard(ctx)
	require.NoError(t, err)

	// bootstrap refresh, login, dashboard
	require.Equal(t, int64(3), rt.requests.Load())
}
