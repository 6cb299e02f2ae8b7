package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	credentialrepofake "github.com/jrsteele09/sanctyr/credential/repofake"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/jrsteele09/sanctyr/session"
	"github.com/jrsteele09/sanctyr/session/authfake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	ember   = session.Identity{ID: "user-1", Email: "ember@sanctyr.dev"}
	obsidia = session.Identity{ID: "user-2", Email: "obsidia@sanctyr.dev"}
)

type storeFixture struct {
	creds *credentialrepofake.FakeCredentialRepo
	auth  *authfake.FakeAuthenticator
	store *session.Store
}

func setupStore(t *testing.T, cached string) *storeFixture {
	t.Helper()

	creds := credentialrepofake.NewFakeCredentialRepoWith(cached)
	auth := authfake.NewFakeAuthenticator()
	store, err := session.NewStore(creds, auth, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	return &storeFixture{creds: creds, auth: auth, store: store}
}

func TestNewStore_RequiresDependencies(t *testing.T) {
	_, err := session.NewStore(nil, authfake.NewFakeAuthenticator())
	require.Error(t, err)

	_, err = session.NewStore(credentialrepofake.NewFakeCredentialRepo(), nil)
	require.Error(t, err)
}

func TestStore_StartsBootstrapping(t *testing.T) {
	f := setupStore(t, "")

	st := f.store.State()
	require.True(t, st.Bootstrapping)
	require.False(t, st.IsAuthenticated())
}

func TestBootstrap_ValidCachedCredential(t *testing.T) {
	f := setupStore(t, "cached-token")
	f.auth.Valid["cached-token"] = ember

	require.NoError(t, f.store.Bootstrap(context.Background()))

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.True(t, st.IsAuthenticated())
	require.Equal(t, ember, *st.Identity)
	require.Equal(t, "cached-token", f.creds.Value())

	_, refreshCalls, _ := f.auth.Calls()
	require.Zero(t, refreshCalls, "a valid credential needs no refresh round trip")
}

func TestBootstrap_ExpiredCredentialWithCookieSession(t *testing.T) {
	f := setupStore(t, "expired-token")
	f.auth.RefreshCredential = "fresh-token"
	f.auth.RefreshIdentity = ember

	require.NoError(t, f.store.Bootstrap(context.Background()))

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.True(t, st.IsAuthenticated())
	require.Equal(t, "fresh-token", f.creds.Value())

	validateCalls, refreshCalls, _ := f.auth.Calls()
	require.Equal(t, 1, validateCalls)
	require.Equal(t, 1, refreshCalls)
}

func TestBootstrap_NoCredentialWithCookieSession(t *testing.T) {
	f := setupStore(t, "")
	f.auth.RefreshCredential = "fresh-token"
	f.auth.RefreshIdentity = ember

	require.NoError(t, f.store.Bootstrap(context.Background()))

	require.True(t, f.store.IsAuthenticated())
	validateCalls, _, _ := f.auth.Calls()
	require.Zero(t, validateCalls, "nothing to validate without a cached credential")
}

func TestBootstrap_NoCredentialNoCookie(t *testing.T) {
	f := setupStore(t, "stale-token")

	require.NoError(t, f.store.Bootstrap(context.Background()))

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.False(t, st.IsAuthenticated())
	require.Empty(t, f.creds.Value(), "cache is cleared when both paths fail")
}

func TestBootstrap_RefreshWithoutIdentityIsFailure(t *testing.T) {
	f := setupStore(t, "")
	f.auth.RefreshCredential = "fresh-token"

	require.NoError(t, f.store.Bootstrap(context.Background()))
	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.creds.Value())
}

func TestBootstrap_CacheReadErrorFallsBackToCookie(t *testing.T) {
	f := setupStore(t, "")
	f.creds.GetErr = errors.New("disk unreadable")
	f.auth.RefreshCredential = "fresh-token"
	f.auth.RefreshIdentity = ember

	require.NoError(t, f.store.Bootstrap(context.Background()))
	require.True(t, f.store.IsAuthenticated())
	require.False(t, f.store.State().Bootstrapping)
}

func TestBootstrap_PanicStillSettles(t *testing.T) {
	f := setupStore(t, "cached-token")
	f.creds.PanicOnGet = true

	err := f.store.Bootstrap(context.Background())
	require.ErrorIs(t, err, apperrors.ErrBootstrapPanic)

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.False(t, st.IsAuthenticated())

	select {
	case <-f.store.Ready():
	default:
		t.Fatal("ready must be closed after a panicking bootstrap")
	}
}

func TestInit_RunsBootstrapOnce(t *testing.T) {
	f := setupStore(t, "")
	f.auth.RefreshCredential = "fresh-token"
	f.auth.RefreshIdentity = ember

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f.store.Init(ctx)
	f.store.Init(ctx)

	st, err := f.store.Wait(ctx)
	require.NoError(t, err)
	require.False(t, st.Bootstrapping)
	require.True(t, st.IsAuthenticated())

	_, refreshCalls, _ := f.auth.Calls()
	require.Equal(t, 1, refreshCalls)
}

func TestBootstrap_ManualLoginDuringBootstrapWins(t *testing.T) {
	f := setupStore(t, "")
	f.auth.RefreshCredential = "cookie-token"
	f.auth.RefreshIdentity = obsidia
	f.auth.Block = make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.store.Bootstrap(ctx) }()

	require.Eventually(t, func() bool {
		_, refreshCalls, _ := f.auth.Calls()
		return refreshCalls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, f.store.Login(ctx, "manual-token", ember))
	close(f.auth.Block)
	require.NoError(t, <-done)

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.Equal(t, ember, *st.Identity)
	require.Equal(t, "manual-token", f.creds.Value())
}

func TestWait_HonoursContext(t *testing.T) {
	f := setupStore(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := f.store.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, st.Bootstrapping)
}

func TestLogin(t *testing.T) {
	f := setupStore(t, "")

	require.NoError(t, f.store.Login(context.Background(), "login-token", ember))

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.True(t, st.IsAuthenticated())
	require.Equal(t, "login-token", f.creds.Value())

	validateCalls, refreshCalls, logoutCalls := f.auth.Calls()
	require.Zero(t, validateCalls+refreshCalls+logoutCalls, "login makes no network call")
}

func TestLogin_Rejects(t *testing.T) {
	f := setupStore(t, "")

	require.ErrorIs(t, f.store.Login(context.Background(), "", ember), apperrors.ErrInvalidCredential)
	require.ErrorIs(t, f.store.Login(context.Background(), "token", session.Identity{}), apperrors.ErrInvalidRequest)

	f.creds.SetErr = errors.New("read-only")
	require.Error(t, f.store.Login(context.Background(), "token", ember))
	require.False(t, f.store.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	f := setupStore(t, "")
	require.NoError(t, f.store.Login(context.Background(), "login-token", ember))

	f.auth.LogoutErr = errors.New("server down")
	f.store.Logout(context.Background())

	st := f.store.State()
	require.False(t, st.Bootstrapping)
	require.False(t, st.IsAuthenticated())
	require.Empty(t, f.creds.Value())

	_, _, logoutCalls := f.auth.Calls()
	require.Equal(t, 1, logoutCalls)
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupStore(t, "")
	require.NoError(t, f.store.Bootstrap(context.Background()))

	require.NotPanics(t, func() {
		f.store.Logout(context.Background())
		f.store.Logout(context.Background())
	})

	st := f.store.State()
	require.False(t, st.IsAuthenticated())
	require.False(t, st.Bootstrapping)
}

func TestLogout_CacheFailureStillSignsOut(t *testing.T) {
	f := setupStore(t, "")
	require.NoError(t, f.store.Login(context.Background(), "login-token", ember))
	f.creds.RemoveErr = errors.New("locked")

	f.store.Logout(context.Background())
	require.False(t, f.store.IsAuthenticated())
}

func TestExpire(t *testing.T) {
	f := setupStore(t, "")
	require.NoError(t, f.store.Login(context.Background(), "login-token", ember))

	f.store.Expire(errors.New("refresh rejected"))

	st := f.store.State()
	require.False(t, st.IsAuthenticated())
	require.Error(t, st.Expired)
	require.Empty(t, f.creds.Value())
	require.Equal(t, session.RouteSessionExpired, session.RequireAuthenticated(st).To)

	require.NoError(t, f.store.Login(context.Background(), "again", ember))
	require.NoError(t, f.store.State().Expired, "a new login clears the expiry reason")
}

func TestAdoptCallback(t *testing.T) {
	t.Run("token present", func(t *testing.T) {
		f := setupStore(t, "")

		next, err := f.store.AdoptCallback(context.Background(), "http://localhost:5173/auth/callback?token=social-token")
		require.NoError(t, err)
		require.Equal(t, session.RouteDashboard, next)

		st := f.store.State()
		require.True(t, st.IsAuthenticated())
		require.True(t, st.Hydrating())
		require.Equal(t, "social-token", f.creds.Value())
	})

	t.Run("token missing", func(t *testing.T) {
		f := setupStore(t, "")

		next, err := f.store.AdoptCallback(context.Background(), "http://localhost:5173/auth/callback")
		require.ErrorIs(t, err, apperrors.ErrMissingCallbackToken)
		require.Equal(t, "/login?error=oauth_failed", next)
		require.False(t, f.store.IsAuthenticated())
	})
}

func TestHydrate(t *testing.T) {
	f := setupStore(t, "")

	require.False(t, f.store.Hydrate(ember), "nothing to hydrate when signed out")

	require.NoError(t, f.store.Login(context.Background(), "social-token", session.PlaceholderIdentity()))
	require.False(t, f.store.Hydrate(session.PlaceholderIdentity()))
	require.True(t, f.store.Hydrate(ember))

	st := f.store.State()
	require.False(t, st.Hydrating())
	require.Equal(t, ember, *st.Identity)

	require.False(t, f.store.Hydrate(obsidia), "a real identity is never replaced")
}

func TestSubscribe(t *testing.T) {
	f := setupStore(t, "")

	var seen []session.State
	cancel := f.store.Subscribe(func(st session.State) { seen = append(seen, st) })

	require.NoError(t, f.store.Login(context.Background(), "login-token", ember))
	require.Len(t, seen, 1)
	require.True(t, seen[0].IsAuthenticated())

	cancel()
	f.store.Logout(context.Background())
	require.Len(t, seen, 1)
}

func TestState_IsSnapshot(t *testing.T) {
	f := setupStore(t, "")
	require.NoError(t, f.store.Login(context.Background(), "login-token", ember))

	st := f.store.State()
	st.Identity.Email = "mutated"

	id, ok := f.store.Identity()
	require.True(t, ok)
	require.Equal(t, ember.Email, id.Email)
}
