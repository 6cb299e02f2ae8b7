// Package app wires the credential cache, API client, request gateway and
// session store into the Sanctyr client application.
package app

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/credential"
	"github.com/jrsteele09/sanctyr/credential/filestore"
	"github.com/jrsteele09/sanctyr/credential/memstore"
	"github.com/jrsteele09/sanctyr/credential/redisstore"
	"github.com/jrsteele09/sanctyr/gateway"
	"github.com/jrsteele09/sanctyr/internal/config"
	"github.com/jrsteele09/sanctyr/session"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// App is one signed-in (or signed-out) client of the Sanctyr API.
type App struct {
	logger  zerolog.Logger
	creds   credential.Store
	client  *api.Client
	gateway *gateway.Transport
	store   *session.Store
	closers []io.Closer
}

type options struct {
	logger     zerolog.Logger
	creds      credential.Store
	registerer prometheus.Registerer
	transport  http.RoundTripper
}

// Option defines a function type to modify how the App is built.
type Option func(*options)

// WithLogger sets the logger (defaults to the global zerolog logger)
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCredentialStore overrides the store selected by configuration.
func WithCredentialStore(creds credential.Store) Option {
	return func(o *options) {
		o.creds = creds
	}
}

// WithRegisterer registers the gateway metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithTransport replaces http.DefaultTransport for every API call.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// New builds the application from cfg. Call Init to start the session bootstrap.
func New(cfg config.Config, opts ...Option) (_ *App, err error) {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{logger: o.logger}
	defer func() {
		if err == nil {
			return
		}
		if cerr := a.Close(); cerr != nil {
			a.logger.Warn().Err(cerr).Msg("app: closing credential store after failed start")
		}
	}()

	apiURL, err := url.Parse(cfg.GetAPIURL())
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] api url")
	}
	authURL, err := url.Parse(cfg.GetAuthURL())
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] auth url")
	}

	apiOpts := []api.Option{
		api.WithLogger(o.logger),
		api.WithAuthURL(authURL),
		api.WithTimeout(cfg.GetRequestTimeout()),
	}
	if o.transport != nil {
		apiOpts = append(apiOpts, api.WithBaseTransport(o.transport))
	}

	a.creds = o.creds
	if a.creds == nil {
		creds, jar, err := a.credentialStore(cfg, apiURL)
		if err != nil {
			return nil, err
		}
		a.creds = creds
		if jar != nil {
			apiOpts = append(apiOpts, api.WithCookieJar(jar))
		}
	}

	a.client, err = api.New(cfg.GetAPIURL(), apiOpts...)
	if err != nil {
		return nil, err
	}

	gwOpts := []gateway.Option{
		gateway.WithLogger(o.logger),
		gateway.WithRefreshPath(a.client.BaseURL().JoinPath(api.PathRefreshToken).Path),
		gateway.WithRefreshTimeout(cfg.GetRefreshTimeout()),
		gateway.WithMetrics(gateway.NewMetrics(o.registerer)),
		gateway.OnSessionExpired(func(reason error) {
			a.store.Expire(reason)
		}),
	}
	if rps := cfg.GetRequestsPerSecond(); rps > 0 {
		gwOpts = append(gwOpts, gateway.WithRateLimiter(rate.NewLimiter(rate.Limit(rps), 1)))
	}

	a.gateway, err = gateway.New(a.client.BaseTransport(), a.creds, a.client, gwOpts...)
	if err != nil {
		return nil, err
	}
	a.client.UseGateway(a.gateway)

	a.store, err = session.NewStore(a.creds, a.client, session.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return a, nil
}

var openRedisStore = redisstore.NewWithURL

func (a *App) credentialStore(cfg config.ClientConfig, apiURL *url.URL) (credential.Store, http.CookieJar, error) {
	switch cfg.GetCredentialStore() {
	case config.CredentialStoreMemory:
		return memstore.New(), nil, nil
	case config.CredentialStoreRedis:
		rs, err := openRedisStore(cfg.GetCredentialRedisURL(), cfg.GetCredentialRedisPrefix(), cfg.GetCredentialTTL())
		if err != nil {
			return nil, nil, errors.Wrap(err, "[app.New] redis credential store")
		}
		a.closers = append(a.closers, rs)
		return rs, nil, nil
	case config.CredentialStoreFile, "":
		fs := filestore.New(cfg.GetCredentialPath())
		jar, err := fs.CookieJar(apiURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "[app.New] cookie jar")
		}
		return fs, jar, nil
	default:
		return nil, nil, errors.Errorf("[app.New] unknown credential store %q", cfg.GetCredentialStore())
	}
}

// Close releases the credential store connection, if any.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return errors.Errorf("[Close] %v", errs)
	}
	return nil
}

func (a *App) Session() *session.Store {
	return a.store
}

func (a *App) API() *api.Client {
	return a.client
}

func (a *App) Gateway() *gateway.Transport {
	return a.gateway
}

// Init starts the session bootstrap in the background.
func (a *App) Init(ctx context.Context) {
	a.store.Init(ctx)
}

// Guard waits for the bootstrap to settle and then decides a navigation to route.
func (a *App) Guard(ctx context.Context, route string) (session.Decision, error) {
	st, err := a.store.Wait(ctx)
	if err != nil {
		return session.Decision{}, errors.Wrap(err, "[Guard] waiting for session")
	}
	return session.Resolve(route, st), nil
}
