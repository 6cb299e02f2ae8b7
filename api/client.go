// Package api is the client of the Sanctyr HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/sanctyr/gateway"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/jrsteele09/sanctyr/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

var (
	_ session.Authenticator = (*Client)(nil)
	_ gateway.Refresher     = (*Client)(nil)
)

const DefaultTimeout = 30 * time.Second

// Client talks to the API with two http.Clients sharing one cookie jar. The
// raw client is used for the session endpoints, whose 401s mean "signed out".
// The authed client goes through the request gateway once one is attached.
type Client struct {
	baseURL *url.URL
	authURL *url.URL
	jar     http.CookieJar
	base    http.RoundTripper
	timeout time.Duration
	logger  zerolog.Logger

	raw    *http.Client
	authed *http.Client
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithLogger sets the logger (defaults to the global zerolog logger)
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAuthURL sets the base of the social provider entry points. Defaults to
// the API base URL.
func WithAuthURL(u *url.URL) Option {
	return func(c *Client) {
		c.authURL = u
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithBaseTransport replaces http.DefaultTransport underneath both clients.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// WithCookieJar replaces the client's own jar, so cookies can outlive it.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[api.New] parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[api.New] base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		authURL: u,
		base:    http.DefaultTransport,
		timeout: DefaultTimeout,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "[api.New] cookie jar")
		}
		c.jar = jar
	}

	c.raw = &http.Client{Transport: c.base, Jar: c.jar, Timeout: c.timeout}
	c.authed = &http.Client{Transport: c.base, Jar: c.jar, Timeout: c.timeout}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// BaseTransport is the transport underneath both clients, for the gateway to wrap.
func (c *Client) BaseTransport() http.RoundTripper {
	return c.base
}

// UseGateway routes authenticated calls through rt.
func (c *Client) UseGateway(rt http.RoundTripper) {
	c.authed = &http.Client{Transport: rt, Jar: c.jar, Timeout: c.timeout}
}

// ValidateCredential asks the API who cred belongs to.
func (c *Client) ValidateCredential(ctx context.Context, cred string) (session.Identity, error) {
	var data DashboardData
	err := c.do(ctx, c.raw, http.MethodGet, PathMe, nil, &data, func(req *http.Request) {
		(&oauth2.Token{AccessToken: cred, TokenType: "Bearer"}).SetAuthHeader(req)
	})
	if err != nil {
		return session.Identity{}, errors.Wrap(err, "[ValidateCredential]")
	}
	identity := data.SessionIdentity()
	if !identity.Valid() {
		return session.Identity{}, errors.Wrap(apperrors.ErrInvalidCredential, "[ValidateCredential] response without identity")
	}
	return identity, nil
}

// RefreshSession exchanges the session cookie for a new credential.
func (c *Client) RefreshSession(ctx context.Context) (string, session.Identity, error) {
	var ar AuthResponse
	if err := c.do(ctx, c.raw, http.MethodPost, PathRefreshToken, struct{}{}, &ar, nil); err != nil {
		return "", session.Identity{}, errors.Wrap(err, "[RefreshSession]")
	}
	if ar.AccessToken == "" {
		return "", session.Identity{}, errors.Wrap(apperrors.ErrNoCredential, "[RefreshSession] response without accessToken")
	}
	return ar.AccessToken, ar.SessionIdentity(), nil
}

// Refresh is RefreshSession for the request gateway, which only needs the credential.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	cred, _, err := c.RefreshSession(ctx)
	return cred, err
}

// Logout ends the server-side session and clears the cookie.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, c.raw, http.MethodPost, PathLogout, struct{}{}, nil, nil); err != nil {
		return errors.Wrap(err, "[Logout]")
	}
	return nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var ar AuthResponse
	if err := c.do(ctx, c.raw, http.MethodPost, PathLogin, LoginRequest{Email: email, Password: password}, &ar, nil); err != nil {
		return AuthResponse{}, errors.Wrap(err, "[Login]")
	}
	return ar, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var ar AuthResponse
	if err := c.do(ctx, c.raw, http.MethodPost, PathRegister, req, &ar, nil); err != nil {
		return AuthResponse{}, errors.Wrap(err, "[Register]")
	}
	return ar, nil
}

// Dashboard fetches the signed-in member's dashboard.
func (c *Client) Dashboard(ctx context.Context) (DashboardData, error) {
	var data DashboardData
	if err := c.do(ctx, c.authed, http.MethodGet, PathMe, nil, &data, nil); err != nil {
		return DashboardData{}, errors.Wrap(err, "[Dashboard]")
	}
	return data, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if err := c.do(ctx, c.authed, http.MethodPut, PathMe, update, nil, nil); err != nil {
		return errors.Wrap(err, "[UpdateProfile]")
	}
	return nil
}

func (c *Client) UpdateCustomization(ctx context.Context, update CustomizationUpdate) error {
	if err := c.do(ctx, c.authed, http.MethodPut, PathMe, update, nil, nil); err != nil {
		return errors.Wrap(err, "[UpdateCustomization]")
	}
	return nil
}

// PublicProfile fetches anyone's public profile. No credential is sent.
func (c *Client) PublicProfile(ctx context.Context, username string) (PublicProfile, error) {
	if strings.TrimSpace(username) == "" {
		return PublicProfile{}, errors.Wrap(apperrors.ErrInvalidRequest, "[PublicProfile] empty username")
	}
	var profile PublicProfile
	if err := c.do(ctx, c.raw, http.MethodGet, PathProfiles+url.PathEscape(username), nil, &profile, nil); err != nil {
		return PublicProfile{}, errors.Wrap(err, "[PublicProfile]")
	}
	return profile, nil
}

// DiscordLoginURL is where a browser starts the Discord sign in.
func (c *Client) DiscordLoginURL() string {
	return c.authURL.JoinPath(PathDiscordProvider).String()
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any, decorate func(*http.Request)) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if decorate != nil {
		decorate(req)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api: request rejected")
		return decodeStatusError(req, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func decodeStatusError(req *http.Request, resp *http.Response) error {
	se := &StatusError{Method: req.Method, Path: req.URL.Path, StatusCode: resp.StatusCode}

	var er ErrorResponse
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(b) > 0 {
		if json.Unmarshal(b, &er) == nil {
			se.Code = er.Error
			se.Message = er.Message
		}
	}
	return se
}
