// Package gateway attaches the cached credential to outgoing requests and
// recovers from expired credentials with a single shared refresh.
package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/sanctyr/credential"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Refresher exchanges the session cookie for a new credential.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context) (string, error) {
	return f(ctx)
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that authenticates requests with the
// cached credential. When a request is rejected with 401 it refreshes the
// credential once, however many requests were rejected together, and sends
// each of them again exactly once.
type Transport struct {
	base      http.RoundTripper
	creds     credential.Store
	refresher Refresher
	coord     *coordinator

	logger         zerolog.Logger
	refreshPath    string
	refreshTimeout time.Duration
	limiter        *rate.Limiter
	metrics        *Metrics
	onExpired      func(error)
}

// New wraps base (http.DefaultTransport when nil).
func New(base http.RoundTripper, creds credential.Store, refresher Refresher, options ...Option) (*Transport, error) {
	if creds == nil {
		return nil, errors.New("[gateway.New] credential store is required")
	}
	if refresher == nil {
		return nil, errors.New("[gateway.New] refresher is required")
	}
	if base == nil {
		base = http.DefaultTransport
	}

	t := &Transport{
		base:           base,
		creds:          creds,
		refresher:      refresher,
		coord:          newCoordinator(),
		logger:         log.Logger,
		refreshPath:    DefaultRefreshPath,
		refreshTimeout: DefaultRefreshTimeout,
		metrics:        NewMetrics(nil),
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	body, err := replayableBody(req)
	if err != nil {
		return nil, errors.Wrap(err, "[RoundTrip] buffering request body")
	}

	gen := t.coord.generation()
	sent := t.currentCredential(ctx)
	resp, err := t.send(req, body, sent)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.isRefreshRequest(req) {
		return resp, nil
	}
	discard(resp)

	// another refresh already replaced the credential this request carried
	if current := t.currentCredential(ctx); current != "" && current != sent {
		t.logger.Debug().Str("path", req.URL.Path).Msg("gateway: stale credential, retrying with current one")
		t.metrics.RetriesTotal.Inc()
		return t.send(req, body, current)
	}

	cred, err := t.awaitRefresh(ctx, gen, sent)
	if err != nil {
		return nil, err
	}
	t.metrics.RetriesTotal.Inc()
	return t.send(req, body, cred)
}

// TokenSource exposes the cached credential to oauth2-aware clients.
func (t *Transport) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &cachedTokenSource{ctx: ctx, creds: t.creds}
}

// Refreshing reports whether a refresh is in flight.
func (t *Transport) Refreshing() bool {
	return t.coord.refreshing()
}

func (t *Transport) awaitRefresh(ctx context.Context, gen uint64, sent string) (string, error) {
	w := newWaiter()
	if t.coord.join(w, gen, sent) {
		go t.refresh(context.WithoutCancel(ctx))
	} else {
		t.metrics.QueuedTotal.Inc()
	}

	select {
	case out := <-w.done:
		return out.cred, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *Transport) refresh(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, t.refreshTimeout)
	defer cancel()

	out := t.runRefresh(ctx)
	t.metrics.recordRefresh(out.err)

	if out.err != nil {
		if err := t.creds.Remove(ctx); err != nil {
			t.logger.Warn().Err(err).Msg("gateway: removing cached credential failed")
		}
		t.logger.Warn().Err(out.err).Msg("gateway: refresh failed")
		if t.onExpired != nil {
			t.onExpired(out.err)
		}
	}

	released := t.coord.release(out)
	t.logger.Debug().Int("requests", released).Bool("ok", out.err == nil).Msg("gateway: refresh settled")
}

func (t *Transport) runRefresh(ctx context.Context) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: errors.Wrapf(apperrors.ErrSessionExpired, "refresh panicked: %v", r)}
		}
	}()

	cred, err := t.refresher.Refresh(ctx)
	if err == nil && cred == "" {
		err = apperrors.ErrNoCredential
	}
	if err != nil {
		return outcome{err: errors.Wrapf(apperrors.ErrSessionExpired, "refresh: %v", err)}
	}

	if err := t.creds.Set(ctx, cred); err != nil {
		t.logger.Warn().Err(err).Msg("gateway: caching refreshed credential failed")
	}
	return outcome{cred: cred}
}

func (t *Transport) send(req *http.Request, body func() (io.ReadCloser, error), cred string) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, errors.Wrap(err, "[send] rate limiter")
		}
	}

	r := req.Clone(req.Context())
	if body != nil {
		rc, err := body()
		if err != nil {
			return nil, errors.Wrap(err, "[send] rewinding request body")
		}
		r.Body = rc
	}
	if cred != "" {
		token := &oauth2.Token{AccessToken: cred, TokenType: "Bearer"}
		token.SetAuthHeader(r)
	}
	return t.base.RoundTrip(r)
}

func (t *Transport) currentCredential(ctx context.Context) string {
	cred, err := t.creds.Get(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("gateway: reading cached credential failed")
		return ""
	}
	return cred
}

func (t *Transport) isRefreshRequest(req *http.Request) bool {
	return t.refreshPath != "" && strings.TrimRight(req.URL.Path, "/") == strings.TrimRight(t.refreshPath, "/")
}

// replayableBody returns a func producing a fresh copy of the request body on
// every call, or nil when the request has none.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

type cachedTokenSource struct {
	ctx   context.Context
	creds credential.Store
}

func (ts *cachedTokenSource) Token() (*oauth2.Token, error) {
	cred, err := ts.creds.Get(ts.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Token] reading cached credential")
	}
	if cred == "" {
		return nil, apperrors.ErrNoCredential
	}
	return &oauth2.Token{AccessToken: cred, TokenType: "Bearer"}, nil
}
