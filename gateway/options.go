package gateway

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultRefreshPath is the refresh endpoint; a 401 from it is never retried.
	DefaultRefreshPath = "/api/auth/refresh-token"

	// DefaultRefreshTimeout bounds one refresh, independent of the requests waiting on it.
	DefaultRefreshTimeout = 15 * time.Second
)

// Option defines a function type to modify the Transport instance.
type Option func(*Transport)

// WithLogger sets the logger (defaults to the global zerolog logger)
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithRefreshPath sets the path of the refresh endpoint. A 401 from it never
// triggers another refresh.
func WithRefreshPath(path string) Option {
	return func(t *Transport) {
		t.refreshPath = path
	}
}

// WithRefreshTimeout bounds a single refresh round trip.
func WithRefreshTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.refreshTimeout = d
		}
	}
}

// WithRateLimiter paces every outgoing request, retries included.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(t *Transport) {
		t.limiter = limiter
	}
}

// WithMetrics sets the collectors the transport reports to (defaults to
// NewMetrics(nil), which registers nowhere).
func WithMetrics(m *Metrics) Option {
	return func(t *Transport) {
		if m != nil {
			t.metrics = m
		}
	}
}

// OnSessionExpired registers fn to run once per failed refresh, before the
// queued requests are released.
func OnSessionExpired(fn func(reason error)) Option {
	return func(t *Transport) {
		t.onExpired = fn
	}
}
