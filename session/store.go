package session

import (
	"context"
	"net/url"
	"sync"

	"github.com/jrsteele09/sanctyr/credential"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for the signed-in identity. It shares
// the credential cache with the request gateway.
type Store struct {
	creds  credential.Store
	auth   Authenticator
	logger zerolog.Logger

	mu            sync.RWMutex
	identity      *Identity
	bootstrapping bool
	expired       error
	// epoch moves on every explicit transition; a bootstrap that started in an
	// older epoch does not commit.
	epoch       uint64
	subscribers []subscriber
	nextSubID   int

	initOnce  sync.Once
	readyOnce sync.Once
	ready     chan struct{}
}

type subscriber struct {
	id int
	fn func(State)
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the logger (defaults to the global zerolog logger)
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore returns a store that is bootstrapping until Init/Bootstrap settles
// or an explicit Login happens.
func NewStore(creds credential.Store, auth Authenticator, options ...StoreOption) (*Store, error) {
	if creds == nil {
		return nil, errors.New("[NewStore] credential store is required")
	}
	if auth == nil {
		return nil, errors.New("[NewStore] authenticator is required")
	}

	s := &Store{
		creds:         creds,
		auth:          auth,
		logger:        log.Logger,
		bootstrapping: true,
		ready:         make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

// Identity returns the current identity, if any.
func (s *Store) Identity() (Identity, bool) {
	st := s.State()
	if st.Identity == nil {
		return Identity{}, false
	}
	return *st.Identity, true
}

// Ready is closed once the initial bootstrap window is over, either because
// bootstrap settled or an explicit transition ended it.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until Ready or ctx is done.
func (s *Store) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Login adopts a credential and identity obtained elsewhere (login form,
// social callback). No network call is made.
func (s *Store) Login(ctx context.Context, cred string, identity Identity) error {
	if cred == "" {
		return errors.Wrap(apperrors.ErrInvalidCredential, "[Login] empty credential")
	}
	if !identity.Valid() {
		return errors.Wrap(apperrors.ErrInvalidRequest, "[Login] identity without id")
	}

	s.mu.Lock()
	s.epoch++
	if err := s.creds.Set(ctx, cred); err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "[Login] caching credential")
	}
	id := identity
	s.identity = &id
	s.bootstrapping = false
	s.expired = nil
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info().Str("user", identity.Email).Bool("placeholder", identity.IsPlaceholder()).Msg("session: login")
	s.markReady()
	s.notify(st)
	return nil
}

// Logout ends the session locally whatever the server answers. It never fails
// and is safe to call when already signed out.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.bootstrapping = true
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)

	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("session: logout notification failed")
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// a login landed while the server was being notified
		s.mu.Unlock()
		s.logger.Debug().Msg("session: newer transition during logout, keeping it")
		return
	}
	if err := s.creds.Remove(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("session: removing cached credential failed")
	}
	s.identity = nil
	s.expired = nil
	s.bootstrapping = false
	st = s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info().Msg("session: logout")
	s.markReady()
	s.notify(st)
}

// Expire ends the session after an unrecoverable refresh failure. Route
// guards then send the member back to sign in.
func (s *Store) Expire(reason error) {
	if reason == nil {
		reason = apperrors.ErrSessionExpired
	}

	s.mu.Lock()
	s.epoch++
	if err := s.creds.Remove(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("session: removing cached credential failed")
	}
	s.identity = nil
	s.expired = reason
	s.bootstrapping = false
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Warn().Err(reason).Msg("session: expired")
	s.markReady()
	s.notify(st)
}

// Hydrate replaces the social login placeholder with the real identity. It is
// a no-op (returning false) when the current identity is not the placeholder.
func (s *Store) Hydrate(identity Identity) bool {
	if !identity.Valid() || identity.IsPlaceholder() {
		return false
	}

	s.mu.Lock()
	if s.identity == nil || !s.identity.IsPlaceholder() {
		s.mu.Unlock()
		return false
	}
	id := identity
	s.identity = &id
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("user", identity.Email).Msg("session: placeholder identity hydrated")
	s.notify(st)
	return true
}

// AdoptCallback completes a social login handoff. The callback URL carries the
// credential in its token query parameter; the returned path is where to go next.
func (s *Store) AdoptCallback(ctx context.Context, callbackURL string) (string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return RouteLogin + "?error=oauth_failed", errors.Wrap(err, "[AdoptCallback] parse url")
	}

	token := u.Query().Get("token")
	if token == "" {
		s.logger.Error().Msg("session: no token in callback url")
		return RouteLogin + "?error=oauth_failed", apperrors.ErrMissingCallbackToken
	}

	if err := s.Login(ctx, token, PlaceholderIdentity()); err != nil {
		return RouteLogin + "?error=oauth_failed", err
	}
	return RouteDashboard, nil
}

// Subscribe registers fn to run after every transition. The returned func unregisters it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(st State) {
	s.mu.RLock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(st)
	}
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Store) snapshotLocked() State {
	st := State{Bootstrapping: s.bootstrapping, Expired: s.expired}
	if s.identity != nil {
		id := *s.identity
		st.Identity = &id
	}
	return st
}
