package session

import (
	"context"

	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/pkg/errors"
)

// Init starts the bootstrap once, in the background. Later calls do nothing.
// Use Ready or Wait to learn when it has settled.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		go func() {
			if err := s.Bootstrap(ctx); err != nil {
				s.logger.Error().Err(err).Msg("session: bootstrap")
			}
		}()
	})
}

// Bootstrap establishes the initial session:
//
//  1. read the cached credential
//  2. validate it against the identity endpoint; on success keep it
//  3. otherwise exchange the session cookie for a new credential
//  4. otherwise clear the cache and settle unauthenticated
//
// Network failures only decide the resulting state and are not returned. The
// bootstrapping flag is cleared on every path, including a panic, which is
// recovered and returned as ErrBootstrapPanic.
func (s *Store) Bootstrap(ctx context.Context) (err error) {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(apperrors.ErrBootstrapPanic, "%v", r)
			s.mu.Lock()
			if s.epoch == epoch {
				s.identity = nil
			}
			s.mu.Unlock()
		}
		s.finishBootstrap(epoch)
	}()

	cached, getErr := s.creds.Get(ctx)
	if getErr != nil {
		s.logger.Warn().Err(getErr).Msg("session: reading cached credential failed")
	}

	if cached != "" {
		identity, vErr := s.auth.ValidateCredential(ctx, cached)
		if vErr == nil && identity.Valid() {
			s.adopt(ctx, epoch, identity, "")
			return nil
		}
		s.logger.Info().Err(vErr).Msg("session: cached credential rejected, trying session cookie")
	}

	cred, identity, rErr := s.auth.RefreshSession(ctx)
	if rErr == nil && cred != "" && identity.Valid() {
		s.adopt(ctx, epoch, identity, cred)
		return nil
	}
	s.logger.Info().Err(rErr).Msg("session: no valid session cookie found")

	s.settleUnauthenticated(ctx, epoch)
	return nil
}

// adopt commits an authenticated result. A non-empty cred replaces the cached one.
func (s *Store) adopt(ctx context.Context, epoch uint64, identity Identity, cred string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.logger.Debug().Msg("session: explicit transition during bootstrap, discarding result")
		return
	}
	if cred != "" {
		if err := s.creds.Set(ctx, cred); err != nil {
			s.logger.Warn().Err(err).Msg("session: caching refreshed credential failed")
		}
	}
	id := identity
	s.identity = &id
	s.logger.Info().Str("user", identity.Email).Msg("session: bootstrap authenticated")
}

func (s *Store) settleUnauthenticated(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return
	}
	if err := s.creds.Remove(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("session: clearing cached credential failed")
	}
	s.identity = nil
}

func (s *Store) finishBootstrap(epoch uint64) {
	s.mu.Lock()
	if s.epoch == epoch {
		s.bootstrapping = false
	}
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.markReady()
	s.notify(st)
}
