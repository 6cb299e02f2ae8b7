package authfake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/sanctyr/session"
)

var _ session.Authenticator = (*FakeAuthenticator)(nil)

var ErrRejected = errors.New("rejected")

// FakeAuthenticator answers session calls from fixed tables. Block, when set,
// holds RefreshSession until it is closed.
type FakeAuthenticator struct {
	lock sync.Mutex

	// Valid maps accepted credentials to their identity
	Valid map[string]session.Identity

	// RefreshCredential and RefreshIdentity are returned by RefreshSession; an
	// empty RefreshCredential means no session cookie
	RefreshCredential string
	RefreshIdentity   session.Identity

	LogoutErr error
	Block     chan struct{}

	validateCalls int
	refreshCalls  int
	logoutCalls   int
}

func NewFakeAuthenticator() *FakeAuthenticator {
	return &FakeAuthenticator{Valid: make(map[string]session.Identity)}
}

func (fa *FakeAuthenticator) ValidateCredential(_ context.Context, cred string) (session.Identity, error) {
	fa.lock.Lock()
	defer fa.lock.Unlock()

	fa.validateCalls++
	identity, ok := fa.Valid[cred]
	if !ok {
		return session.Identity{}, ErrRejected
	}
	return identity, nil
}

func (fa *FakeAuthenticator) RefreshSession(ctx context.Context) (string, session.Identity, error) {
	fa.lock.Lock()
	fa.refreshCalls++
	block := fa.Block
	fa.lock.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", session.Identity{}, ctx.Err()
		}
	}

	fa.lock.Lock()
	defer fa.lock.Unlock()
	if fa.RefreshCredential == "" {
		return "", session.Identity{}, ErrRejected
	}
	return fa.RefreshCredential, fa.RefreshIdentity, nil
}

func (fa *FakeAuthenticator) Logout(_ context.Context) error {
	fa.lock.Lock()
	defer fa.lock.Unlock()

	fa.logoutCalls++
	return fa.LogoutErr
}

func (fa *FakeAuthenticator) Calls() (validate, refresh, logout int) {
	fa.lock.Lock()
	defer fa.lock.Unlock()
	return fa.validateCalls, fa.refreshCalls, fa.logoutCalls
}
