package credentialrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/sanctyr/credential"
)

var _ credential.Store = (*FakeCredentialRepo)(nil)

// FakeCredentialRepo is an in-memory credential store. Errors and panics can be
// injected to exercise failure paths.
type FakeCredentialRepo struct {
	value string
	lock  sync.RWMutex

	GetErr     error
	SetErr     error
	RemoveErr  error
	PanicOnGet bool

	sets    int
	removes int
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{}
}

// NewFakeCredentialRepoWith returns a store that already holds cred.
func NewFakeCredentialRepoWith(cred string) *FakeCredentialRepo {
	return &FakeCredentialRepo{value: cred}
}

func (cr *FakeCredentialRepo) Get(_ context.Context) (string, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	if cr.PanicOnGet {
		panic("credential store corrupted")
	}
	if cr.GetErr != nil {
		return "", cr.GetErr
	}
	return cr.value, nil
}

func (cr *FakeCredentialRepo) Set(_ context.Context, cred string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if cr.SetErr != nil {
		return cr.SetErr
	}
	cr.value = cred
	cr.sets++
	return nil
}

func (cr *FakeCredentialRepo) Remove(_ context.Context) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if cr.RemoveErr != nil {
		return cr.RemoveErr
	}
	cr.value = ""
	cr.removes++
	return nil
}

// Value returns the cached credential, bypassing injected failures.
func (cr *FakeCredentialRepo) Value() string {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	return cr.value
}

// Sets counts successful Set calls.
func (cr *FakeCredentialRepo) Sets() int {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	return cr.sets
}

// Removes counts successful Remove calls.
func (cr *FakeCredentialRepo) Removes() int {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	return cr.removes
}
