// Package memstore keeps the credential for the life of the process only.
package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/sanctyr/credential"
)

var _ credential.Store = (*MemStore)(nil)

type MemStore struct {
	lock  sync.RWMutex
	value string
}

func New() *MemStore {
	return &MemStore{}
}

func (ms *MemStore) Get(_ context.Context) (string, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	return ms.value, nil
}

func (ms *MemStore) Set(_ context.Context, cred string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.value = cred
	return nil
}

func (ms *MemStore) Remove(_ context.Context) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.value = ""
	return nil
}
