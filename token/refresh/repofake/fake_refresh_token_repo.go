package refreshrepofake

import (
	"errors"
	"sort"
	"sync"

	"github.com/jrsteele09/sanctyr/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

var ErrNotFound = errors.New("not found")

type FakeRefreshTokenRepo struct {
	sessions map[string]*refresh.Session
	userIDs  map[string]string // user ID to token
	lock     sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		sessions: make(map[string]*refresh.Session),
		userIDs:  make(map[string]string),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(session *refresh.Session) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.sessions[session.Token] = session
	tr.userIDs[session.UserID] = session.Token
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	session, ok := tr.sessions[token]
	if !ok {
		return ErrNotFound
	}
	if tr.userIDs[session.UserID] == token {
		delete(tr.userIDs, session.UserID)
	}
	delete(tr.sessions, token)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(token string) (*refresh.Session, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	session, ok := tr.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (tr *FakeRefreshTokenRepo) GetByUserID(userID string) (*refresh.Session, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	token, ok := tr.userIDs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return tr.sessions[token], nil
}

func (tr *FakeRefreshTokenRepo) List(offset, limit int) ([]*refresh.Session, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	sessions := make([]*refresh.Session, 0, len(tr.sessions))
	for _, v := range tr.sessions {
		sessions = append(sessions, v)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Iat.Before(sessions[j].Iat)
	})

	if offset >= len(sessions) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(sessions) {
		end = len(sessions)
	}
	return sessions[offset:end], nil
}
