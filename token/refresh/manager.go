package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/sanctyr/internal/config"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh session creation, validation, and rotation
type Manager struct {
	repo   Repo
	config config.TokenConfig
}

// NewManager creates a new refresh session manager
func NewManager(repo Repo, cfg config.TokenConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create starts a new session for userID, replacing any existing one.
func (m *Manager) Create(userID string) (*Session, error) {
	// Single refresh session per member
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return nil, errors.Wrap(err, "[Manager.Create] deleting existing session")
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, errors.Wrap(err, "[Manager.Create] generating token")
	}

	session := &Session{
		Token:  hex.EncodeToString(tokenBytes),
		UserID: userID,
		Iat:    NowTimeFunc(),
	}
	if err := m.repo.Upsert(session); err != nil {
		return nil, errors.Wrap(err, "[Manager.Create] storing session")
	}
	return session, nil
}

// Validate returns the live session for token. Expired sessions are deleted.
func (m *Manager) Validate(token string) (*Session, error) {
	if token == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	session, err := m.repo.Get(token)
	if err != nil || session == nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(session) {
		_ = m.repo.Delete(session.Token)
		return nil, apperrors.ErrRefreshTokenExpired
	}
	return session, nil
}

// Rotate exchanges a live session token for a new one. The old token stops working.
func (m *Manager) Rotate(token string) (*Session, error) {
	session, err := m.Validate(token)
	if err != nil {
		return nil, err
	}
	return m.Create(session.UserID)
}

// Delete removes a session
func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// IsExpired checks if a session has outlived the configured refresh expiry
func (m *Manager) IsExpired(session *Session) bool {
	return NowTimeFunc().Sub(session.Iat) > m.config.GetRefreshTokenExpiry()
}
