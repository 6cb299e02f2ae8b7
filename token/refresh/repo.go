package refresh

import (
	"time"
)

// Session is the server-side record behind a refresh cookie. The member only
// ever sees Token, an opaque random string.
type Session struct {
	Token  string    // The random token string (sent in the cookie)
	UserID string    // Member the session belongs to
	Iat    time.Time // Issued at
}

// Repo stores refresh sessions keyed by their token. A member holds at most one.
type Repo interface {
	Upsert(session *Session) error
	Delete(token string) error
	Get(token string) (*Session, error)
	GetByUserID(userID string) (*Session, error)
	List(offset, limit int) ([]*Session, error)
}
