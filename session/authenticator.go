package session

import "context"

// Authenticator performs the session calls that must bypass the request
// gateway: a 401 here is an answer, not something to refresh.
type Authenticator interface {
	// ValidateCredential looks up the identity owning cred.
	ValidateCredential(ctx context.Context, cred string) (Identity, error)

	// RefreshSession exchanges the out-of-band session cookie for a new credential.
	RefreshSession(ctx context.Context) (string, Identity, error)

	// Logout tells the server the session is over. Best effort.
	Logout(ctx context.Context) error
}
