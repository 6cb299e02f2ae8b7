package credential

import "context"

// Key is the fixed name the bearer credential is cached under.
const Key = "sanctyr_token"

// Store persists the single opaque bearer credential of the signed-in member.
// The credential is never inspected; it is only attached to outgoing requests.
type Store interface {
	// Get returns the cached credential, or "" when none is cached
	Get(ctx context.Context) (string, error)

	// Set replaces the cached credential
	Set(ctx context.Context, credential string) error

	// Remove deletes the cached credential. Removing an absent credential is not an error.
	Remove(ctx context.Context) error
}
