package session

// PlaceholderID is the sentinel id of the identity adopted right after a social
// login handoff, before the first data fetch has resolved the real member.
const PlaceholderID = "social_init"

// Identity is the minimal projection of the signed-in member.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// PlaceholderIdentity returns the transient identity used while a social login is hydrating.
func PlaceholderIdentity() Identity {
	return Identity{ID: PlaceholderID, Email: "Authenticating..."}
}

func (i Identity) IsPlaceholder() bool {
	return i.ID == PlaceholderID
}

func (i Identity) Valid() bool {
	return i.ID != ""
}

// State is a snapshot of the session.
type State struct {
	Identity      *Identity
	Bootstrapping bool
	// Expired holds the reason the last session ended involuntarily, nil otherwise.
	Expired error
}

func (s State) IsAuthenticated() bool {
	return s.Identity != nil
}

// Hydrating reports whether the identity is still the social login placeholder.
// Consumers must not display it as a real member.
func (s State) Hydrating() bool {
	return s.Identity != nil && s.Identity.IsPlaceholder()
}
