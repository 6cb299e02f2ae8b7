package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/sanctyr/token"
)

// TokenIntrospection describes an access token. When Active is false the
// other fields may not be populated.
type TokenIntrospection struct {
	Active   bool      // True or false - Is the token valid
	Sub      string    // Members unique ID
	Email    string    // Email the token was issued to
	Username string    // Username at issue time
	Jti      string    // Unique token ID
	Exp      time.Time // Expiration
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector validates access tokens
type Inspector struct {
	issuer         string
	signer         token.Signer
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector
func NewInspector(issuer string, signer token.Signer, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		issuer:         issuer,
		signer:         signer,
		revokedChecker: revokedChecker,
	}
}

// Introspect verifies rawToken. An invalid token yields an inactive
// introspection together with the reason.
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, errors.New("empty token")
	}

	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(rawToken, claims, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(i.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil || !parsed.Valid {
		return &TokenIntrospection{Active: false}, err
	}

	ti := &TokenIntrospection{
		Active:   true,
		Sub:      claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Jti:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		ti.Exp = claims.ExpiresAt.Time
	}

	// Check if token has been revoked
	if ti.Jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(ti.Jti) {
		ti.Active = false
		return ti, errors.New("token revoked")
	}
	return ti, nil
}
