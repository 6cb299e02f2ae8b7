package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/sanctyr/internal/config"
	"github.com/jrsteele09/sanctyr/token"
	"github.com/jrsteele09/sanctyr/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are carried by every access token.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwtlib.RegisteredClaims
}

// Creator issues access tokens
type Creator struct {
	config config.TokenConfig
	signer token.Signer
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.TokenConfig, signer token.Signer) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
	}
}

// CreateAccessToken creates a short-lived bearer credential for user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.config.GetIssuer(),                                            // The issuer of the token
			Subject:   user.ID,                                                         // The member the token speaks for
			IssuedAt:  jwtlib.NewNumericDate(now),                                      // Issued At: the time at which the token was issued
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.config.GetAccessTokenExpiry())), // Expiry: when the token will expire
			ID:        uuid.New().String(),                                             // Unique token ID for revocation
		},
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}
