package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	jwtSecretKey          = "token.jwt_secret"
	issuerKey             = "token.issuer"
	accessTokenExpiryKey  = "token.access_expiry"
	refreshTokenExpiryKey = "token.refresh_expiry"
	refreshTokenLengthKey = "token.refresh_length"
)

// TokenConfig configures the credentials issued by the local API server.
type TokenConfig interface {
	GetJWTSecret() string
	GetIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type Token struct {
	v *viper.Viper
}

var _ TokenConfig = Token{}

func setTokenDefaults(v *viper.Viper) {
	v.SetDefault(jwtSecretKey, "sanctyr-dev-secret")
	v.SetDefault(issuerKey, "sanctyr-devserver")
	v.SetDefault(accessTokenExpiryKey, 15*time.Minute)
	v.SetDefault(refreshTokenExpiryKey, 7*24*time.Hour)
	v.SetDefault(refreshTokenLengthKey, 32) // 32 bytes = 256 bits
}

func (t Token) GetJWTSecret() string {
	return t.v.GetString(jwtSecretKey)
}

func (t Token) GetIssuer() string {
	return t.v.GetString(issuerKey)
}

func (t Token) GetAccessTokenExpiry() time.Duration {
	return t.v.GetDuration(accessTokenExpiryKey)
}

func (t Token) GetRefreshTokenExpiry() time.Duration {
	return t.v.GetDuration(refreshTokenExpiryKey)
}

func (t Token) GetRefreshTokenLength() int {
	return t.v.GetInt(refreshTokenLengthKey)
}
