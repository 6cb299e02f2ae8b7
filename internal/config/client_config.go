package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CredentialStoreType selects where the bearer credential is persisted.
type CredentialStoreType string

const (
	CredentialStoreFile   CredentialStoreType = "file"
	CredentialStoreMemory CredentialStoreType = "memory"
	CredentialStoreRedis  CredentialStoreType = "redis"
)

const (
	apiURLKey            = "api_url"
	authURLKey           = "auth_url"
	credentialStoreKey   = "credential.store"
	credentialPathKey    = "credential.path"
	credentialRedisKey   = "credential.redis_url"
	credentialPrefixKey  = "credential.redis_prefix"
	credentialTTLKey     = "credential.ttl"
	refreshTimeoutKey    = "refresh_timeout"
	requestTimeoutKey    = "request_timeout"
	requestsPerSecondKey = "requests_per_second"
)

type ClientConfig interface {
	GetAPIURL() string
	GetAuthURL() string
	GetCredentialStore() CredentialStoreType
	GetCredentialPath() string
	GetCredentialRedisURL() string
	GetCredentialRedisPrefix() string
	GetCredentialTTL() time.Duration
	GetRefreshTimeout() time.Duration
	GetRequestTimeout() time.Duration
	GetRequestsPerSecond() float64
}

type Client struct {
	v *viper.Viper
}

var _ ClientConfig = Client{}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault(apiURLKey, "http://localhost:5001")
	v.SetDefault(credentialStoreKey, string(CredentialStoreFile))
	v.SetDefault(credentialPathKey, defaultCredentialPath())
	v.SetDefault(credentialRedisKey, "redis://localhost:6379/0")
	v.SetDefault(credentialPrefixKey, "sanctyr")
	v.SetDefault(credentialTTLKey, time.Duration(0))
	v.SetDefault(refreshTimeoutKey, 15*time.Second)
	v.SetDefault(requestTimeoutKey, 30*time.Second)
	v.SetDefault(requestsPerSecondKey, 0.0)
}

func defaultCredentialPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "sanctyr", "credentials.json")
}

// GetAPIURL is the Sanctyr API base URL every client request is resolved against.
func (c Client) GetAPIURL() string {
	return strings.TrimRight(c.v.GetString(apiURLKey), "/")
}

// GetAuthURL is the base URL of the social login provider entry point.
// Unset, it is the API URL.
func (c Client) GetAuthURL() string {
	if u := strings.TrimRight(c.v.GetString(authURLKey), "/"); u != "" {
		return u
	}
	return c.GetAPIURL()
}

func (c Client) GetCredentialStore() CredentialStoreType {
	return CredentialStoreType(strings.ToLower(c.v.GetString(credentialStoreKey)))
}

func (c Client) GetCredentialPath() string {
	return c.v.GetString(credentialPathKey)
}

func (c Client) GetCredentialRedisURL() string {
	return c.v.GetString(credentialRedisKey)
}

func (c Client) GetCredentialRedisPrefix() string {
	return c.v.GetString(credentialPrefixKey)
}

// GetCredentialTTL bounds how long a redis-cached credential lives. Zero keeps it until removed.
func (c Client) GetCredentialTTL() time.Duration {
	return c.v.GetDuration(credentialTTLKey)
}

// GetRefreshTimeout bounds a single credential refresh so queued requests cannot hang forever.
func (c Client) GetRefreshTimeout() time.Duration {
	return c.v.GetDuration(refreshTimeoutKey)
}

func (c Client) GetRequestTimeout() time.Duration {
	return c.v.GetDuration(requestTimeoutKey)
}

// GetRequestsPerSecond limits outgoing API calls. Zero disables the limiter.
func (c Client) GetRequestsPerSecond() float64 {
	return c.v.GetFloat64(requestsPerSecondKey)
}
