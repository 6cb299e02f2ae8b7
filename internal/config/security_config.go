package config

import (
	"github.com/spf13/viper"
)

const (
	enableRateLimitingKey = "security.rate_limit"
	authRateKey           = "security.auth_rps"
	authBurstKey          = "security.auth_burst"
	secureCookiesKey      = "security.secure_cookies"
	demoEmailKey          = "demo.email"
	demoPasswordKey       = "demo.password"
	demoUsernameKey       = "demo.username"
)

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetAuthRateLimit() (perSecond float64, burst int)
	GetSecureCookies() bool
	GetDemoMember() (email, username, password string)
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

func setSecurityDefaults(v *viper.Viper) {
	v.SetDefault(enableRateLimitingKey, true)
	v.SetDefault(authRateKey, 5.0)
	v.SetDefault(authBurstKey, 10)
	v.SetDefault(secureCookiesKey, false)
	v.SetDefault(demoEmailKey, "ember@sanctyr.dev")
	v.SetDefault(demoUsernameKey, "ember")
	v.SetDefault(demoPasswordKey, "")
}

func (s Security) GetEnableRateLimiting() bool {
	return s.v.GetBool(enableRateLimitingKey)
}

// GetAuthRateLimit limits login, register and refresh calls per client address.
func (s Security) GetAuthRateLimit() (float64, int) {
	return s.v.GetFloat64(authRateKey), s.v.GetInt(authBurstKey)
}

func (s Security) GetSecureCookies() bool {
	return s.v.GetBool(secureCookiesKey)
}

// GetDemoMember returns the member seeded by the local API server. An empty
// password means one is generated at startup.
func (s Security) GetDemoMember() (string, string, string) {
	return s.v.GetString(demoEmailKey), s.v.GetString(demoUsernameKey), s.v.GetString(demoPasswordKey)
}
