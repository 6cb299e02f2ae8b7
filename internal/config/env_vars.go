package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portKey     = "port"
	appNameKey  = "app_name"
	baseURLKey  = "base_url"
	logLevelKey = "log_level"
	envKey      = "env"

	socialCallbackURLKey = "social_callback_url"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func setEnvDefaults(v *viper.Viper) {
	v.SetDefault(portKey, "5001")
	v.SetDefault(appNameKey, "Sanctyr")
	v.SetDefault(baseURLKey, "http://localhost:5001")
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(socialCallbackURLKey, "http://localhost:5173/auth/callback")
}

// GetPort returns the listen address of the local API server, always prefixed with ':'.
func (e EnvVars) GetPort() string {
	port := e.v.GetString(portKey)
	if port == "" {
		port = "5001"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameKey)
}

// GetBaseURL returns the public URL of the local API server (used for provider redirects)
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.v.GetString(baseURLKey), "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelKey)
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(envKey)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}

// GetSocialCallbackURL is where the local API server sends the browser after a
// social login, with the credential in the token query parameter.
func (e EnvVars) GetSocialCallbackURL() string {
	return e.v.GetString(socialCallbackURLKey)
}
