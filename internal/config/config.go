package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SANCTYR_API_URL.
const EnvPrefix = "SANCTYR"

type Config interface {
	EnvConfig
	ClientConfig
	CorsConfig
	TokenConfig
	SecurityConfig

	// Viper exposes the underlying settings so command line flags can be bound to them.
	Viper() *viper.Viper
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetLogLevel() string
	GetEnv() string
	GetSocialCallbackURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Client
	Cors
	Token
	Security
	v *viper.Viper
}

func (c mainConfig) Viper() *viper.Viper {
	return c.v
}

// New returns a configuration populated from defaults and SANCTYR_* environment variables.
func New() Config {
	return newConfig(newViper())
}

// Load is New plus an optional config file (yaml, json or toml). An empty path skips the file.
func Load(file string) (Config, error) {
	v := newViper()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("[config.Load] reading %s: %w", file, err)
		}
	}
	return newConfig(v), nil
}

func newConfig(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Client:   Client{v: v},
		Cors:     Cors{v: v},
		Token:    Token{v: v},
		Security: Security{v: v},
		v:        v,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setEnvDefaults(v)
	setClientDefaults(v)
	setCorsDefaults(v)
	setTokenDefaults(v)
	setSecurityDefaults(v)
	return v
}
