package server

import "github.com/jrsteele09/sanctyr/api"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin    = api.PathLogin
	RouteAuthRegister = api.PathRegister
	RouteAuthRefresh  = api.PathRefreshToken
	RouteAuthLogout   = api.PathLogout

	// Social provider (simulated Discord)
	RouteDiscordLogin = api.PathDiscordProvider

	// Member Routes
	RouteMe      = api.PathMe
	RouteProfile = api.PathProfiles + "{username}"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

// RefreshCookieName carries the opaque refresh session.
const RefreshCookieName = "sanctyr_refresh"
