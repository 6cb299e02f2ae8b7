package api

// API paths
const (
	PathRefreshToken    = "/api/auth/refresh-token"
	PathLogin           = "/api/auth/login"
	PathRegister        = "/api/auth/register"
	PathLogout          = "/api/auth/logout"
	PathMe              = "/api/me"
	PathProfiles        = "/api/profiles/"
	PathDiscordProvider = "/api/v1/auth/providers/discord/login"
)
