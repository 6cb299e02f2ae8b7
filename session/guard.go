package session

import "strings"

// Route path constants
const (
	RouteRoot           = "/"
	RouteLogin          = "/login"
	RouteSignup         = "/signup"
	RouteCallback       = "/auth/callback"
	RouteDashboard      = "/dashboard"
	RouteAnalytics      = "/dashboard/analytics"
	RouteCustomization  = "/dashboard/customization"
	RouteAchievements   = "/dashboard/achievements"
	RouteApps           = "/dashboard/apps"
	RouteSettings       = "/dashboard/settings"
	RouteNotFound       = "/404"
	RouteSessionExpired = RouteLogin + "?error=session_expired"
)

// Action is what a guard decided about a navigation.
type Action int

const (
	Allow Action = iota
	// Wait means the session is still bootstrapping; show a loader and ask again.
	Wait
	Redirect
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

type Decision struct {
	Action Action
	To     string
}

func allow() Decision { return Decision{Action: Allow} }

func wait() Decision { return Decision{Action: Wait} }

func redirect(to string) Decision { return Decision{Action: Redirect, To: to} }

// RequireAuthenticated guards member-only routes.
func RequireAuthenticated(st State) Decision {
	if st.Bootstrapping {
		return wait()
	}
	if !st.IsAuthenticated() {
		if st.Expired != nil {
			return redirect(RouteSessionExpired)
		}
		return redirect(RouteLogin)
	}
	return allow()
}

// RequireAnonymous guards the sign in screens, sending members to their dashboard.
func RequireAnonymous(st State) Decision {
	if st.Bootstrapping {
		return wait()
	}
	if st.IsAuthenticated() {
		return redirect(RouteDashboard)
	}
	return allow()
}

// Access classifies a route.
type Access int

const (
	Open Access = iota
	Protected
	Anonymous
)

// AccessFor maps a path onto the route table: sign in and sign up are for
// visitors, everything under /dashboard is for members, the callback and
// public profiles (/{username}) are open.
func AccessFor(path string) Access {
	path = strings.TrimRight(path, "/")
	switch {
	case path == RouteLogin || path == RouteSignup:
		return Anonymous
	case path == RouteDashboard || strings.HasPrefix(path, RouteDashboard+"/"):
		return Protected
	default:
		return Open
	}
}

// Resolve decides a navigation to path given the session state.
func Resolve(path string, st State) Decision {
	if strings.TrimRight(path, "/") == "" {
		return redirect(RouteLogin)
	}
	switch AccessFor(path) {
	case Protected:
		return RequireAuthenticated(st)
	case Anonymous:
		return RequireAnonymous(st)
	default:
		return allow()
	}
}

// ProfileUsername returns the username of a public profile path, or false
// when path is not one.
func ProfileUsername(path string) (string, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return "", false
	}
	switch "/" + trimmed {
	case RouteLogin, RouteSignup, RouteDashboard, RouteNotFound:
		return "", false
	}
	return trimmed, true
}
