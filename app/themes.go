package app

import (
	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/users"
)

// ThemeOption is a profile theme and whether the member may pick it.
type ThemeOption struct {
	Name        string
	Unlocked    bool
	Requirement string
}

var themeRequirements = map[string]string{
	users.ThemeAstral:        "any elite role",
	users.ThemeCelestial:     "any special role",
	users.ThemeVoidSovereign: "the " + users.RoleEternalQueen + " role",
}

// Themes applies the server's unlock rules to the member's available roles,
// so locked themes can be shown before a save is rejected.
func Themes(id api.DashboardIdentity) []ThemeOption {
	member := &users.User{Profile: users.Profile{
		AvailableEliteRoles:   id.AvailableEliteRoles,
		AvailableSpecialRoles: id.AvailableSpecialRoles,
	}}
	out := make([]ThemeOption, 0, len(users.Themes))
	for _, name := range users.Themes {
		out = append(out, ThemeOption{
			Name:        name,
			Unlocked:    member.CanUseTheme(name),
			Requirement: themeRequirements[name],
		})
	}
	return out
}
