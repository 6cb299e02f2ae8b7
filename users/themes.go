package users

import "slices"

// Profile themes. Some are unlocked by the roles a member holds.
const (
	ThemeOrnate        = "ornate"
	ThemeMinimalist    = "minimalist"
	ThemeAstral        = "astral"
	ThemeCelestial     = "celestial"
	ThemeVoidSovereign = "void-sovereign"
)

// RoleEternalQueen unlocks the void-sovereign theme.
const RoleEternalQueen = "Eternal Queen"

// Themes lists every theme in display order.
var Themes = []string{ThemeOrnate, ThemeMinimalist, ThemeAstral, ThemeCelestial, ThemeVoidSovereign}

// CanUseTheme reports whether the member has unlocked theme. Unknown themes are never usable.
func (u *User) CanUseTheme(theme string) bool {
	switch theme {
	case ThemeOrnate, ThemeMinimalist:
		return true
	case ThemeAstral:
		return len(u.Profile.AvailableEliteRoles) > 0
	case ThemeCelestial:
		return len(u.Profile.AvailableSpecialRoles) > 0
	case ThemeVoidSovereign:
		return slices.Contains(u.Profile.AvailableEliteRoles, RoleEternalQueen)
	}
	return false
}
