package users

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTheme = "ornate"
	DefaultRank  = "Initiate"
	DefaultTitle = "Wanderer of the Void"
)

// Social is a link shown on a member's profile.
type Social struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

// Profile is what a member edits from the settings and customization screens.
type Profile struct {
	DisplayName           string   `json:"display_name,omitempty"`
	Title                 string   `json:"title,omitempty"`
	Avatar                string   `json:"avatar,omitempty"`
	AvatarFrame           string   `json:"avatar_frame,omitempty"`
	Banner                string   `json:"banner,omitempty"`
	Bio                   string   `json:"bio,omitempty"`
	DateOfBirth           string   `json:"date_of_birth,omitempty"`
	Socials               []Social `json:"socials,omitempty"`
	AvailableEliteRoles   []string `json:"available_elite_roles,omitempty"`
	AvailableSpecialRoles []string `json:"available_special_roles,omitempty"`
	SelectedEliteRole     string   `json:"selected_elite_role,omitempty"`
	SelectedSpecialRole   string   `json:"selected_special_role,omitempty"`
	SelectedTheme         string   `json:"selected_theme,omitempty"`
}

// Wallet holds a member's currencies.
type Wallet struct {
	Embers int64 `json:"embers"`
	Obols  int64 `json:"obols"`
	Bank   int64 `json:"bank"`
}

// Activity is one line of the member's ledger.
type Activity struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// ConnectedApp is an application linked to the member's account.
type ConnectedApp struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Icon   string `json:"icon"`
}

// Standing is the member's place in their nation (Discord community) and the
// statistics gathered there.
type Standing struct {
	Rank           string         `json:"rank"`
	XP             int            `json:"xp"`
	XPMax          int            `json:"xp_max"`
	Nation         string         `json:"nation"`
	NationRoles    []string       `json:"nation_roles,omitempty"`
	Level          int            `json:"level"`
	Streak         int            `json:"streak"`
	Messages       int            `json:"messages"`
	VoiceMinutes   int            `json:"voice_minutes"`
	Attachments    int            `json:"attachments"`
	Emojis         int            `json:"emojis"`
	Reactions      int            `json:"reactions"`
	Artifacts      int            `json:"artifacts"`
	TopChannel     string         `json:"top_channel,omitempty"`
	MostActiveDay  string         `json:"most_active_day,omitempty"`
	WeeklyActivity map[string]int `json:"weekly_activity,omitempty"`
	WeeklyVoice    map[string]int `json:"weekly_voice,omitempty"`
}

type User struct {
	ID            string    `json:"id,omitempty"`          // Unique identifier for the user
	Email         string    `json:"email,omitempty"`       // User's email address
	Username      string    `json:"username,omitempty"`    // Unique username, also the public profile path
	PasswordHash  string    `json:"-"`                     // Hashed version of the user's password - never serialize
	DateJoined    time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin     time.Time `json:"last_login,omitempty"`  // Last time the user logged in
	Blocked       bool      `json:"blocked,omitempty"`     // Blocked, has the user been blocked from logging in
	DiscordLinked bool      `json:"discord_linked,omitempty"`

	Profile  Profile        `json:"profile"`
	Standing Standing       `json:"standing"`
	Wallet   Wallet         `json:"wallet"`
	Activity []Activity     `json:"activity,omitempty"`
	Apps     []ConnectedApp `json:"apps,omitempty"`
}

// New returns a fresh member with the starting profile.
func New(email, username, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return &User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		DateJoined:   time.Now(),
		Profile: Profile{
			DisplayName:   username,
			Title:         DefaultTitle,
			SelectedTheme: DefaultTheme,
		},
		Standing: Standing{
			Rank:  DefaultRank,
			XPMax: 1000,
			Level: 1,
		},
	}, nil
}

// ValidateUsername accepts 3 to 32 letters, digits, '_', '-' and '.'.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return fmt.Errorf("username may only contain letters, digits, '_', '-' and '.'")
		}
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return u.PasswordHash != "" && CheckPasswordHash(password, u.PasswordHash)
}

// Roles lists every role the member holds in their nation, elite and special
// roles first.
func (u *User) Roles() []string {
	roles := make([]string, 0, len(u.Standing.NationRoles)+2)
	if u.Profile.SelectedEliteRole != "" {
		roles = append(roles, u.Profile.SelectedEliteRole)
	}
	if u.Profile.SelectedSpecialRole != "" {
		roles = append(roles, u.Profile.SelectedSpecialRole)
	}
	for _, r := range u.Standing.NationRoles {
		if r != u.Profile.SelectedEliteRole && r != u.Profile.SelectedSpecialRole {
			roles = append(roles, r)
		}
	}
	return roles
}

// CanSelectEliteRole reports whether role may be shown as the member's elite
// role. The empty role clears the selection and is always allowed.
func (u *User) CanSelectEliteRole(role string) bool {
	return role == "" || slices.Contains(u.Profile.AvailableEliteRoles, role)
}

// CanSelectSpecialRole is CanSelectEliteRole for special roles.
func (u *User) CanSelectSpecialRole(role string) bool {
	return role == "" || slices.Contains(u.Profile.AvailableSpecialRoles, role)
}
