package api

import "github.com/jrsteele09/sanctyr/session"

// User is the identity projection returned by the auth endpoints.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// AuthResponse is the body of the login, register and refresh-token endpoints.
type AuthResponse struct {
	// AccessToken is the short-lived bearer credential
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

func (ar AuthResponse) SessionIdentity() session.Identity {
	return session.Identity{ID: ar.User.ID, Email: ar.User.Email}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Social struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

type XP struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type ActivityEntry struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

type App struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Icon   string `json:"icon"`
}

type Wallet struct {
	Embers int64 `json:"embers"`
	Obols  int64 `json:"obols"`
	Bank   int64 `json:"bank"`
}

// DashboardIdentity is the member's own profile as shown on the dashboard.
type DashboardIdentity struct {
	Name                  string   `json:"name"`
	Username              string   `json:"username"`
	DisplayName           string   `json:"display_name"`
	Title                 string   `json:"title"`
	SpecialRole           string   `json:"special_role,omitempty"`
	Avatar                string   `json:"avatar"`
	AvatarFrame           string   `json:"avatar_frame,omitempty"`
	Banner                string   `json:"banner,omitempty"`
	Nation                string   `json:"nation"`
	Rank                  string   `json:"rank"`
	XP                    XP       `json:"xp"`
	Bio                   string   `json:"bio,omitempty"`
	DateOfBirth           string   `json:"date_of_birth,omitempty"`
	Socials               []Social `json:"socials,omitempty"`
	AvailableEliteRoles   []string `json:"available_elite_roles,omitempty"`
	AvailableSpecialRoles []string `json:"available_special_roles,omitempty"`
	SelectedEliteRole     string   `json:"selected_elite_role,omitempty"`
	SelectedSpecialRole   string   `json:"selected_special_role,omitempty"`
	SelectedTheme         string   `json:"selected_theme,omitempty"`
}

type Nation struct {
	Name            string   `json:"name"`
	Roles           []string `json:"roles"`
	Level           int      `json:"level"`
	Streak          int      `json:"streak"`
	Messages        int      `json:"messages"`
	VoiceMinutes    int      `json:"voiceMinutes"`
	AttachmentCount int      `json:"attachmentCount"`
	EmojiCount      int      `json:"emojiCount"`
}

type Engagement struct {
	Messages  int `json:"messages"`
	Voice     int `json:"voice"`
	Reactions int `json:"reactions"`
	Artifacts int `json:"artifacts"`
}

type Analytics struct {
	TopChannel     string         `json:"topChannel"`
	MostActiveDay  string         `json:"mostActiveDay"`
	WeeklyActivity map[string]int `json:"weeklyActivity"`
	WeeklyVoice    map[string]int `json:"weeklyVoice"`
	Engagement     Engagement     `json:"engagement"`
}

// DashboardData is the body of GET /api/me.
type DashboardData struct {
	ID              string            `json:"id"`
	Email           string            `json:"email"`
	Identity        DashboardIdentity `json:"identity"`
	Wallet          Wallet            `json:"wallet"`
	Activity        []ActivityEntry   `json:"activity"`
	Apps            []App             `json:"apps"`
	Nation          Nation            `json:"nation"`
	Analytics       Analytics         `json:"analytics"`
	IsDiscordLinked bool              `json:"isDiscordLinked"`
}

// SessionIdentity projects the dashboard onto the session identity. Servers
// that omit the top-level id fall back to the username.
func (d DashboardData) SessionIdentity() session.Identity {
	id := d.ID
	if id == "" {
		id = d.Identity.Username
	}
	return session.Identity{ID: id, Email: d.Email}
}

// ProfileUpdate is the PUT /api/me body sent from the profile settings screen.
type ProfileUpdate struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	AvatarFrame string `json:"avatar_frame"`
	Banner      string `json:"banner"`
	Bio         string `json:"bio"`
	DateOfBirth string `json:"date_of_birth"`
}

// ProfileUpdateFrom pre-fills an update with the current values.
func ProfileUpdateFrom(id DashboardIdentity) ProfileUpdate {
	return ProfileUpdate{
		DisplayName: id.DisplayName,
		Avatar:      id.Avatar,
		AvatarFrame: id.AvatarFrame,
		Banner:      id.Banner,
		Bio:         id.Bio,
		DateOfBirth: id.DateOfBirth,
	}
}

// CustomizationUpdate is the PUT /api/me body sent from the customization screen.
type CustomizationUpdate struct {
	SelectedEliteRole   string   `json:"selected_elite_role"`
	SelectedSpecialRole string   `json:"selected_special_role"`
	SelectedTheme       string   `json:"selected_theme"`
	Bio                 string   `json:"bio"`
	Socials             []Social `json:"socials"`
}

const DefaultTheme = "ornate"

// CustomizationUpdateFrom pre-fills an update with the current values.
func CustomizationUpdateFrom(id DashboardIdentity) CustomizationUpdate {
	cu := CustomizationUpdate{
		SelectedEliteRole:   id.SelectedEliteRole,
		SelectedSpecialRole: id.SelectedSpecialRole,
		SelectedTheme:       id.SelectedTheme,
		Bio:                 id.Bio,
		Socials:             make([]Social, 0, len(id.Socials)),
	}
	if cu.SelectedTheme == "" {
		cu.SelectedTheme = DefaultTheme
	}
	for _, s := range id.Socials {
		if s.Icon == "" {
			s.Icon = "Link"
		}
		cu.Socials = append(cu.Socials, s)
	}
	return cu
}

type PublicIdentity struct {
	Username     string   `json:"username"`
	DisplayName  string   `json:"display_name"`
	Title        string   `json:"title"`
	SpecialRole  string   `json:"special_role,omitempty"`
	Avatar       string   `json:"avatar"`
	AvatarFrame  string   `json:"avatar_frame,omitempty"`
	Banner       string   `json:"banner,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Rank         string   `json:"rank"`
	XP           XP       `json:"xp"`
	Socials      []Social `json:"socials,omitempty"`
	EliteRoles   []string `json:"eliteRoles,omitempty"`
	SpecialRoles []string `json:"specialRoles,omitempty"`
	Theme        string   `json:"theme,omitempty"`
}

type PublicNation struct {
	Name  string   `json:"name"`
	Level int      `json:"level"`
	Roles []string `json:"roles"`
}

type Economy struct {
	Wallet int64 `json:"wallet"`
	Bank   int64 `json:"bank"`
	Streak int   `json:"streak"`
}

// PublicProfile is the body of GET /api/profiles/{username}.
type PublicProfile struct {
	Identity PublicIdentity  `json:"identity"`
	Nation   PublicNation    `json:"nation"`
	Apps     []App           `json:"apps"`
	Activity []ActivityEntry `json:"activity"`
	Economy  Economy         `json:"economy"`
}

// ErrorResponse is the body of every non-2xx response from the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
