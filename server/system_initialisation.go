package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jrsteele09/sanctyr/users"
)

const (
	DemoNation = "Flameborn"

	// Second member, so public profiles have someone else to show
	neighbourEmail    = "obsidia@sanctyr.dev"
	neighbourUsername = "obsidia"
)

// InitialiseSystem seeds the demo member and a neighbour. Existing members are
// left untouched. The demo password is taken from config or generated and
// logged once.
func (s *Server) InitialiseSystem(_ context.Context) error {
	email, username, password := s.config.GetDemoMember()

	generatedPassword, err := s.createDemoMember(email, username, password)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to seed demo member: %w", err)
	}
	if _, err := s.createDemoMember(neighbourEmail, neighbourUsername, ""); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to seed neighbour: %w", err)
	}

	if generatedPassword != "" {
		s.demoPassword = generatedPassword
		s.logger.Info().
			Str("base_url", s.config.GetBaseURL()).
			Str("email", email).
			Str("password", generatedPassword).
			Str("social_callback", s.config.GetSocialCallbackURL()).
			Msg("demo member ready")
	}
	return nil
}

// createDemoMember returns the password used when the member was created, or
// "" when they already existed.
func (s *Server) createDemoMember(email, username, password string) (string, error) {
	if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing != nil {
		return "", nil
	}

	if password == "" {
		generated, err := generatePassword()
		if err != nil {
			return "", err
		}
		password = generated
	}

	member, err := users.New(email, username, password)
	if err != nil {
		return "", err
	}
	seedStanding(member)

	if err := s.repos.Users.Upsert(member); err != nil {
		return "", err
	}
	return password, nil
}

func generatePassword() (string, error) {
	passwordBytes := make([]byte, 12)
	if _, err := rand.Read(passwordBytes); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	// keeps the generated password acceptable to the strength rules
	return "Sx9" + base64.RawURLEncoding.EncodeToString(passwordBytes), nil
}

func seedStanding(u *users.User) {
	u.DateJoined = time.Now().AddDate(0, -9, 0)
	u.Profile.Title = "Keeper of the First Flame"
	u.Profile.Avatar = "https://cdn.sanctyr.dev/avatars/" + u.Username + ".png"
	u.Profile.Bio = "Tending the hearth since the first spark."
	u.Profile.AvailableEliteRoles = []string{"Flamewarden", users.RoleEternalQueen}
	u.Profile.AvailableSpecialRoles = []string{"Lorekeeper"}
	u.Profile.SelectedEliteRole = "Flamewarden"
	u.Profile.Socials = []users.Social{{Platform: "Discord", URL: "https://discord.gg/sanctyr", Icon: "MessageCircle"}}

	u.Standing = users.Standing{
		Rank:          "Ascendant",
		XP:            7420,
		XPMax:         10000,
		Nation:        DemoNation,
		NationRoles:   []string{"Flamewarden", "Veteran", "Event Host"},
		Level:         28,
		Streak:        12,
		Messages:      4821,
		VoiceMinutes:  4310,
		Attachments:   214,
		Emojis:        1290,
		Reactions:     3675,
		Artifacts:     37,
		TopChannel:    "#the-hearth",
		MostActiveDay: "Saturday",
		WeeklyActivity: map[string]int{
			"Mon": 42, "Tue": 37, "Wed": 55, "Thu": 48, "Fri": 61, "Sat": 88, "Sun": 73,
		},
		WeeklyVoice: map[string]int{
			"Mon": 30, "Tue": 15, "Wed": 45, "Thu": 20, "Fri": 90, "Sat": 140, "Sun": 95,
		},
	}
	u.Wallet = users.Wallet{Embers: 12500, Obols: 340, Bank: 50000}
	u.Activity = []users.Activity{
		{Time: "2h ago", Text: "Claimed the daily ember offering"},
		{Time: "yesterday", Text: "Hosted a voice gathering in #the-hearth"},
		{Time: "3 days ago", Text: "Reached level 28"},
	}
	u.Apps = []users.ConnectedApp{
		{Name: "Discord", Status: "connected", Icon: "MessageCircle"},
		{Name: "Ember Forge", Status: "available", Icon: "Flame"},
	}
}
