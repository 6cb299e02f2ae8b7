package server

import (
	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/users"
)

func dashboardData(u *users.User) api.DashboardData {
	p, st := u.Profile, u.Standing
	return api.DashboardData{
		ID:    u.ID,
		Email: u.Email,
		Identity: api.DashboardIdentity{
			Name:                  p.DisplayName,
			Username:              u.Username,
			DisplayName:           p.DisplayName,
			Title:                 p.Title,
			SpecialRole:           p.SelectedSpecialRole,
			Avatar:                p.Avatar,
			AvatarFrame:           p.AvatarFrame,
			Banner:                p.Banner,
			Nation:                st.Nation,
			Rank:                  st.Rank,
			XP:                    api.XP{Current: st.XP, Max: st.XPMax},
			Bio:                   p.Bio,
			DateOfBirth:           p.DateOfBirth,
			Socials:               socials(p.Socials),
			AvailableEliteRoles:   p.AvailableEliteRoles,
			AvailableSpecialRoles: p.AvailableSpecialRoles,
			SelectedEliteRole:     p.SelectedEliteRole,
			SelectedSpecialRole:   p.SelectedSpecialRole,
			SelectedTheme:         p.SelectedTheme,
		},
		Wallet:   api.Wallet{Embers: u.Wallet.Embers, Obols: u.Wallet.Obols, Bank: u.Wallet.Bank},
		Activity: activity(u.Activity),
		Apps:     apps(u.Apps),
		Nation: api.Nation{
			Name:            st.Nation,
			Roles:           nonNil(u.Roles()),
			Level:           st.Level,
			Streak:          st.Streak,
			Messages:        st.Messages,
			VoiceMinutes:    st.VoiceMinutes,
			AttachmentCount: st.Attachments,
			EmojiCount:      st.Emojis,
		},
		Analytics: api.Analytics{
			TopChannel:     st.TopChannel,
			MostActiveDay:  st.MostActiveDay,
			WeeklyActivity: nonNilMap(st.WeeklyActivity),
			WeeklyVoice:    nonNilMap(st.WeeklyVoice),
			Engagement: api.Engagement{
				Messages:  st.Messages,
				Voice:     st.VoiceMinutes,
				Reactions: st.Reactions,
				Artifacts: st.Artifacts,
			},
		},
		IsDiscordLinked: u.DiscordLinked,
	}
}

func publicProfile(u *users.User) api.PublicProfile {
	p, st := u.Profile, u.Standing
	return api.PublicProfile{
		Identity: api.PublicIdentity{
			Username:     u.Username,
			DisplayName:  p.DisplayName,
			Title:        p.Title,
			SpecialRole:  p.SelectedSpecialRole,
			Avatar:       p.Avatar,
			AvatarFrame:  p.AvatarFrame,
			Banner:       p.Banner,
			Bio:          p.Bio,
			Rank:         st.Rank,
			XP:           api.XP{Current: st.XP, Max: st.XPMax},
			Socials:      socials(p.Socials),
			EliteRoles:   p.AvailableEliteRoles,
			SpecialRoles: p.AvailableSpecialRoles,
			Theme:        p.SelectedTheme,
		},
		Nation:   api.PublicNation{Name: st.Nation, Level: st.Level, Roles: nonNil(u.Roles())},
		Apps:     apps(u.Apps),
		Activity: activity(u.Activity),
		Economy:  api.Economy{Wallet: u.Wallet.Embers, Bank: u.Wallet.Bank, Streak: st.Streak},
	}
}

func socials(in []users.Social) []api.Social {
	out := make([]api.Social, 0, len(in))
	for _, s := range in {
		out = append(out, api.Social{Platform: s.Platform, URL: s.URL, Icon: s.Icon})
	}
	return out
}

func activity(in []users.Activity) []api.ActivityEntry {
	out := make([]api.ActivityEntry, 0, len(in))
	for _, a := range in {
		out = append(out, api.ActivityEntry{Time: a.Time, Text: a.Text})
	}
	return out
}

func apps(in []users.ConnectedApp) []api.App {
	out := make([]api.App, 0, len(in))
	for _, a := range in {
		out = append(out, api.App{Name: a.Name, Status: a.Status, Icon: a.Icon})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
