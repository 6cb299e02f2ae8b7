package app

import "github.com/jrsteele09/sanctyr/api"

// Rarity of an achievement.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// Achievement is a milestone derived from a member's dashboard statistics.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Rarity      Rarity
	// Progress is 0-100
	Progress int
	Unlocked bool
}

type milestone struct {
	id, name, description string
	rarity                Rarity
	target                int
	value                 func(api.DashboardData) int
}

var milestones = []milestone{
	{"first-message", "First Words", "Send your first message in Sanctyr", Common, 1, messages},
	{"week-streak", "Dedicated Flame", "Maintain a 7-day activity streak", Uncommon, 7, streak},
	{"level-10", "Rising Star", "Reach Level 10", Uncommon, 10, level},
	{"level-25", "Ascendant", "Reach Level 25", Rare, 25, level},
	{"voice-100h", "Voice of Sanctyr", "Spend 100 hours in voice channels", Rare, 100 * 60, voiceMinutes},
	{"level-50", "Champion", "Reach Level 50", Epic, 50, level},
	{"artifacts-50", "Relic Hunter", "Gather 50 artifacts", Epic, 50, artifacts},
	{"level-100", "Legend of Sanctyr", "Reach Level 100", Legendary, 100, level},
}

func messages(d api.DashboardData) int     { return d.Nation.Messages }
func streak(d api.DashboardData) int       { return d.Nation.Streak }
func level(d api.DashboardData) int        { return d.Nation.Level }
func voiceMinutes(d api.DashboardData) int { return d.Nation.VoiceMinutes }
func artifacts(d api.DashboardData) int    { return d.Analytics.Engagement.Artifacts }

// Achievements evaluates every milestone against d, in display order.
func Achievements(d api.DashboardData) []Achievement {
	out := make([]Achievement, 0, len(milestones))
	for _, m := range milestones {
		v := m.value(d)
		progress := min(100, max(0, v*100/m.target))
		out = append(out, Achievement{
			ID:          m.id,
			Name:        m.name,
			Description: m.description,
			Rarity:      m.rarity,
			Progress:    progress,
			Unlocked:    v >= m.target,
		})
	}
	return out
}

// AchievementSummary counts unlocked achievements.
type AchievementSummary struct {
	Unlocked   int
	Total      int
	Completion int // percent
	Legendary  int // unlocked legendary achievements
}

func Summarize(achievements []Achievement) AchievementSummary {
	s := AchievementSummary{Total: len(achievements)}
	for _, a := range achievements {
		if !a.Unlocked {
			continue
		}
		s.Unlocked++
		if a.Rarity == Legendary {
			s.Legendary++
		}
	}
	if s.Total > 0 {
		s.Completion = s.Unlocked * 100 / s.Total
	}
	return s
}
