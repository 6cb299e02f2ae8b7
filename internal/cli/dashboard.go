package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/app"
	"github.com/spf13/cobra"
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func newDashboardCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your member dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := e.app.Dashboard(cmd.Context())
			if err != nil {
				return signedOutError(err)
			}
			return e.renderDashboard(data)
		},
	}
}

func (e *env) renderDashboard(d api.DashboardData) error {
	p := e.printer
	id := d.Identity

	p.Header(id.DisplayName)
	p.Field("Username", "@"+id.Username)
	p.Field("Title", id.Title)
	p.Field("Elite role", id.SelectedEliteRole)
	p.Field("Special role", id.SelectedSpecialRole)
	p.Field("Rank", id.Rank)
	p.Field("XP", xpLine(p, id.XP))
	p.Field("Theme", id.SelectedTheme)
	p.Field("Bio", id.Bio)
	if d.IsDiscordLinked {
		p.Field("Discord", "linked")
	}

	p.Header("Nation")
	p.Field("Name", d.Nation.Name)
	p.Field("Level", strconv.Itoa(d.Nation.Level))
	p.Field("Streak", fmt.Sprintf("%d days", d.Nation.Streak))
	p.Field("Roles", strings.Join(d.Nation.Roles, ", "))

	p.Header("Stats")
	stats := p.NewTable("Messages", "Voice", "Attachments", "Emojis")
	stats.AddRow(
		strconv.Itoa(d.Nation.Messages),
		voiceHours(d.Nation.VoiceMinutes),
		strconv.Itoa(d.Nation.AttachmentCount),
		strconv.Itoa(d.Nation.EmojiCount),
	)
	if err := stats.Render(); err != nil {
		return err
	}

	p.Header("Wallet")
	p.Field("Embers", strconv.FormatInt(d.Wallet.Embers, 10))
	p.Field("Obols", strconv.FormatInt(d.Wallet.Obols, 10))
	p.Field("Bank", strconv.FormatInt(d.Wallet.Bank, 10))

	if err := e.renderActivity(d.Activity); err != nil {
		return err
	}
	return e.renderApps(d.Apps)
}

func (e *env) renderActivity(entries []api.ActivityEntry) error {
	e.printer.Header("Activity")
	if len(entries) == 0 {
		e.printer.Print("  %s", e.printer.Dim("nothing yet"))
		return nil
	}
	t := e.printer.NewTable("When", "What")
	for _, a := range entries {
		t.AddRow(a.Time, a.Text)
	}
	return t.Render()
}

func (e *env) renderApps(apps []api.App) error {
	e.printer.Header("Apps")
	if len(apps) == 0 {
		e.printer.Print("  %s", e.printer.Dim("no connected apps"))
		return nil
	}
	t := e.printer.NewTable("App", "Status")
	for _, a := range apps {
		t.AddRow(a.Name, e.printer.Badge(a.Status))
	}
	return t.Render()
}

func newAnalyticsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show your weekly activity and engagement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := e.app.Dashboard(cmd.Context())
			if err != nil {
				return signedOutError(err)
			}
			return e.renderAnalytics(data.Analytics)
		},
	}
}

func (e *env) renderAnalytics(a api.Analytics) error {
	p := e.printer

	p.Header("Highlights")
	p.Field("Top channel", a.TopChannel)
	p.Field("Busiest day", a.MostActiveDay)

	p.Header("This week")
	week := p.NewTable("Day", "Messages", "Voice (min)")
	for _, day := range weekdays {
		week.AddRow(day, strconv.Itoa(a.WeeklyActivity[day]), strconv.Itoa(a.WeeklyVoice[day]))
	}
	if err := week.Render(); err != nil {
		return err
	}

	p.Header("Engagement")
	eng := p.NewTable("Metric", "Total")
	eng.AddRow("Messages", strconv.Itoa(a.Engagement.Messages))
	eng.AddRow("Voice", voiceHours(a.Engagement.Voice))
	eng.AddRow("Reactions", strconv.Itoa(a.Engagement.Reactions))
	eng.AddRow("Artifacts", strconv.Itoa(a.Engagement.Artifacts))
	return eng.Render()
}

func newAchievementsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "Show your achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := e.app.Dashboard(cmd.Context())
			if err != nil {
				return signedOutError(err)
			}
			unlockedOnly, _ := cmd.Flags().GetBool("unlocked")
			return e.renderAchievements(app.Achievements(data), unlockedOnly)
		},
	}
	cmd.Flags().Bool("unlocked", false, "only show unlocked achievements")
	return cmd
}

func (e *env) renderAchievements(achievements []app.Achievement, unlockedOnly bool) error {
	p := e.printer
	s := app.Summarize(achievements)

	p.Header("Achievements")
	p.Field("Unlocked", fmt.Sprintf("%d / %d", s.Unlocked, s.Total))
	p.Field("Completion", fmt.Sprintf("%s %d%%", p.Bar(s.Completion, 20), s.Completion))
	p.Field("Legendary", strconv.Itoa(s.Legendary))
	p.Print("")

	t := p.NewTable("Achievement", "Rarity", "Progress", "Status")
	for _, a := range achievements {
		if unlockedOnly && !a.Unlocked {
			continue
		}
		status := "locked"
		if a.Unlocked {
			status = "unlocked"
		}
		t.AddRow(a.Name, string(a.Rarity), fmt.Sprintf("%s %3d%%", p.Bar(a.Progress, 10), a.Progress), p.Badge(status))
	}
	return t.Render()
}

func newAppsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "Show the apps connected to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := e.app.Dashboard(cmd.Context())
			if err != nil {
				return signedOutError(err)
			}
			return e.renderApps(data.Apps)
		},
	}
}

func xpLine(p *Printer, xp api.XP) string {
	if xp.Max <= 0 {
		return strconv.Itoa(xp.Current)
	}
	return fmt.Sprintf("%s %d / %d", p.Bar(xp.Current*100/xp.Max, 20), xp.Current, xp.Max)
}

func voiceHours(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
