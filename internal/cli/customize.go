package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/app"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCustomizeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customize",
		Short: "Show or change your roles, theme, bio and socials",
		Long: `Without flags, shows your current customization and what you can choose from.

Examples:
  sanctyr customize --theme astral
  sanctyr customize --elite-role "Eternal Queen" --special-role ""
  sanctyr customize --social Discord=https://discord.gg/sanctyr --social Site=https://ember.dev`,
		Args: cobra.NoArgs,
		RunE: e.runCustomize,
	}
	cmd.Flags().String("elite-role", "", "elite role to display (empty clears it)")
	cmd.Flags().String("special-role", "", "special role to display (empty clears it)")
	cmd.Flags().String("theme", "", "profile theme")
	cmd.Flags().String("bio", "", "profile bio")
	cmd.Flags().StringArray("social", nil, "social link as platform=url, replaces all links (repeatable)")
	cmd.Flags().Bool("clear-socials", false, "remove every social link")
	return cmd
}

func (e *env) runCustomize(cmd *cobra.Command, args []string) error {
	data, err := e.app.Dashboard(cmd.Context())
	if err != nil {
		return signedOutError(err)
	}

	flags := cmd.Flags()
	if !anyChanged(cmd, "elite-role", "special-role", "theme", "bio", "social", "clear-socials") {
		return e.renderCustomization(data.Identity)
	}

	update := api.CustomizationUpdateFrom(data.Identity)
	if flags.Changed("elite-role") {
		update.SelectedEliteRole, _ = flags.GetString("elite-role")
		if update.SelectedEliteRole != "" && !slices.Contains(data.Identity.AvailableEliteRoles, update.SelectedEliteRole) {
			return fmt.Errorf("you do not hold the elite role %q", update.SelectedEliteRole)
		}
	}
	if flags.Changed("special-role") {
		update.SelectedSpecialRole, _ = flags.GetString("special-role")
		if update.SelectedSpecialRole != "" && !slices.Contains(data.Identity.AvailableSpecialRoles, update.SelectedSpecialRole) {
			return fmt.Errorf("you do not hold the special role %q", update.SelectedSpecialRole)
		}
	}
	if flags.Changed("theme") {
		update.SelectedTheme, _ = flags.GetString("theme")
		if err := checkTheme(data.Identity, update.SelectedTheme); err != nil {
			return err
		}
	}
	if flags.Changed("bio") {
		update.Bio, _ = flags.GetString("bio")
	}
	if clearSocials, _ := flags.GetBool("clear-socials"); clearSocials {
		update.Socials = []api.Social{}
	}
	if flags.Changed("social") {
		raw, _ := flags.GetStringArray("social")
		socials, err := parseSocials(raw)
		if err != nil {
			return err
		}
		update.Socials = socials
	}

	if err := e.app.SaveCustomization(cmd.Context(), update); err != nil {
		return apiError(signedOutError(err))
	}
	e.printer.Success("Customization saved")
	return nil
}

func (e *env) renderCustomization(id api.DashboardIdentity) error {
	p := e.printer

	p.Header("Customization")
	p.Field("Elite role", orNone(id.SelectedEliteRole))
	p.Field("Special role", orNone(id.SelectedSpecialRole))
	p.Field("Theme", orNone(id.SelectedTheme))
	p.Field("Bio", id.Bio)
	for _, s := range id.Socials {
		p.Field(s.Platform, s.URL)
	}

	p.Header("Roles you hold")
	roles := p.NewTable("Role", "Kind")
	for _, r := range id.AvailableEliteRoles {
		roles.AddRow(r, "elite")
	}
	for _, r := range id.AvailableSpecialRoles {
		roles.AddRow(r, "special")
	}
	if roles.Len() == 0 {
		p.Print("  %s", p.Dim("none yet"))
	} else if err := roles.Render(); err != nil {
		return err
	}

	p.Header("Themes")
	themes := p.NewTable("Theme", "Status", "Unlocked by")
	for _, t := range app.Themes(id) {
		status := "locked"
		if t.Unlocked {
			status = "unlocked"
		}
		themes.AddRow(t.Name, p.Badge(status), t.Requirement)
	}
	return themes.Render()
}

func checkTheme(id api.DashboardIdentity, theme string) error {
	for _, t := range app.Themes(id) {
		if t.Name != theme {
			continue
		}
		if !t.Unlocked {
			return fmt.Errorf("theme %q is locked, it needs %s", theme, t.Requirement)
		}
		return nil
	}
	return fmt.Errorf("unknown theme %q", theme)
}

// parseSocials reads platform=url pairs.
func parseSocials(raw []string) ([]api.Social, error) {
	out := make([]api.Social, 0, len(raw))
	for _, r := range raw {
		platform, link, ok := strings.Cut(r, "=")
		platform, link = strings.TrimSpace(platform), strings.TrimSpace(link)
		if !ok || platform == "" || link == "" {
			return nil, fmt.Errorf("social %q must look like platform=url", r)
		}
		out = append(out, api.Social{Platform: platform, URL: link, Icon: "Link"})
	}
	return out, nil
}

func newSettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your profile settings",
		Args:  cobra.NoArgs,
		RunE:  e.runSettings,
	}
	cmd.Flags().String("display-name", "", "name shown on your profile")
	cmd.Flags().String("avatar", "", "avatar image URL")
	cmd.Flags().String("frame", "", "avatar frame")
	cmd.Flags().String("banner", "", "banner image URL")
	cmd.Flags().String("bio", "", "profile bio")
	cmd.Flags().String("dob", "", "date of birth, YYYY-MM-DD")
	return cmd
}

func (e *env) runSettings(cmd *cobra.Command, args []string) error {
	data, err := e.app.Dashboard(cmd.Context())
	if err != nil {
		return signedOutError(err)
	}

	fields := map[string]*string{}
	update := api.ProfileUpdateFrom(data.Identity)
	fields["display-name"] = &update.DisplayName
	fields["avatar"] = &update.Avatar
	fields["frame"] = &update.AvatarFrame
	fields["banner"] = &update.Banner
	fields["bio"] = &update.Bio
	fields["dob"] = &update.DateOfBirth

	changed := false
	for name, field := range fields {
		if !cmd.Flags().Changed(name) {
			continue
		}
		*field, _ = cmd.Flags().GetString(name)
		changed = true
	}
	if !changed {
		return e.renderSettings(data.Identity)
	}

	if strings.TrimSpace(update.DisplayName) == "" {
		return errors.New("display name cannot be empty")
	}
	if update.DateOfBirth != "" {
		if _, err := time.Parse(time.DateOnly, update.DateOfBirth); err != nil {
			return fmt.Errorf("date of birth %q must be YYYY-MM-DD", update.DateOfBirth)
		}
	}

	if err := e.app.SaveProfile(cmd.Context(), update); err != nil {
		return apiError(signedOutError(err))
	}
	e.printer.Success("Profile saved")
	return nil
}

func (e *env) renderSettings(id api.DashboardIdentity) error {
	p := e.printer
	p.Header("Profile settings")
	p.Field("Display name", id.DisplayName)
	p.Field("Avatar", orNone(id.Avatar))
	p.Field("Frame", orNone(id.AvatarFrame))
	p.Field("Banner", orNone(id.Banner))
	p.Field("Bio", orNone(id.Bio))
	p.Field("Date of birth", orNone(id.DateOfBirth))
	return nil
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
