package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/sanctyr/api"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newProfileCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <username>",
		Short: "Show a member's public profile",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runProfile,
	}
}

func (e *env) runProfile(cmd *cobra.Command, args []string) error {
	username := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")
	ctx := cmd.Context()

	st, err := e.app.Session().Wait(ctx)
	if err != nil {
		return err
	}

	if st.IsAuthenticated() {
		ov, err := e.app.Overview(ctx, username)
		switch {
		case err == nil:
			if strings.EqualFold(ov.Dashboard.Identity.Username, username) {
				e.printer.Info("This is your public profile.")
			} else {
				e.printer.Print("%s", e.printer.Dim("Viewing as @"+ov.Dashboard.Identity.Username))
			}
			return e.renderProfile(ov.Profile)
		case errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("no member named %q", username)
		case !errors.Is(err, apperrors.ErrSessionExpired) && !errors.Is(err, apperrors.ErrNotAuthenticated):
			return apiError(err)
		}
		// public profiles stay readable after the session ends
		e.printer.Warning("Your session expired, showing the public view.")
	}

	profile, err := e.app.PublicProfile(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("no member named %q", username)
		}
		return apiError(err)
	}
	return e.renderProfile(profile)
}

func (e *env) renderProfile(pp api.PublicProfile) error {
	p := e.printer
	id := pp.Identity

	p.Header(id.DisplayName)
	p.Field("Username", "@"+id.Username)
	p.Field("Title", id.Title)
	p.Field("Special role", id.SpecialRole)
	p.Field("Rank", id.Rank)
	p.Field("XP", xpLine(p, id.XP))
	p.Field("Theme", id.Theme)
	p.Field("Bio", id.Bio)
	for _, s := range id.Socials {
		p.Field(s.Platform, s.URL)
	}

	p.Header("Nation")
	p.Field("Name", pp.Nation.Name)
	p.Field("Level", strconv.Itoa(pp.Nation.Level))
	p.Field("Roles", strings.Join(pp.Nation.Roles, ", "))

	p.Header("Economy")
	p.Field("Wallet", strconv.FormatInt(pp.Economy.Wallet, 10))
	p.Field("Bank", strconv.FormatInt(pp.Economy.Bank, 10))
	p.Field("Streak", fmt.Sprintf("%d days", pp.Economy.Streak))

	if err := e.renderActivity(pp.Activity); err != nil {
		return err
	}
	return e.renderApps(pp.Apps)
}
