package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/users"
)

// MeHandler returns the signed-in member's dashboard.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, dashboardData(user))
	}
}

// meUpdate is the PUT /api/me body. Absent fields are left unchanged, so the
// profile settings and customization screens can share the endpoint.
type meUpdate struct {
	DisplayName         *string       `json:"display_name"`
	Avatar              *string       `json:"avatar"`
	AvatarFrame         *string       `json:"avatar_frame"`
	Banner              *string       `json:"banner"`
	Bio                 *string       `json:"bio"`
	DateOfBirth         *string       `json:"date_of_birth"`
	SelectedEliteRole   *string       `json:"selected_elite_role"`
	SelectedSpecialRole *string       `json:"selected_special_role"`
	SelectedTheme       *string       `json:"selected_theme"`
	Socials             *[]api.Social `json:"socials"`
}

const maxBioLength = 500

// UpdateMeHandler applies a profile or customization update.
func (s *Server) UpdateMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}

		var update meUpdate
		if err := decodeJSON(r, &update); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}
		if err := applyUpdate(user, update); err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		if err := s.repos.Users.Upsert(user); err != nil {
			s.logger.Error().Err(err).Str("user", user.ID).Msg("server: saving profile failed")
			writeJSONError(w, "internal_error", "could not save profile", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, dashboardData(user))
	}
}

// PublicProfileHandler serves anyone's public profile.
func (s *Server) PublicProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		user, err := s.repos.Users.GetByUsername(username)
		if err != nil || user.Blocked {
			writeJSONError(w, "not_found", fmt.Sprintf("no member named %q", username), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, publicProfile(user))
	}
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	user, err := s.repos.Users.GetByID(userIDFromContext(r.Context()))
	if err != nil {
		// the token outlived its member
		writeJSONError(w, "unauthorized", "member not found", http.StatusUnauthorized)
		return nil, false
	}
	if user.Blocked {
		writeJSONError(w, "account_blocked", "account is blocked, contact support", http.StatusForbidden)
		return nil, false
	}
	return user, true
}

// applyUpdate validates every field before changing anything.
func applyUpdate(user *users.User, update meUpdate) error {
	if update.DisplayName != nil && strings.TrimSpace(*update.DisplayName) == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	if update.Bio != nil && len(*update.Bio) > maxBioLength {
		return fmt.Errorf("bio must be at most %d characters", maxBioLength)
	}
	if update.SelectedEliteRole != nil && !user.CanSelectEliteRole(*update.SelectedEliteRole) {
		return fmt.Errorf("elite role %q is not available", *update.SelectedEliteRole)
	}
	if update.SelectedSpecialRole != nil && !user.CanSelectSpecialRole(*update.SelectedSpecialRole) {
		return fmt.Errorf("special role %q is not available", *update.SelectedSpecialRole)
	}
	if update.SelectedTheme != nil && !user.CanUseTheme(*update.SelectedTheme) {
		return fmt.Errorf("theme %q is locked", *update.SelectedTheme)
	}
	if update.Socials != nil {
		for _, social := range *update.Socials {
			if strings.TrimSpace(social.Platform) == "" || strings.TrimSpace(social.URL) == "" {
				return fmt.Errorf("socials need a platform and a url")
			}
		}
	}

	p := &user.Profile
	set(&p.DisplayName, update.DisplayName)
	set(&p.Avatar, update.Avatar)
	set(&p.AvatarFrame, update.AvatarFrame)
	set(&p.Banner, update.Banner)
	set(&p.Bio, update.Bio)
	set(&p.DateOfBirth, update.DateOfBirth)
	set(&p.SelectedEliteRole, update.SelectedEliteRole)
	set(&p.SelectedSpecialRole, update.SelectedSpecialRole)
	set(&p.SelectedTheme, update.SelectedTheme)
	if update.Socials != nil {
		p.Socials = make([]users.Social, 0, len(*update.Socials))
		for _, social := range *update.Socials {
			p.Socials = append(p.Socials, users.Social{Platform: social.Platform, URL: social.URL, Icon: social.Icon})
		}
	}
	return nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
