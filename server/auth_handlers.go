package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/sanctyr/api"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/jrsteele09/sanctyr/users"
)

// LoginHandler signs a member in with email and password.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeJSONError(w, "invalid_request", "email and password are required", http.StatusBadRequest)
			return
		}

		user, err := s.repos.Users.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
		// Don't reveal if user exists or not
		if err != nil || !user.CheckPassword(req.Password) {
			writeJSONError(w, "invalid_credentials", "invalid email or password", http.StatusUnauthorized)
			return
		}
		if user.Blocked {
			writeJSONError(w, "account_blocked", "account is blocked, contact support", http.StatusForbidden)
			return
		}

		user.LastLogin = time.Now()
		if err := s.repos.Users.Upsert(user); err != nil {
			s.logger.Warn().Err(err).Str("user", user.ID).Msg("server: recording last login failed")
		}

		s.issueSession(w, r, user, http.StatusOK)
	}
}

// RegisterHandler creates a member and signs them in.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeJSONError(w, "weak_password", err.Error(), http.StatusBadRequest)
			return
		}

		user, err := users.New(req.Email, req.Username, req.Password)
		if err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}
		if existing, err := s.repos.Users.GetByEmail(user.Email); err == nil && existing != nil {
			writeJSONError(w, "user_exists", apperrors.ErrUserExists.Error(), http.StatusConflict)
			return
		}
		if existing, err := s.repos.Users.GetByUsername(user.Username); err == nil && existing != nil {
			writeJSONError(w, "username_taken", "username is already taken", http.StatusConflict)
			return
		}

		user.LastLogin = time.Now()
		if err := s.repos.Users.Upsert(user); err != nil {
			s.logger.Error().Err(err).Msg("server: storing new member failed")
			writeJSONError(w, "internal_error", "could not create account", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Str("user", user.Email).Msg("server: member registered")

		s.issueSession(w, r, user, http.StatusCreated)
	}
}

// RefreshTokenHandler exchanges the refresh cookie for a new access token,
// rotating the cookie.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshCookieName)
		if err != nil || cookie.Value == "" {
			writeJSONError(w, "unauthorized", "no refresh session", http.StatusUnauthorized)
			return
		}

		rotated, err := s.refresh.Rotate(cookie.Value)
		if err != nil {
			code := "invalid_refresh_token"
			if errors.Is(err, apperrors.ErrRefreshTokenExpired) {
				code = "refresh_token_expired"
			}
			s.clearRefreshCookie(w, r)
			writeJSONError(w, code, err.Error(), http.StatusUnauthorized)
			return
		}

		user, err := s.repos.Users.GetByID(rotated.UserID)
		if err != nil || user.Blocked {
			_ = s.refresh.Delete(rotated.Token)
			s.clearRefreshCookie(w, r)
			writeJSONError(w, "unauthorized", "member no longer active", http.StatusUnauthorized)
			return
		}

		accessToken, err := s.creator.CreateAccessToken(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("server: signing access token failed")
			writeJSONError(w, "internal_error", "could not issue token", http.StatusInternalServerError)
			return
		}
		s.setRefreshCookie(w, r, rotated.Token)
		writeJSON(w, http.StatusOK, authResponse(user, accessToken))
	}
}

// LogoutHandler ends the refresh session, revokes the presented access token
// and clears the cookie. It always succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(RefreshCookieName); err == nil && cookie.Value != "" {
			if err := s.refresh.Delete(cookie.Value); err != nil {
				s.logger.Debug().Err(err).Msg("server: logout without a live refresh session")
			}
		}
		if raw, ok := bearerToken(r); ok {
			if ti, err := s.inspector.Introspect(raw); err == nil && ti.Active {
				if err := s.revoked.Add(ti.Jti, ti.Exp); err != nil {
					s.logger.Warn().Err(err).Msg("server: revoking access token failed")
				}
			}
		}
		s.clearRefreshCookie(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DiscordLoginHandler simulates the Discord provider: it signs the demo member
// in, links their Discord account and sends the browser to the social
// callback with the access token in the query string.
func (s *Server) DiscordLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callback, err := url.Parse(s.config.GetSocialCallbackURL())
		if err != nil {
			writeJSONError(w, "invalid_configuration", "social callback url is invalid", http.StatusInternalServerError)
			return
		}

		email, _, _ := s.config.GetDemoMember()
		user, err := s.repos.Users.GetByEmail(email)
		if err != nil || user.Blocked {
			s.logger.Warn().Err(err).Msg("server: discord sign in without a usable member")
			http.Redirect(w, r, callback.String(), http.StatusFound)
			return
		}

		user.DiscordLinked = true
		user.LastLogin = time.Now()
		if err := s.repos.Users.Upsert(user); err != nil {
			s.logger.Warn().Err(err).Msg("server: linking discord failed")
		}

		accessToken, err := s.startSession(w, r, user)
		if err != nil {
			s.logger.Error().Err(err).Msg("server: discord sign in failed")
			http.Redirect(w, r, callback.String(), http.StatusFound)
			return
		}

		q := callback.Query()
		q.Set("token", accessToken)
		callback.RawQuery = q.Encode()
		http.Redirect(w, r, callback.String(), http.StatusFound)
	}
}

// issueSession starts a session for user and writes the AuthResponse.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, user *users.User, statusCode int) {
	accessToken, err := s.startSession(w, r, user)
	if err != nil {
		s.logger.Error().Err(err).Str("user", user.ID).Msg("server: starting session failed")
		writeJSONError(w, "internal_error", "could not start session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, statusCode, authResponse(user, accessToken))
}

// startSession creates the refresh session, sets its cookie and returns a new access token.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *users.User) (string, error) {
	session, err := s.refresh.Create(user.ID)
	if err != nil {
		return "", err
	}
	accessToken, err := s.creator.CreateAccessToken(user)
	if err != nil {
		return "", err
	}
	s.setRefreshCookie(w, r, session.Token)
	return accessToken, nil
}

func authResponse(user *users.User, accessToken string) api.AuthResponse {
	return api.AuthResponse{
		AccessToken: accessToken,
		User:        api.User{ID: user.ID, Email: user.Email, Username: user.Username},
	}
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, r *http.Request, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.config.GetRefreshTokenExpiry().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) secureCookies(r *http.Request) bool {
	return s.config.GetSecureCookies() || getScheme(r) == "https"
}
