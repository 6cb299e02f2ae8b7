package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jrsteele09/sanctyr/api"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/jrsteele09/sanctyr/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLoginCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Sanctyr",
		Long: `Sign in with email and password, or print the Discord sign in URL.

After signing in with Discord your browser lands on the callback URL.
Pass that URL to "sanctyr callback" to finish signing in.`,
		Args: cobra.NoArgs,
		RunE: e.runLogin,
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (read from stdin when omitted)")
	cmd.Flags().Bool("discord", false, "print the Discord sign in URL instead")
	return cmd
}

func (e *env) runLogin(cmd *cobra.Command, args []string) error {
	discord, _ := cmd.Flags().GetBool("discord")
	if discord {
		e.printer.Info("Open this URL in your browser to sign in with Discord:")
		e.printer.Print("  %s", e.app.DiscordLoginURL())
		e.printer.Print("Then run: sanctyr callback '<the URL your browser landed on>'")
		return nil
	}

	if done, err := e.alreadySignedIn(cmd); done || err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	if strings.TrimSpace(email) == "" {
		return errors.New("--email is required")
	}
	password, err := e.password(cmd)
	if err != nil {
		return err
	}

	identity, err := e.app.Login(cmd.Context(), email, password)
	if err != nil {
		return apiError(err)
	}
	e.printer.Success("Signed in as %s", identity.Email)
	return nil
}

func newSignupCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a Sanctyr account and sign in",
		Args:  cobra.NoArgs,
		RunE:  e.runSignup,
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("username", "", "public username, also your profile address")
	cmd.Flags().String("password", "", "account password (read from stdin when omitted)")
	return cmd
}

func (e *env) runSignup(cmd *cobra.Command, args []string) error {
	if done, err := e.alreadySignedIn(cmd); done || err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	username, _ := cmd.Flags().GetString("username")
	if strings.TrimSpace(email) == "" || strings.TrimSpace(username) == "" {
		return errors.New("--email and --username are required")
	}
	password, err := e.password(cmd)
	if err != nil {
		return err
	}

	identity, err := e.app.Register(cmd.Context(), api.RegisterRequest{Email: email, Username: username, Password: password})
	if err != nil {
		return apiError(err)
	}
	e.printer.Success("Welcome to Sanctyr, %s", username)
	e.printer.Info("Signed in as %s", identity.Email)
	return nil
}

func newCallbackCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "callback <url>",
		Short: "Finish a Discord sign in with the URL your browser landed on",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runCallback,
	}
}

func (e *env) runCallback(cmd *cobra.Command, args []string) error {
	next, err := e.app.Callback(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingCallbackToken) {
			return errors.New("sign in failed: the callback URL carries no token, please try again")
		}
		return err
	}

	// the placeholder identity is replaced by the first dashboard fetch
	data, err := e.app.Dashboard(cmd.Context())
	if err != nil {
		return signedOutError(err)
	}
	e.printer.Success("Signed in as %s", data.Identity.DisplayName)
	e.logger.Debug().Str("next", next).Msg("callback adopted")
	return nil
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.app.Logout(cmd.Context())
			e.printer.Success("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE:  e.runWhoami,
	}
}

func (e *env) runWhoami(cmd *cobra.Command, args []string) error {
	d, err := e.app.Guard(cmd.Context(), session.RouteDashboard)
	if err != nil {
		return err
	}
	if d.Action != session.Allow {
		if d.To == session.RouteSessionExpired {
			return signedOutError(apperrors.ErrSessionExpired)
		}
		return signedOutError(apperrors.ErrNotAuthenticated)
	}

	st := e.app.Session().State()
	if st.Hydrating() {
		e.printer.Info("Signed in, loading your profile...")
		if _, err := e.app.Dashboard(cmd.Context()); err != nil {
			return signedOutError(err)
		}
		st = e.app.Session().State()
	}
	if st.Identity == nil {
		return signedOutError(apperrors.ErrNotAuthenticated)
	}
	e.printer.Print("%s", st.Identity.Email)
	e.printer.Print("%s", e.printer.Dim("id "+st.Identity.ID))
	return nil
}

// alreadySignedIn reports members arriving at the sign in screens.
func (e *env) alreadySignedIn(cmd *cobra.Command) (bool, error) {
	d, err := e.app.Guard(cmd.Context(), session.RouteLogin)
	if err != nil {
		return false, err
	}
	if d.Action != session.Redirect {
		return false, nil
	}
	who := "a member"
	if id, ok := e.app.Session().Identity(); ok {
		who = id.Email
	}
	e.printer.Info("Already signed in as %s. Run \"sanctyr logout\" first to switch accounts.", who)
	return true, nil
}

func (e *env) password(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", errors.Wrap(err, "reading password")
		}
		return "", errors.New("no password given")
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}

// apiError prefers the server's message over the request line.
func apiError(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return errors.New(se.Message)
	}
	return err
}
