// Package cli is the sanctyr command line client.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/sanctyr/app"
	"github.com/jrsteele09/sanctyr/internal/config"
	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the version reported by "sanctyr version".
func SetVersion(v string) {
	version = v
}

// env is what every command shares for one invocation.
type env struct {
	cfgFile   string
	apiURL    string
	authURL   string
	store     string
	credPath  string
	colorFlag string
	verbose   bool

	appOpts []app.Option
	cfg     config.Config
	app     *app.App
	printer *Printer
	logger  zerolog.Logger
}

// Option customises the root command, mostly for tests.
type Option func(*env)

// WithAppOptions is passed on to app.New.
func WithAppOptions(opts ...app.Option) Option {
	return func(e *env) {
		e.appOpts = append(e.appOpts, opts...)
	}
}

// NewRootCmd builds the command tree. Each invocation gets a fresh tree.
func NewRootCmd(options ...Option) *cobra.Command {
	e := &env{}
	for _, opt := range options {
		opt(e)
	}

	rootCmd := &cobra.Command{
		Use:   "sanctyr",
		Short: "Sanctyr member client",
		Long: `sanctyr signs you in to Sanctyr and shows your member dashboard.

Example usage:
  sanctyr login --email you@sanctyr.dev   # Sign in with email and password
  sanctyr login --discord                  # Print the Discord sign in URL
  sanctyr dashboard                        # Show your dashboard
  sanctyr customize --theme astral         # Change your profile theme
  sanctyr profile obsidia                  # Show someone's public profile`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationNoApp: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(cmd.OutOrStdout())
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&e.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&e.apiURL, "api-url", "", "Sanctyr API base URL")
	flags.StringVar(&e.authURL, "auth-url", "", "social sign in base URL (default is the API URL)")
	flags.StringVar(&e.store, "credential-store", "", "where to keep the credential: file, memory or redis")
	flags.StringVar(&e.credPath, "credential-path", "", "credential file for the file store")
	flags.StringVar(&e.colorFlag, "color", "auto", "colour output: auto, always or never")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newLoginCmd(e),
		newSignupCmd(e),
		newCallbackCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newDashboardCmd(e),
		newAnalyticsCmd(e),
		newAchievementsCmd(e),
		newAppsCmd(e),
		newCustomizeCmd(e),
		newSettingsCmd(e),
		newProfileCmd(e),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI with os.Args until ctx is cancelled.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// init loads configuration, binds the flags over it and builds the app.
func (e *env) init(cmd *cobra.Command) error {
	mode, err := ParseColorMode(e.colorFlag)
	if err != nil {
		return err
	}
	e.printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), ResolveColors(mode))

	level := zerolog.WarnLevel
	if e.verbose {
		level = zerolog.DebugLevel
	}
	e.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

	e.cfg, err = config.Load(e.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	v := e.cfg.Viper()
	for key, flag := range map[string]string{
		"api_url":          "api-url",
		"auth_url":         "auth-url",
		"credential.store": "credential-store",
		"credential.path":  "credential-path",
	} {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	e.logger.Debug().
		Str("api_url", e.cfg.GetAPIURL()).
		Str("credential_store", string(e.cfg.GetCredentialStore())).
		Msg("configuration loaded")

	if cmd.Annotations[annotationNoApp] == "true" {
		return nil
	}

	opts := append([]app.Option{app.WithLogger(e.logger)}, e.appOpts...)
	e.app, err = app.New(e.cfg, opts...)
	if err != nil {
		return err
	}
	e.app.Init(cmd.Context())
	return nil
}

func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	return e.app.Close()
}

const annotationNoApp = "noApp"

// signedOutError turns the session errors into the message shown to the member.
func signedOutError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrSessionExpired):
		return errors.New("your session expired, please sign in again (sanctyr login)")
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return errors.New("not signed in, please sign in again (sanctyr login)")
	}
	return err
}

func displayAppname(w io.Writer) {
	fig := figure.NewFigure("Sanctyr", "cybermedium", true)
	fmt.Fprintln(w, fig.String())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the client version",
		Annotations: map[string]string{annotationNoApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sanctyr %s\n", version)
		},
	}
}
