package cli_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/sanctyr/api"
	"github.com/jrsteele09/sanctyr/app"
	"github.com/jrsteele09/sanctyr/credential/filestore"
	"github.com/jrsteele09/sanctyr/internal/cli"
	"github.com/jrsteele09/sanctyr/internal/config"
	"github.com/jrsteele09/sanctyr/server"
	refreshrepofake "github.com/jrsteele09/sanctyr/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/sanctyr/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	demoEmail    = "ember@sanctyr.dev"
	demoPassword = "Emb3rFlame!"
)

type fixture struct {
	ts       *httptest.Server
	credPath string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	cfg := config.New()
	cfg.Viper().Set("env", "TEST")
	cfg.Viper().Set("demo.password", demoPassword)
	cfg.Viper().Set("security.rate_limit", false)

	srv, err := server.New(cfg, server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, server.WithLogger(zerolog.Nop()), server.WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &fixture{ts: ts, credPath: filepath.Join(t.TempDir(), "credentials.json")}
}

type result struct {
	out    string
	errOut string
	err    error
}

// run executes one CLI invocation, as a separate process would.
func (f *fixture) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	cmd := cli.NewRootCmd(cli.WithAppOptions(app.WithRegisterer(prometheus.NewRegistry())))
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--api-url", f.ts.URL,
		"--credential-store", "file",
		"--credential-path", f.credPath,
		"--color", "never",
	}, args...))

	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	res := f.run(t, "", "login", "--email", demoEmail, "--password", demoPassword)
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Signed in as "+demoEmail)
}

func TestRoot_ShowsBanner(t *testing.T) {
	f := setup(t)
	res := f.run(t, "")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Usage:")
	require.Contains(t, res.out, "dashboard")
}

func TestVersion(t *testing.T) {
	cli.SetVersion("1.2.3")
	t.Cleanup(func() { cli.SetVersion("dev") })

	f := setup(t)
	res := f.run(t, "", "version")
	require.NoError(t, res.err)
	require.Equal(t, "sanctyr 1.2.3\n", res.out)
}

func TestLoginWhoamiLogout(t *testing.T) {
	f := setup(t)

	res := f.run(t, "", "whoami")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "please sign in again")

	f.login(t)

	res = f.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.out, demoEmail)

	res = f.run(t, "", "login", "--email", demoEmail, "--password", demoPassword)
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Already signed in as "+demoEmail)

	res = f.run(t, "", "logout")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Signed out")

	res = f.run(t, "", "whoami")
	require.Error(t, res.err)

	res = f.run(t, "", "dashboard")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "please sign in again")
}

func TestLogin_CorruptCredentialFile(t *testing.T) {
	f := setup(t)
	require.NoError(t, os.WriteFile(f.credPath, []byte("{not json"), 0o600))

	f.login(t)

	res := f.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.out, demoEmail)
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	f := setup(t)
	res := f.run(t, demoPassword+"\n", "login", "--email", demoEmail)
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Signed in as "+demoEmail)
	require.Contains(t, res.errOut, "Password: ")
}

func TestLogin_Rejected(t *testing.T) {
	f := setup(t)

	res := f.run(t, "", "login", "--email", demoEmail, "--password", "Wr0ngPassword")
	require.Error(t, res.err)
	require.Equal(t, "invalid email or password", res.err.Error())

	res = f.run(t, "", "login", "--password", demoPassword)
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "--email is required")
}

func TestLogin_Discord(t *testing.T) {
	f := setup(t)
	res := f.run(t, "", "login", "--discord")
	require.NoError(t, res.err)
	require.Contains(t, res.out, f.ts.URL+api.PathDiscordProvider)
	require.Contains(t, res.out, "sanctyr callback")
}

func TestCallback(t *testing.T) {
	f := setup(t)

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := noFollow.Get(f.ts.URL + api.PathDiscordProvider)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.Contains(t, location, "token=")

	res := f.run(t, "", "callback", location)
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Signed in as ember")

	res = f.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.out, demoEmail)
}

func TestCallback_WithoutToken(t *testing.T) {
	f := setup(t)
	res := f.run(t, "", "callback", "http://localhost:5173/auth/callback?error=denied")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "no token")

	res = f.run(t, "", "whoami")
	require.Error(t, res.err)
}

func TestSignup(t *testing.T) {
	f := setup(t)

	res := f.run(t, "", "signup", "--email", "wick@sanctyr.dev", "--username", "wick", "--password", "weak")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "at least 8 characters")

	res = f.run(t, "", "signup", "--email", demoEmail, "--username", "ember2", "--password", "Passw0rd!")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "already exists")

	res = f.run(t, "", "signup", "--email", "wick@sanctyr.dev", "--username", "wick", "--password", "Passw0rd!")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Welcome to Sanctyr, wick")

	res = f.run(t, "", "dashboard")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "@wick")
}

func TestDashboard(t *testing.T) {
	f := setup(t)
	f.login(t)

	res := f.run(t, "", "dashboard")
	require.NoError(t, res.err)
	for _, want := range []string{
		"Keeper of the First Flame",
		"Flamewarden",
		server.DemoNation,
		"12 days",
		"71h 50m",
		"12500",
		"Claimed the daily ember offering",
		"[connected]",
	} {
		require.Contains(t, res.out, want)
	}
}

func TestAnalytics(t *testing.T) {
	f := setup(t)
	f.login(t)

	res := f.run(t, "", "analytics")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "#the-hearth")
	require.Contains(t, res.out, "Saturday")
	require.Contains(t, res.out, "3675")
}

func TestAchievements(t *testing.T) {
	f := setup(t)
	f.login(t)

	res := f.run(t, "", "achievements")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "4 / 8")
	require.Contains(t, res.out, "Legend of Sanctyr")

	res = f.run(t, "", "achievements", "--unlocked")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Rising Star")
	require.NotContains(t, res.out, "Legend of Sanctyr")
}

func TestApps(t *testing.T) {
	f := setup(t)
	f.login(t)

	res := f.run(t, "", "apps")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Ember Forge")
	require.Contains(t, res.out, "[available]")
}

func TestCustomize(t *testing.T) {
	f := setup(t)
	f.login(t)

	res := f.run(t, "", "customize")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Eternal Queen")
	require.Contains(t, res.out, "void-sovereign")
	require.NotContains(t, res.out, "[locked]")

	res = f.run(t, "", "customize", "--theme", "void-sovereign", "--elite-role", "Eternal Queen",
		"--social", "Forge=https://forge.sanctyr.dev/ember")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Customization saved")

	res = f.run(t, "", "dashboard")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "void-sovereign")
	require.Contains(t, res.out, "Eternal Queen")

	res = f.run(t, "", "customize")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "https://forge.sanctyr.dev/ember")
	require.NotContains(t, res.out, "discord.gg")
}

func TestCustomize_Rejected(t *testing.T) {
	f := setup(t)

	res := f.run(t, "", "signup", "--email", "wick@sanctyr.dev", "--username", "wick", "--password", "Passw0rd!")
	require.NoError(t, res.err)

	res = f.run(t, "", "customize")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "[locked]")

	res = f.run(t, "", "customize", "--theme", "astral")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "locked")

	res = f.run(t, "", "customize", "--theme", "neon")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "unknown theme")

	res = f.run(t, "", "customize", "--elite-role", "Emperor")
	require.Error(t, res.err)

	res = f.run(t, "", "customize", "--social", "no-url")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "platform=url")
}

func TestSettings(t *testing.T) {
	f := setup(t)
	f.login(t)

	res := f.run(t, "", "settings", "--dob", "1999-02-30")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "YYYY-MM-DD")

	res = f.run(t, "", "settings", "--display-name", " ")
	require.Error(t, res.err)

	res = f.run(t, "", "settings", "--display-name", "Ember the Bright", "--dob", "1999-02-14")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Profile saved")

	res = f.run(t, "", "settings")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Ember the Bright")
	require.Contains(t, res.out, "1999-02-14")
}

func TestProfile(t *testing.T) {
	f := setup(t)

	res := f.run(t, "", "profile", "obsidia")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "@obsidia")
	require.Contains(t, res.out, server.DemoNation)
	require.NotContains(t, res.out, "Viewing as")

	res = f.run(t, "", "profile", "nobody-here")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), `no member named "nobody-here"`)

	f.login(t)

	res = f.run(t, "", "profile", "@obsidia")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "Viewing as @ember")

	res = f.run(t, "", "profile", "ember")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "This is your public profile.")
}

func TestSession_RecoveredFromCookie(t *testing.T) {
	f := setup(t)
	f.login(t)

	// the cached credential is no longer accepted, the session cookie still is
	require.NoError(t, filestore.New(f.credPath).Set(context.Background(), "not-a-token"))

	res := f.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.out, demoEmail)

	res = f.run(t, "", "dashboard")
	require.NoError(t, res.err)
}

func TestGuardedCommands_SignedOut(t *testing.T) {
	f := setup(t)
	for _, args := range [][]string{
		{"dashboard"},
		{"analytics"},
		{"achievements"},
		{"apps"},
		{"customize"},
		{"settings"},
	} {
		res := f.run(t, "", args...)
		require.Error(t, res.err, args[0])
		require.Contains(t, res.err.Error(), "please sign in again", args[0])
	}
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]cli.ColorMode{
		"":       cli.ColorAuto,
		"auto":   cli.ColorAuto,
		"always": cli.ColorAlways,
		"never":  cli.ColorNever,
	} {
		got, err := cli.ParseColorMode(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := cli.ParseColorMode("rainbow")
	require.Error(t, err)

	require.True(t, cli.ResolveColors(cli.ColorAlways))
	require.False(t, cli.ResolveColors(cli.ColorNever))
	t.Setenv("NO_COLOR", "1")
	require.False(t, cli.ResolveColors(cli.ColorAuto))
}
