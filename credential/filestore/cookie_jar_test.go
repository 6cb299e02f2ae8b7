package filestore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/sanctyr/credential/filestore"
	"github.com/stretchr/testify/require"
)

func TestPersistentJar_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	site, err := url.Parse("http://localhost:5001")
	require.NoError(t, err)

	fs := filestore.New(path)
	require.NoError(t, fs.Set(context.Background(), "token-1"))

	jar, err := fs.CookieJar(site)
	require.NoError(t, err)
	jar.SetCookies(site.JoinPath("/api/auth/login"), []*http.Cookie{{Name: "sanctyr_refresh", Value: "abc", Path: "/"}})
	require.NoError(t, jar.Err())

	restarted, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	cookies := restarted.Cookies(site.JoinPath("/api/auth/refresh-token"))
	require.Len(t, cookies, 1)
	require.Equal(t, "abc", cookies[0].Value)

	cred, err := filestore.New(path).Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-1", cred, "cookies do not clobber the credential")

	restarted.SetCookies(site, []*http.Cookie{{Name: "sanctyr_refresh", Value: "", Path: "/", MaxAge: -1}})
	again, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	require.Empty(t, again.Cookies(site))
}

func TestPersistentJar_IgnoresOtherSites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	site, _ := url.Parse("http://localhost:5001")
	other, _ := url.Parse("http://example.com")

	jar, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	jar.SetCookies(other, []*http.Cookie{{Name: "tracking", Value: "1", Path: "/"}})

	restarted, err := filestore.New(path).CookieJar(other)
	require.NoError(t, err)
	require.Empty(t, restarted.Cookies(other))
}

func TestPersistentJar_KeepsExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	site, _ := url.Parse("http://localhost:5001")
	expires := time.Now().Add(time.Hour).Truncate(time.Second).UTC()

	jar, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	jar.SetCookies(site, []*http.Cookie{{Name: "sanctyr_refresh", Value: "abc", Path: "/", Expires: expires, HttpOnly: true}})
	require.NoError(t, jar.Err())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries map[string]string
	require.NoError(t, json.Unmarshal(data, &entries))
	var stored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[filestore.CookiesKey]), &stored))
	require.Len(t, stored, 1)
	require.Equal(t, expires.Format(time.RFC3339), stored[0]["expires"])
	require.Equal(t, true, stored[0]["http_only"])

	restarted, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	require.Len(t, restarted.Cookies(site), 1)
}

func TestPersistentJar_DropsExpiredCookiesOnRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	site, _ := url.Parse("http://localhost:5001")

	stored := `[{"name":"sanctyr_refresh","value":"old","expires":"2001-01-01T00:00:00Z"},{"name":"sanctyr_pref","value":"dark"}]`
	data, err := json.Marshal(map[string]string{filestore.CookiesKey: stored})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	jar, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	cookies := jar.Cookies(site)
	require.Len(t, cookies, 1)
	require.Equal(t, "sanctyr_pref", cookies[0].Name)
}

func TestPersistentJar_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	site, _ := url.Parse("http://localhost:5001")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	jar, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	require.Empty(t, jar.Cookies(site))

	jar.SetCookies(site, []*http.Cookie{{Name: "sanctyr_refresh", Value: "abc", Path: "/"}})
	require.NoError(t, jar.Err())

	restarted, err := filestore.New(path).CookieJar(site)
	require.NoError(t, err)
	require.Len(t, restarted.Cookies(site), 1)
}
