package filestore

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// CookiesKey holds the API session cookies next to the credential.
const CookiesKey = "sanctyr_cookies"

// storedCookie keeps the attributes cookiejar.Jar.Cookies drops. A zero
// Expires is a session cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

type cookieAttrs struct {
	expires  time.Time
	secure   bool
	httpOnly bool
}

func attrsOf(c *http.Cookie, now time.Time) cookieAttrs {
	a := cookieAttrs{expires: c.Expires, secure: c.Secure, httpOnly: c.HttpOnly}
	if c.MaxAge > 0 {
		a.expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	return a
}

var _ http.CookieJar = (*PersistentJar)(nil)

// PersistentJar is a cookie jar whose cookies for one site survive the
// process, so a later run can still exchange the session cookie.
type PersistentJar struct {
	jar  *cookiejar.Jar
	fs   *FileStore
	site *url.URL

	mu      sync.Mutex
	attrs   map[string]cookieAttrs // by cookie name, for site only
	lastErr error
}

// CookieJar returns a jar that persists the cookies of site in the store's file.
func (fs *FileStore) CookieJar(site *url.URL) (*PersistentJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	fs.mu.Lock()
	entries, err := fs.read()
	fs.mu.Unlock()
	if err != nil {
		return nil, err
	}

	pj := &PersistentJar{jar: jar, fs: fs, site: site, attrs: make(map[string]cookieAttrs)}
	if raw := entries[CookiesKey]; raw != "" {
		var stored []storedCookie
		if err := json.Unmarshal([]byte(raw), &stored); err == nil {
			now := time.Now()
			cookies := make([]*http.Cookie, 0, len(stored))
			for _, sc := range stored {
				if !sc.Expires.IsZero() && !sc.Expires.After(now) {
					continue
				}
				cookies = append(cookies, &http.Cookie{
					Name:     sc.Name,
					Value:    sc.Value,
					Path:     "/",
					Expires:  sc.Expires,
					Secure:   sc.Secure,
					HttpOnly: sc.HttpOnly,
				})
				pj.attrs[sc.Name] = cookieAttrs{expires: sc.Expires, secure: sc.Secure, httpOnly: sc.HttpOnly}
			}
			jar.SetCookies(site, cookies)
		}
	}

	return pj, nil
}

func (pj *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return pj.jar.Cookies(u)
}

func (pj *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	pj.jar.SetCookies(u, cookies)
	if u.Host != pj.site.Host {
		return
	}

	now := time.Now()
	pj.mu.Lock()
	for _, c := range cookies {
		pj.attrs[c.Name] = attrsOf(c, now)
	}
	pj.mu.Unlock()

	pj.setErr(pj.save())
}

// Err returns the last persistence failure, if any.
func (pj *PersistentJar) Err() error {
	pj.mu.Lock()
	defer pj.mu.Unlock()
	return pj.lastErr
}

func (pj *PersistentJar) setErr(err error) {
	pj.mu.Lock()
	defer pj.mu.Unlock()
	pj.lastErr = err
}

func (pj *PersistentJar) save() error {
	current := pj.jar.Cookies(pj.site)
	stored := make([]storedCookie, 0, len(current))
	pj.mu.Lock()
	for _, c := range current {
		a := pj.attrs[c.Name]
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value, Expires: a.expires, Secure: a.secure, HttpOnly: a.httpOnly})
	}
	pj.mu.Unlock()

	pj.fs.mu.Lock()
	defer pj.fs.mu.Unlock()

	entries, err := pj.fs.read()
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		if _, ok := entries[CookiesKey]; !ok {
			return nil
		}
		delete(entries, CookiesKey)
		return pj.fs.write(entries)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	entries[CookiesKey] = string(data)
	return pj.fs.write(entries)
}
