package api

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/matheus3301/chatterm/internal/store"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// CookieStore persists cookies between runs.
type CookieStore interface {
	UpsertCookie(c *store.Cookie) error
	DeleteCookie(url, name string) error
	ClearCookies(url string) error
	ListCookies(url string) ([]store.Cookie, error)
}

// PersistentJar is an http.CookieJar that mirrors the backend's cookies
// into a CookieStore so a login survives restarts.
type PersistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	store  CookieStore
	origin *url.URL
	key    string
	logger *zap.Logger
}

// NewPersistentJar creates a jar for baseURL and loads previously stored cookies.
func NewPersistentJar(s CookieStore, baseURL string, logger *zap.Logger) (*PersistentJar, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	j := &PersistentJar{jar: jar, store: s, origin: origin, key: baseURL, logger: logger}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PersistentJar) load() error {
	stored, err := j.store.ListCookies(j.key)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		c := &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Secure:   sc.Secure,
			HttpOnly: sc.HTTPOnly,
		}
		if sc.Expires > 0 {
			c.Expires = time.UnixMilli(sc.Expires)
		}
		cookies = append(cookies, c)
	}
	if len(cookies) > 0 {
		j.jar.SetCookies(j.origin, cookies)
		j.logger.Debug("restored cookies", zap.Int("count", len(cookies)))
	}
	return nil
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	if u.Host != j.origin.Host {
		return
	}

	now := time.Now()
	for _, c := range cookies {
		var err error
		if expired(c, now) {
			err = j.store.DeleteCookie(j.key, c.Name)
		} else {
			err = j.store.UpsertCookie(&store.Cookie{
				URL:      j.key,
				Name:     c.Name,
				Value:    c.Value,
				Path:     c.Path,
				Domain:   c.Domain,
				Expires:  expiresAt(c, now),
				Secure:   c.Secure,
				HTTPOnly: c.HttpOnly,
			})
		}
		if err != nil {
			j.logger.Warn("persist cookie failed", zap.String("name", c.Name), zap.Error(err))
		}
	}
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// OriginCookies returns the cookies that would be sent to the backend origin.
// The websocket dialer uses it because ws:// URLs are not served by cookiejar.
func (j *PersistentJar) OriginCookies() []*http.Cookie {
	return j.jar.Cookies(j.origin)
}

// Clear forgets every cookie, in memory and on disk.
func (j *PersistentJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	expired := make([]*http.Cookie, 0)
	for _, c := range j.jar.Cookies(j.origin) {
		expired = append(expired, &http.Cookie{Name: c.Name, Value: "", Path: "/", MaxAge: -1})
	}
	if len(expired) > 0 {
		j.jar.SetCookies(j.origin, expired)
	}
	return j.store.ClearCookies(j.key)
}

func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

func expiresAt(c *http.Cookie, now time.Time) int64 {
	if c.MaxAge > 0 {
		return now.Add(time.Duration(c.MaxAge) * time.Second).UnixMilli()
	}
	if !c.Expires.IsZero() {
		return c.Expires.UnixMilli()
	}
	return 0
}
