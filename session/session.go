// Package session wraps the signed cookie that carries the logged in user.
package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"
	userIDKey  = "user_id"

	// DefaultLifetime bounds how long a browser-session cookie is accepted.
	DefaultLifetime = 31 * 24 * time.Hour
)

// Options configures the session cookie.
type Options struct {
	SecretKey []byte
	Secure    bool
	// MaxAge of zero keeps the cookie for the browser session.
	MaxAge time.Duration
	// Lifetime limits the age of a browser-session cookie on read. Zero
	// means DefaultLifetime. Ignored when MaxAge is set.
	Lifetime time.Duration
}

// Store reads and writes sessions held in a tamper-evident cookie.
type Store struct {
	cookies *sessions.CookieStore
}

// NewStore returns a Store signing cookies with opts.SecretKey.
func NewStore(opts Options) *Store {
	cookies := sessions.NewCookieStore(opts.SecretKey)
	cookies.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(int(opts.MaxAge / time.Second))
	if opts.MaxAge == 0 {
		lifetime := opts.Lifetime
		if lifetime <= 0 {
			lifetime = DefaultLifetime
		}
		// the browser keeps the cookie until it closes; the signature check
		// still rejects one older than lifetime
		for _, codec := range cookies.Codecs {
			if sc, ok := codec.(*securecookie.SecureCookie); ok {
				sc.MaxAge(int(lifetime / time.Second))
			}
		}
	}
	return &Store{cookies: cookies}
}

// Session is the decoded session of one request.
type Session struct {
	raw *sessions.Session
}

// Get returns the request's session. A missing, expired or tampered cookie
// yields an empty session together with the decoding error, which callers
// may log and otherwise ignore.
func (s *Store) Get(r *http.Request) (*Session, error) {
	raw, err := s.cookies.Get(r, CookieName)
	if raw == nil {
		raw = sessions.NewSession(s.cookies, CookieName)
		opts := *s.cookies.Options
		raw.Options = &opts
		raw.IsNew = true
	}
	return &Session{raw: raw}, err
}

// UserID returns the logged in user's id, if any.
func (s *Session) UserID() (int64, bool) {
	id, ok := s.raw.Values[userIDKey].(int64)
	return id, ok
}

// SetUserID stores the logged in user's id.
func (s *Session) SetUserID(id int64) {
	s.raw.Values[userIDKey] = id
}

// Clear drops every value from the session.
func (s *Session) Clear() {
	s.raw.Values = make(map[interface{}]interface{})
}

// Save writes the session cookie to w.
func (s *Session) Save(r *http.Request, w http.ResponseWriter) error {
	return s.raw.Save(r, w)
}

// Destroy clears the session and expires its cookie.
func (s *Session) Destroy(r *http.Request, w http.ResponseWriter) error {
	s.Clear()
	s.raw.Options.MaxAge = -1
	return s.raw.Save(r, w)
}
