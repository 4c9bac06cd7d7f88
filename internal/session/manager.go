// Package session holds the browser-facing authentication state: the
// backend access token and username, persisted in an encrypted cookie.
// Login state is re-derived from the cookie on every request, so an expired
// token is noticed at the next interaction no matter which view triggers it.
package session

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/sessions"
	esess "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/pbkdf2"

	"github.com/catalogkit/webcatalog/config"
	"github.com/catalogkit/webcatalog/internal/token"
)

// Bus topics published on session transitions. Interested components
// subscribe instead of watching storage side effects.
const (
	TopicLogin   = "session.login"
	TopicLogout  = "session.logout"
	TopicExpired = "session.expired"
)

const (
	keyToken    = "token"
	keyUsername = "username"
)

// Flash is a one-shot notification surfaced on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// State is the session snapshot a request sees. Claims is nil when logged
// out.
type State struct {
	LoggedIn bool
	Username string
	Token    string
	Claims   *token.Claims
}

// ExpiringSoon reports whether the session token passes into the warning
// window.
func (s State) ExpiringSoon(within time.Duration) bool {
	return s.LoggedIn && token.ExpiringSoon(s.Token, within)
}

type Manager struct {
	cfg   config.SessionConfig
	store *sessions.CookieStore
	bus   EventBus.Bus
}

// NewManager derives the cookie auth and encryption keys from the web
// secret and prepares the backing cookie store.
func NewManager(cfg config.SessionConfig, secret string, bus EventBus.Bus) *Manager {
	authKey := pbkdf2.Key([]byte(secret), []byte("webcatalog-cookie-auth"), 4096, 32, sha256.New)
	encKey := pbkdf2.Key([]byte(secret), []byte("webcatalog-cookie-enc"), 4096, 32, sha256.New)
	store := sessions.NewCookieStore(authKey, encKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{cfg: cfg, store: store, bus: bus}
}

// Store exposes the cookie store for the echo session middleware.
func (m *Manager) Store() sessions.Store {
	return m.store
}

func (m *Manager) get(c echo.Context) *sessions.Session {
	// An undecodable cookie yields a fresh session alongside the error,
	// which is exactly the "treat malformed as absent" behavior we want.
	sess, _ := esess.Get(m.cfg.Name, c)
	return sess
}

// Login persists the token and username and marks the session active.
func (m *Manager) Login(c echo.Context, tok, username string) error {
	sess := m.get(c)
	sess.Values[keyToken] = tok
	sess.Values[keyUsername] = username
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	m.bus.Publish(TopicLogin, username)
	return nil
}

// Logout discards the persisted token and username.
func (m *Manager) Logout(c echo.Context) error {
	return m.clear(c, TopicLogout)
}

func (m *Manager) clear(c echo.Context, topic string) error {
	sess := m.get(c)
	username, _ := sess.Values[keyUsername].(string)
	delete(sess.Values, keyToken)
	delete(sess.Values, keyUsername)
	sess.Options.MaxAge = -1
	err := sess.Save(c.Request(), c.Response())
	// Later saves in the same request (a logout flash, for instance) must
	// issue a live cookie again, not an expired one.
	sess.Options.MaxAge = m.cfg.MaxAge
	if err != nil {
		return err
	}
	m.bus.Publish(topic, username)
	return nil
}

// Check recomputes login state from the cookie. A missing, malformed, or
// expired token all come back as logged-out; the expired case also clears
// the cookie so later requests start clean. Check never fails.
func (m *Manager) Check(c echo.Context) State {
	sess := m.get(c)
	tok, _ := sess.Values[keyToken].(string)
	if tok == "" {
		return State{}
	}
	if token.IsExpired(tok) {
		_ = m.clear(c, TopicExpired)
		return State{}
	}
	claims, err := token.Decode(tok)
	if err != nil {
		_ = m.clear(c, TopicExpired)
		return State{}
	}
	username, _ := sess.Values[keyUsername].(string)
	return State{LoggedIn: true, Username: username, Token: tok, Claims: claims}
}

// AddFlash queues a one-shot notification for the next rendered page.
func (m *Manager) AddFlash(c echo.Context, kind, message string) {
	sess := m.get(c)
	sess.AddFlash(Flash{Kind: kind, Message: message})
	_ = sess.Save(c.Request(), c.Response())
}

// Flashes drains the queued notifications.
func (m *Manager) Flashes(c echo.Context) []Flash {
	sess := m.get(c)
	raw := sess.Flashes()
	if len(raw) > 0 {
		_ = sess.Save(c.Request(), c.Response())
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
