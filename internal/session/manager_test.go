package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/golang-jwt/jwt/v4"
	esess "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/catalogkit/webcatalog/config"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "user-1", "username": "alice", "role": "user", "exp": exp.Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

type testRig struct {
	e       *echo.Echo
	m       *Manager
	bus     EventBus.Bus
	cookies []*http.Cookie
	handler echo.HandlerFunc
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	bus := EventBus.New()
	m := NewManager(config.SessionConfig{Name: "testsess", MaxAge: 3600}, "unit-test-secret", bus)
	e := echo.New()
	e.Use(esess.Middleware(m.Store()))
	rig := &testRig{e: e, m: m, bus: bus}
	e.GET("/probe", func(c echo.Context) error { return rig.handler(c) })
	return rig
}

// roundTrip serves one request through the echo stack, carrying cookies
// across calls the way a browser would.
func (r *testRig) roundTrip(t *testing.T, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r.handler = handler

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	r.e.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		r.cookies = set
	}
	return rec
}

func TestLoginThenCheck(t *testing.T) {
	rig := newTestRig(t)
	tok := signedToken(t, time.Now().Add(time.Hour))

	var loginEvent string
	if err := rig.bus.Subscribe(TopicLogin, func(username string) { loginEvent = username }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	rig.roundTrip(t, func(c echo.Context) error {
		if err := rig.m.Login(c, tok, "alice"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		return c.NoContent(http.StatusOK)
	})

	var state State
	rig.roundTrip(t, func(c echo.Context) error {
		state = rig.m.Check(c)
		return c.NoContent(http.StatusOK)
	})

	if !state.LoggedIn {
		t.Fatal("Check() after Login should report logged in")
	}
	if state.Username != "alice" {
		t.Errorf("Username = %q, want alice", state.Username)
	}
	if state.Token != tok {
		t.Error("persisted token not returned by Check")
	}
	if state.Claims == nil || state.Claims.UserID() != "user-1" {
		t.Errorf("Claims = %+v, want decoded claims with sub user-1", state.Claims)
	}
	if loginEvent != "alice" {
		t.Errorf("login event carried %q, want alice", loginEvent)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	rig := newTestRig(t)
	tok := signedToken(t, time.Now().Add(time.Hour))

	var logoutEvent bool
	if err := rig.bus.Subscribe(TopicLogout, func(string) { logoutEvent = true }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	rig.roundTrip(t, func(c echo.Context) error {
		return rig.m.Login(c, tok, "alice")
	})
	rig.roundTrip(t, func(c echo.Context) error {
		return rig.m.Logout(c)
	})

	var state State
	rig.roundTrip(t, func(c echo.Context) error {
		state = rig.m.Check(c)
		return nil
	})

	if state.LoggedIn {
		t.Error("Check() after Logout should report logged out")
	}
	if !logoutEvent {
		t.Error("logout event not published")
	}
}

func TestCheck_ExpiredTokenClearsSession(t *testing.T) {
	rig := newTestRig(t)
	expired := signedToken(t, time.Now().Add(-time.Minute))

	var expiredEvent bool
	if err := rig.bus.Subscribe(TopicExpired, func(string) { expiredEvent = true }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	rig.roundTrip(t, func(c echo.Context) error {
		return rig.m.Login(c, expired, "alice")
	})

	var state State
	rig.roundTrip(t, func(c echo.Context) error {
		state = rig.m.Check(c)
		return nil
	})
	if state.LoggedIn {
		t.Error("expired token must report logged out")
	}
	if !expiredEvent {
		t.Error("expired event not published")
	}

	// Cookie was cleared, so the next check starts from an empty session.
	rig.roundTrip(t, func(c echo.Context) error {
		if got := rig.m.Check(c); got.LoggedIn {
			t.Error("session survived an expiry sweep")
		}
		return nil
	})
}

func TestCheck_MalformedTokenTreatedAsAbsent(t *testing.T) {
	rig := newTestRig(t)

	rig.roundTrip(t, func(c echo.Context) error {
		return rig.m.Login(c, "not-a-jwt", "alice")
	})

	var state State
	rig.roundTrip(t, func(c echo.Context) error {
		state = rig.m.Check(c)
		return nil
	})
	if state.LoggedIn {
		t.Error("malformed token must report logged out")
	}
}

func TestFlashes(t *testing.T) {
	rig := newTestRig(t)

	rig.roundTrip(t, func(c echo.Context) error {
		rig.m.AddFlash(c, "success", "Product created")
		return nil
	})

	var first, second []Flash
	rig.roundTrip(t, func(c echo.Context) error {
		first = rig.m.Flashes(c)
		return nil
	})
	rig.roundTrip(t, func(c echo.Context) error {
		second = rig.m.Flashes(c)
		return nil
	})

	if len(first) != 1 || first[0].Kind != "success" || first[0].Message != "Product created" {
		t.Errorf("Flashes() = %+v, want one success flash", first)
	}
	if len(second) != 0 {
		t.Errorf("flashes should be one-shot, second read got %+v", second)
	}
}

func TestState_ExpiringSoon(t *testing.T) {
	soon := signedToken(t, time.Now().Add(2*time.Minute))
	state := State{LoggedIn: true, Token: soon}
	if !state.ExpiringSoon(5 * time.Minute) {
		t.Error("token 2m from expiry should be inside a 5m warning window")
	}
	far := State{LoggedIn: true, Token: signedToken(t, time.Now().Add(time.Hour))}
	if far.ExpiringSoon(5 * time.Minute) {
		t.Error("token 1h from expiry should not warn at 5m")
	}
	if (State{}).ExpiringSoon(5 * time.Minute) {
		t.Error("logged-out state never warns")
	}
}
