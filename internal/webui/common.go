// Package webui holds the server-rendered catalog views. Each handler is a
// thin request/response state machine: fetch from the backend, map errors
// to flashes or error pages, render a template. No state is shared between
// requests beyond the session cookie.
package webui

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/catalogkit/webcatalog/internal/app"
	"github.com/catalogkit/webcatalog/internal/backend"
	"github.com/catalogkit/webcatalog/internal/session"
	"github.com/catalogkit/webcatalog/internal/webserver"
)

// Init registers every view route on the web server.
func Init() {
	registerHomeRoutes()
	registerAuthRoutes()
	registerProductRoutes()
	registerManufacturerRoutes()
	registerProfileRoutes()
	registerStatusRoutes()
}

func GetApp(c echo.Context) app.WebContext {
	return c.Get(webserver.ContextApp).(app.WebContext)
}

func CurrentSession(c echo.Context) session.State {
	state, _ := c.Get(webserver.ContextSession).(session.State)
	return state
}

// render executes a page template with the common chrome data merged in.
func render(c echo.Context, code int, name string, data map[string]interface{}) error {
	a := GetApp(c)
	state := CurrentSession(c)
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Session"] = state
	data["Flashes"] = a.Sessions().Flashes(c)
	warn := time.Duration(a.Config().Session.ExpiryWarn) * time.Minute
	data["SessionExpiringSoon"] = state.ExpiringSoon(warn)
	if _, ok := data["Title"]; !ok {
		data["Title"] = "WebCatalog"
	}
	return c.Render(code, name, data)
}

func flashRedirect(c echo.Context, kind, message, target string) error {
	GetApp(c).Sessions().AddFlash(c, kind, message)
	return c.Redirect(http.StatusSeeOther, target)
}

// failBackend maps a backend client error to the view response. A session
// expiry clears the session and lands on the login view no matter which
// handler hit it; everything else becomes a flash or an error page and
// never crashes the view.
func failBackend(c echo.Context, err error, fallback, target string) error {
	switch {
	case errors.Is(err, backend.ErrSessionExpired):
		_ = GetApp(c).Sessions().Logout(c)
		return flashRedirect(c, "warning", "Your session has expired. Please log in again.", "/login")
	case errors.Is(err, backend.ErrForbidden):
		return flashRedirect(c, "danger", "You are not authorized for this action.", target)
	case errors.Is(err, backend.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	if ve, ok := backend.AsValidation(err); ok {
		return flashRedirect(c, "danger", ve.Message, target)
	}
	return flashRedirect(c, "danger", fallback, target)
}

// canModify reports whether the session may edit or delete an entity owned
// by ownerID: the owner themselves, or any admin.
func canModify(state session.State, ownerID string) bool {
	if !state.LoggedIn || state.Claims == nil {
		return false
	}
	return state.Claims.IsAdmin() || (ownerID != "" && state.Claims.UserID() == ownerID)
}
