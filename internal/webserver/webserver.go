// Package webserver owns the echo instance: middleware, template
// rendering, and the route registrars the view layer uses. The session
// guard lives here so every protected route gets the same redirect
// behavior.
package webserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	esess "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/catalogkit/webcatalog/internal/app"
	"github.com/catalogkit/webcatalog/internal/session"
)

const (
	// ContextApp and ContextSession are the echo context keys the view
	// layer reads back.
	ContextApp     = "webcatalog_app"
	ContextSession = "webcatalog_session"
)

type WebServer struct {
	root   *echo.Echo
	appctx app.WebContext
}

var server *WebServer

// Init builds the global web server around the application context.
func Init(appctx app.WebContext) {
	server = New(appctx)
}

func New(appctx app.WebContext) *WebServer {
	ws := &WebServer{appctx: appctx}
	ws.root = echo.New()
	ws.root.HideBanner = true
	ws.root.Validator = &payloadValidator{validate: validator.New()}
	ws.root.Renderer = newRenderer()

	ws.root.Use(middleware.Recover())
	ws.root.Use(middleware.RequestID())
	ws.root.Use(esess.Middleware(appctx.Sessions().Store()))
	ws.root.Use(ws.injectContext)
	ws.root.Use(requestLogger)

	ws.root.HTTPErrorHandler = ws.errorHandler
	return ws
}

// injectContext makes the application and the per-request session state
// available to handlers. The session is re-derived from the cookie on
// every request; nothing is cached between requests.
func (ws *WebServer) injectContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ContextApp, ws.appctx)
		c.Set(ContextSession, ws.appctx.Sessions().Check(c))
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		zap.L().Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return err
	}
}

// requireSession gates a route behind an active session; logged-out
// requests are redirected to the login view.
func (ws *WebServer) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state, _ := c.Get(ContextSession).(session.State)
		if !state.LoggedIn {
			ws.appctx.Sessions().AddFlash(c, "warning", "Please log in to continue to "+c.Request().URL.Path)
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

func (ws *WebServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "Something went wrong"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}
	if code == http.StatusNotFound {
		message = "Page not found"
	}
	state, _ := c.Get(ContextSession).(session.State)
	if rerr := c.Render(code, "error", map[string]interface{}{
		"Title":   "Error",
		"Status":  code,
		"Message": message,
		"Session": state,
	}); rerr != nil {
		_ = c.String(code, message)
	}
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// ServeHTTP lets tests drive the full middleware stack directly.
func (ws *WebServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws.root.ServeHTTP(w, r)
}

func Instance() *WebServer {
	return server
}

// Listen starts the HTTP listener and blocks until shutdown.
func Listen() error {
	cfg := server.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}

// UiGET registers a public view route.
func UiGET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h)
}

// UiPOST registers a public form route.
func UiPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}

// AuthGET registers a view route behind the session guard.
func AuthGET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h, server.requireSession)
}

// AuthPOST registers a form route behind the session guard.
func AuthPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h, server.requireSession)
}
