package webui

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/catalogkit/webcatalog/internal/webserver"
)

type loginPayload struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerPayload struct {
	Username        string `form:"username" validate:"required,min=3,max=60"`
	Password        string `form:"password" validate:"required,min=5"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.UiGET("/login", loginPage)
	webserver.UiPOST("/login", login)
	webserver.UiGET("/register", registerPage)
	webserver.UiPOST("/register", registerUser)
	webserver.UiGET("/logout", logout)
}

func loginPage(c echo.Context) error {
	if CurrentSession(c).LoggedIn {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return render(c, http.StatusOK, "login", map[string]interface{}{
		"Title": "Login",
	})
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the login form", "/login")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Username and password are required", "/login")
	}

	username := strings.TrimSpace(payload.Username)
	tok, err := GetApp(c).API().Login(c.Request().Context(), username, payload.Password)
	if err != nil {
		return failBackend(c, err, "Login failed", "/login")
	}

	if err := GetApp(c).Sessions().Login(c, tok, username); err != nil {
		return flashRedirect(c, "danger", "Failed to start a session", "/login")
	}
	return flashRedirect(c, "success", "Login successful", "/")
}

func registerPage(c echo.Context) error {
	if CurrentSession(c).LoggedIn {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return render(c, http.StatusOK, "register", map[string]interface{}{
		"Title": "Register",
	})
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the registration form", "/register")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Username is required and the password must be at least 5 characters", "/register")
	}
	if payload.Password != payload.ConfirmPassword {
		return flashRedirect(c, "danger", "Passwords do not match", "/register")
	}

	username := strings.TrimSpace(payload.Username)
	if err := GetApp(c).API().Register(c.Request().Context(), username, payload.Password); err != nil {
		return failBackend(c, err, "Registration failed", "/register")
	}
	return flashRedirect(c, "success", "Registration successful. Please log in.", "/login")
}

// logout clears the session and lands on the login view with a fresh
// page load, discarding everything tied to the old session.
func logout(c echo.Context) error {
	_ = GetApp(c).Sessions().Logout(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}
