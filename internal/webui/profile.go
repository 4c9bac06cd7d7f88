package webui

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/catalogkit/webcatalog/internal/backend"
	"github.com/catalogkit/webcatalog/internal/webserver"
)

type passwordPayload struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,min=5"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
}

func registerProfileRoutes() {
	webserver.AuthGET("/my", myPage)
	webserver.AuthPOST("/my/password", changePassword)
}

// myPage shows the current user and the products they own. The backend has
// no owner-scoped listing, so the full list is fetched and filtered by the
// owner id.
func myPage(c echo.Context) error {
	state := CurrentSession(c)
	api := GetApp(c).API()

	var (
		user     *backend.User
		products []backend.Product
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		user, err = api.CurrentUser(ctx, state.Token)
		return err
	})
	g.Go(func() (err error) {
		products, err = api.ListProducts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return failBackend(c, err, "Failed to load user data", "/")
	}

	own := make([]backend.Product, 0)
	for _, p := range products {
		if p.UserID == user.ID {
			own = append(own, p)
		}
	}

	return render(c, http.StatusOK, "profile", map[string]interface{}{
		"Title":    "My Page",
		"User":     user,
		"Products": own,
		"Summary":  summarize(own),
	})
}

func changePassword(c echo.Context) error {
	var payload passwordPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the password form", "/my")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Password must be at least 5 characters long", "/my")
	}
	if payload.NewPassword != payload.ConfirmPassword {
		return flashRedirect(c, "danger", "New passwords do not match", "/my")
	}

	state := CurrentSession(c)
	err := GetApp(c).API().ChangePassword(c.Request().Context(), state.Token, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		return failBackend(c, err, "Failed to change the password", "/my")
	}
	return flashRedirect(c, "success", "Password changed successfully", "/my")
}
