package webui

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catalogkit/webcatalog/internal/webserver"
)

func registerHomeRoutes() {
	webserver.UiGET("/", home)
}

func home(c echo.Context) error {
	return render(c, http.StatusOK, "home", map[string]interface{}{
		"Title": "Home",
	})
}
