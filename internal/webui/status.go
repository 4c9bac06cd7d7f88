package webui

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/catalogkit/webcatalog/internal/webserver"
)

func registerStatusRoutes() {
	webserver.UiGET("/healthz", healthz)
	webserver.UiGET("/status", statusPage)
}

func healthz(c echo.Context) error {
	monitor := GetApp(c).Monitor()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "up",
		"backend_ok": monitor.BackendOK,
		"uptime":     time.Since(monitor.StartedAt).Round(time.Second).String(),
	})
}

func statusPage(c echo.Context) error {
	a := GetApp(c)
	monitor := a.Monitor()
	return render(c, http.StatusOK, "status", map[string]interface{}{
		"Title":      "Status",
		"Monitor":    monitor,
		"BackendURL": a.Config().Backend.BaseURL,
		"Uptime":     time.Since(monitor.StartedAt).Round(time.Second).String(),
	})
}
