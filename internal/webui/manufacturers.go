package webui

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/catalogkit/webcatalog/internal/webserver"
)

type manufacturerPayload struct {
	Name string `form:"name" validate:"required,min=1,max=200"`
}

func registerManufacturerRoutes() {
	webserver.UiGET("/manufacturers", listManufacturers)
	webserver.AuthGET("/manufacturers/new", newManufacturerPage)
	webserver.AuthPOST("/manufacturers/new", createManufacturer)
	webserver.AuthGET("/manufacturers/:id/edit", editManufacturerPage)
	webserver.AuthPOST("/manufacturers/:id/edit", updateManufacturer)
	webserver.AuthPOST("/manufacturers/:id/delete", deleteManufacturer)
}

func listManufacturers(c echo.Context) error {
	manufacturers, err := GetApp(c).API().ListManufacturers(c.Request().Context())
	if err != nil {
		return failBackend(c, err, "Failed to load manufacturers", "/")
	}
	return render(c, http.StatusOK, "manufacturer_list", map[string]interface{}{
		"Title":         "Manufacturers",
		"Manufacturers": manufacturers,
	})
}

func newManufacturerPage(c echo.Context) error {
	return render(c, http.StatusOK, "manufacturer_form", map[string]interface{}{
		"Title":  "Create Manufacturer",
		"Mode":   "create",
		"Action": "/manufacturers/new",
		"Name":   "",
	})
}

func createManufacturer(c echo.Context) error {
	var payload manufacturerPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the manufacturer form", "/manufacturers/new")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Name is required", "/manufacturers/new")
	}

	state := CurrentSession(c)
	name := strings.TrimSpace(payload.Name)
	if _, err := GetApp(c).API().CreateManufacturer(c.Request().Context(), state.Token, name); err != nil {
		return failBackend(c, err, "Failed to create the manufacturer", "/manufacturers/new")
	}
	return flashRedirect(c, "success", "Manufacturer created", "/manufacturers")
}

func editManufacturerPage(c echo.Context) error {
	id := c.Param("id")
	manufacturer, err := GetApp(c).API().GetManufacturer(c.Request().Context(), id)
	if err != nil {
		return failBackend(c, err, "Failed to load the manufacturer", "/manufacturers")
	}
	return render(c, http.StatusOK, "manufacturer_form", map[string]interface{}{
		"Title":  "Edit Manufacturer",
		"Mode":   "edit",
		"Action": "/manufacturers/" + id + "/edit",
		"Name":   manufacturer.Name,
	})
}

func updateManufacturer(c echo.Context) error {
	id := c.Param("id")
	var payload manufacturerPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the manufacturer form", "/manufacturers/"+id+"/edit")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Name is required", "/manufacturers/"+id+"/edit")
	}

	state := CurrentSession(c)
	if err := GetApp(c).API().UpdateManufacturer(c.Request().Context(), state.Token, id, strings.TrimSpace(payload.Name)); err != nil {
		return failBackend(c, err, "Failed to update the manufacturer", "/manufacturers/"+id+"/edit")
	}
	return flashRedirect(c, "success", "Manufacturer updated", "/manufacturers")
}

func deleteManufacturer(c echo.Context) error {
	id := c.Param("id")
	state := CurrentSession(c)
	if err := GetApp(c).API().DeleteManufacturer(c.Request().Context(), state.Token, id); err != nil {
		return failBackend(c, err, "Failed to delete the manufacturer", "/manufacturers")
	}
	return flashRedirect(c, "success", "Manufacturer deleted", "/manufacturers")
}
