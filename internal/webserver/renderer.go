package webserver

import (
	"embed"
	"html/template"
	"io"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

var pricePrinter = message.NewPrinter(language.Finnish)

var templateFuncs = template.FuncMap{
	// datetime renders the loosely-formatted timestamps the Mongo-backed
	// API emits; anything unparseable falls through unchanged.
	"datetime": func(raw string) string {
		if raw == "" {
			return "-"
		}
		ts, err := dateparse.ParseAny(raw)
		if err != nil {
			return raw
		}
		return ts.Local().Format("2006-01-02 15:04")
	},
	"money": func(v float64) string {
		return pricePrinter.Sprintf("%.2f", v)
	},
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"inc": func(i int) int {
		return i + 1
	},
}

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	return &renderer{
		templates: template.Must(
			template.New("webcatalog").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
		),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
