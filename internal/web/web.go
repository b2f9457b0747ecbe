// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// FuncMap holds the helpers available to every template.
var FuncMap = template.FuncMap{
	"formatDate": formatDate,
	"dateInput":  dateInput,
}

// LoadTemplates parses every page. Each file is addressable by its base name (e.g. "login.html").
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap).ParseFS(templatesFS, "templates/*.html")
}

// StaticFS serves css and images under /static.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// dateInput formats t for <input type="date">, leaving unset dates empty.
func dateInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
