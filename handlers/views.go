package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"blog-service/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// page is the data every template renders.
type page struct {
	User     *models.User
	Error    string
	Username string
}

// Views holds the parsed page templates.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses every page against the shared layout.
func NewViews() (*Views, error) {
	names := []string{"index", "login", "register"}
	views := &Views{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		views.pages[name] = tmpl
	}
	return views, nil
}

// render writes the named page with the given status.
func (v *Views) render(w http.ResponseWriter, status int, name string, data page) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
