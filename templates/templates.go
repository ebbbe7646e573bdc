// Package templates holds the embedded HTML templates and static assets.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"warbler/dto"
)

//go:embed html static
var files embed.FS

// Renderer executes named pages inside the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page under html/pages together with the layout files.
// Pages are named after their file without extension, e.g. "users_show".
func New() (*Renderer, error) {
	layouts, err := fs.Glob(files, "html/layout/*.html")
	if err != nil {
		return nil, err
	}
	pages, err := fs.Glob(files, "html/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		patterns := append([]string{page}, layouts...)
		tmpl, err := template.New(name).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Has reports whether a page with that name exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render writes the page with the given status. Nothing is written when
// execution fails, so the caller can still send an error response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page dto.Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", page); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded assets, rooted so /static/css/style.css
// maps to static/css/style.css.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
