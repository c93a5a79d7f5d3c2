// Package view renders the HTML pages.  Templates are embedded in the
// binary; each page is parsed together with the shared layout and
// partials so that every page can define its own "content" block.
package view

import (
    "embed"
    "fmt"
    "html/template"
    "io"
    "io/fs"
    "path"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fyyur/internal/model"
    "github.com/iliyamo/fyyur/internal/utils"
)

//go:embed templates
var files embed.FS

// Page is the value every template receives.  Data holds the page
// specific view model.
type Page struct {
    Title     string
    Flash     *utils.Flash
    CSRFToken string
    Data      any
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
    pages map[string]*template.Template
}

// New parses every page under templates/pages.
func New() (*Renderer, error) {
    names, err := fs.Glob(files, "templates/pages/*.html")
    if err != nil {
        return nil, err
    }
    r := &Renderer{pages: make(map[string]*template.Template, len(names))}
    for _, p := range names {
        name := strings.TrimSuffix(path.Base(p), ".html")
        t, err := template.New(name).Funcs(Funcs()).ParseFS(files,
            "templates/layouts/*.html",
            "templates/partials/*.html",
            p,
        )
        if err != nil {
            return nil, fmt.Errorf("parse %s: %w", name, err)
        }
        r.pages[name] = t
    }
    return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
    _, ok := r.pages[name]
    return ok
}

// Render executes the layout of the named page.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
    t, ok := r.pages[name]
    if !ok {
        return fmt.Errorf("view: unknown page %q", name)
    }
    return t.ExecuteTemplate(w, "layout", data)
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
    return template.FuncMap{
        "datetime": FormatDatetime,
        "join":     strings.Join,
        "contains": contains,
        "genres":   func() []string { return model.Genres },
        "states":   func() []string { return model.States },
    }
}

func contains(list []string, v string) bool {
    for _, s := range list {
        if s == v {
            return true
        }
    }
    return false
}
