// Package web provides infrastructure for serving server-rendered pages with
// Go templates. Templates are parsed once at startup; each view is cloned
// from the shared layouts so views can define their own blocks.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef names a view template and its page title.
type ViewDef struct {
	Name     string
	Template string
	Title    string
}

// ViewData is passed to templates during rendering.
// BasePath enables portable URL generation in templates via {{ .BasePath }}.
type ViewData struct {
	Title    string
	BasePath string
	Path     string
	Page     string
	Layouts  []string
	Props    map[string]string
	Data     any
	Error    string
}

// TemplateSet holds pre-parsed view templates keyed by template file name.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
}

// NewTemplateSet parses the layouts matched by layoutGlob and clones them
// once per view, parsing the view file from viewSubdir on top. Parsing at
// startup fails fast on template errors.
func NewTemplateSet(layoutFS, viewFS fs.FS, layoutGlob, viewSubdir, basePath string, views []ViewDef) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(funcs(basePath)).ParseFS(layoutFS, layoutGlob)
	if err != nil {
		return nil, err
	}

	viewSub, err := fs.Sub(viewFS, viewSubdir)
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*template.Template, len(views))
	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(viewSub, v.Template); err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", v.Template, err)
		}
		parsed[v.Template] = t
	}

	return &TemplateSet{
		views:    parsed,
		basePath: basePath,
	}, nil
}

// BasePath returns the base path templates use for URL generation.
func (ts *TemplateSet) BasePath() string {
	return ts.basePath
}

// Render writes the named layout for the given view with status 200.
func (ts *TemplateSet) Render(w http.ResponseWriter, layout, view string, data ViewData) error {
	return ts.RenderStatus(w, http.StatusOK, layout, view, data)
}

// RenderStatus executes the layout into a buffer and, on success, writes it
// with the given status. Nothing is written when execution fails.
func (ts *TemplateSet) RenderStatus(w http.ResponseWriter, status int, layout, view string, data ViewData) error {
	t, ok := ts.views[view]
	if !ok {
		return fmt.Errorf("template not found: %s", view)
	}

	if data.BasePath == "" {
		data.BasePath = ts.basePath
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layout, data); err != nil {
		return fmt.Errorf("execute %s: %w", view, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// ErrorHandler returns a handler that renders view with the given status.
func (ts *TemplateSet) ErrorHandler(layout string, view ViewDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ViewData{Title: view.Title, Path: r.URL.Path, Page: view.Name}
		if err := ts.RenderStatus(w, status, layout, view.Template, data); err != nil {
			http.Error(w, http.StatusText(status), status)
		}
	}
}

func funcs(basePath string) template.FuncMap {
	return template.FuncMap{
		"url": func(path string) string {
			if basePath == "" || basePath == "/" {
				return path
			}
			return basePath + path
		},
	}
}
