// Package routes declares the static page route table. A Table is a literal
// tree of Routes built once at startup; Flatten resolves it into absolute
// paths for registration with an HTTP multiplexer.
package routes

import (
	"fmt"
	"net/http"
	"strings"
)

// Route maps a path to a page component. Top-level paths are absolute;
// child paths are relative to their parent. An empty child path renders
// the child at the parent's own path.
type Route struct {
	Path     string
	Page     string
	Props    bool
	Children []Route
}

// Table is an ordered set of top-level routes.
type Table []Route

// Entry is a flattened route.
type Entry struct {
	Path string `json:"path" yaml:"path"`
	Page string `json:"page" yaml:"page"`

	// Layouts lists ancestor pages, outermost first, that wrap Page.
	Layouts []string `json:"layouts,omitempty" yaml:"layouts,omitempty"`

	// Props is set when Page or any of its layouts declared Props.
	Props bool `json:"props,omitempty" yaml:"props,omitempty"`
}

// Pattern returns the http.ServeMux pattern matching exactly e.Path.
func (e Entry) Pattern(method string) string {
	path := e.Path
	if path == "/" {
		path = "/{$}"
	}
	if method == "" {
		return path
	}
	return method + " " + path
}

// Join resolves a child path against its parent.
func Join(parent, child string) string {
	if child == "" {
		return parent
	}
	return strings.TrimRight(parent, "/") + "/" + strings.TrimLeft(child, "/")
}

// Validate checks that top-level paths are absolute, child paths are
// relative, every route names a page, sibling paths are unique, and no two
// flattened entries share a path.
func (t Table) Validate() error {
	if err := validateSiblings(t, "", true); err != nil {
		return err
	}

	seen := make(map[string]string)
	for _, e := range t.Flatten() {
		if prev, ok := seen[e.Path]; ok {
			return fmt.Errorf("%w: %s (pages %s and %s)", ErrDuplicatePath, e.Path, prev, e.Page)
		}
		seen[e.Path] = e.Page
	}
	return nil
}

func validateSiblings(routes []Route, parent string, top bool) error {
	seen := make(map[string]bool, len(routes))

	for _, r := range routes {
		if r.Page == "" {
			return fmt.Errorf("%w: %q", ErrMissingPage, Join(parent, r.Path))
		}

		if top && !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("%w: top-level path %q must start with /", ErrInvalidPath, r.Path)
		}
		if !top && strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("%w: child path %q under %s must be relative", ErrInvalidPath, r.Path, parent)
		}

		if seen[r.Path] {
			return fmt.Errorf("%w: %q under %q", ErrDuplicatePath, r.Path, parent)
		}
		seen[r.Path] = true

		if err := validateSiblings(r.Children, Join(parent, r.Path), false); err != nil {
			return err
		}
	}
	return nil
}

// Flatten resolves the table into entries in declaration order. A route with
// children contributes its own entry only when no child renders at its path.
func (t Table) Flatten() []Entry {
	var entries []Entry
	for _, r := range t {
		entries = flatten(entries, r, "", nil, false)
	}
	return entries
}

func flatten(entries []Entry, r Route, parent string, layouts []string, props bool) []Entry {
	path := Join(parent, r.Path)
	props = props || r.Props

	if !hasIndexChild(r) {
		entries = append(entries, Entry{
			Path:    path,
			Page:    r.Page,
			Layouts: layouts,
			Props:   props,
		})
	}

	if len(r.Children) == 0 {
		return entries
	}

	childLayouts := append(append([]string(nil), layouts...), r.Page)
	for _, child := range r.Children {
		entries = flatten(entries, child, path, childLayouts, props)
	}
	return entries
}

func hasIndexChild(r Route) bool {
	for _, c := range r.Children {
		if c.Path == "" {
			return true
		}
	}
	return false
}

// Mux is the subset of http.ServeMux used by Register.
type Mux interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// Register flattens t and registers handler(entry) for each entry under
// method. The table is validated first.
func (t Table) Register(mux Mux, method string, handler func(Entry) http.HandlerFunc) error {
	if err := t.Validate(); err != nil {
		return err
	}
	for _, e := range t.Flatten() {
		mux.HandleFunc(e.Pattern(method), handler(e))
	}
	return nil
}
