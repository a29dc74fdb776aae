// Package app provides the web application module: the page route table,
// its page components, and the embedded templates they render.
package app

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/JaimeStill/market-board/internal/contents"
	"github.com/JaimeStill/market-board/pkg/routes"
	"github.com/JaimeStill/market-board/pkg/web"
)

//go:embed server/layouts/*
var layoutFS embed.FS

//go:embed server/views/*
var viewFS embed.FS

//go:embed static/*
var staticFS embed.FS

const layout = "app.html"

const unavailableMessage = "Market data is temporarily unavailable. Please try again shortly."

// Module serves every page in the route table plus static assets.
type Module struct {
	handler http.Handler
	entries []routes.Entry
}

// NewModule validates the route table, binds each entry to its page
// component, and parses all templates. basePath prefixes generated URLs.
func NewModule(basePath string, sys contents.System, logger *slog.Logger) (*Module, error) {
	table := Routes()
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}

	components := pages(sys)
	entries := table.Flatten()
	if err := bind(entries, components); err != nil {
		return nil, err
	}

	views := []web.ViewDef{notFoundView}
	for _, p := range components {
		if p.View.Template != "" {
			views = append(views, p.View)
		}
	}

	ts, err := web.NewTemplateSet(
		layoutFS,
		viewFS,
		"server/layouts/*.html",
		"server/views",
		basePath,
		views,
	)
	if err != nil {
		return nil, err
	}

	h := &handler{
		ts:     ts,
		pages:  components,
		logger: logger.With("system", "app"),
	}

	r := web.NewRouter()
	r.SetFallback(ts.ErrorHandler(layout, notFoundView, http.StatusNotFound))

	if err := table.Register(r, http.MethodGet, h.page); err != nil {
		return nil, err
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	r.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return &Module{handler: r, entries: entries}, nil
}

// Handler returns the module's root handler.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Entries returns the flattened route table the module serves.
func (m *Module) Entries() []routes.Entry {
	return append([]routes.Entry(nil), m.entries...)
}

func bind(entries []routes.Entry, components map[string]Page) error {
	var errs []error
	for _, e := range entries {
		p, ok := components[e.Page]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown page %q", e.Path, e.Page))
			continue
		}
		if p.View.Template == "" {
			errs = append(errs, fmt.Errorf("%s: page %q has no view", e.Path, e.Page))
		}
		for _, l := range e.Layouts {
			if _, ok := components[l]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown layout %q", e.Path, l))
			}
		}
	}
	return errors.Join(errs...)
}

type handler struct {
	ts     *web.TemplateSet
	pages  map[string]Page
	logger *slog.Logger
}

func (h *handler) page(e routes.Entry) http.HandlerFunc {
	p := h.pages[e.Page]

	return func(w http.ResponseWriter, r *http.Request) {
		data := web.ViewData{
			Title:   p.View.Title,
			Path:    e.Path,
			Page:    e.Page,
			Layouts: e.Layouts,
		}
		if e.Props {
			data.Props = props(r.URL.Query())
		}

		status := http.StatusOK
		if p.Load != nil {
			v, err := p.Load(r.Context(), data.Props)
			if err != nil {
				h.logger.Warn("page data unavailable", "path", e.Path, "page", e.Page, "error", err)
				status = http.StatusBadGateway
				data.Error = unavailableMessage
			} else {
				data.Data = v
			}
		}

		if err := h.ts.RenderStatus(w, status, layout, p.View.Template, data); err != nil {
			h.logger.Error("render failed", "path", e.Path, "page", e.Page, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func props(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
