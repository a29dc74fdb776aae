package web

import (
	"bytes"
	"net/http"
)

// Router wraps http.ServeMux with a fallback handler invoked when no
// registered pattern matches the path for any method. Method mismatches keep
// the mux's 405 response and Allow header.
type Router struct {
	mux      *http.ServeMux
	fallback http.HandlerFunc
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	r.mux.HandleFunc(pattern, handler)
}

// SetFallback sets the handler for unmatched requests.
func (r *Router) SetFallback(handler http.HandlerFunc) {
	r.fallback = handler
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.fallback == nil {
		r.mux.ServeHTTP(w, req)
		return
	}

	h, pattern := r.mux.Handler(req)
	if pattern != "" {
		r.mux.ServeHTTP(w, req)
		return
	}

	// Unmatched requests resolve to the mux's 404, 405, or redirect handler.
	// Capture it to tell them apart.
	rec := &capture{header: make(http.Header), status: http.StatusOK}
	h.ServeHTTP(rec, req)
	if rec.status == http.StatusNotFound {
		r.fallback(w, req)
		return
	}

	for k, v := range rec.header {
		w.Header()[k] = v
	}
	w.WriteHeader(rec.status)
	w.Write(rec.body.Bytes())
}

type capture struct {
	header http.Header
	status int
	body   bytes.Buffer
	wrote  bool
}

func (c *capture) Header() http.Header { return c.header }

func (c *capture) WriteHeader(status int) {
	if c.wrote {
		return
	}
	c.status = status
	c.wrote = true
}

func (c *capture) Write(b []byte) (int, error) {
	c.wrote = true
	return c.body.Write(b)
}
