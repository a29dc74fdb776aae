package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/market-board/pkg/web"
)

func TestRouterHandleFunc(t *testing.T) {
	r := web.NewRouter()

	called := false
	r.HandleFunc("GET /test", func(w http.ResponseWriter, req *http.Request) {
		called = true
		w.Write([]byte("hello"))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !called {
		t.Error("handler was not called")
	}

	body, _ := io.ReadAll(w.Result().Body)
	if string(body) != "hello" {
		t.Errorf("body = %q, want %q", string(body), "hello")
	}
}

func TestRouterWithoutFallback(t *testing.T) {
	r := web.NewRouter()
	r.Handle("GET /exists", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("exists"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouterSetFallback(t *testing.T) {
	r := web.NewRouter()

	routeCalled := false
	r.HandleFunc("GET /exists", func(w http.ResponseWriter, req *http.Request) {
		routeCalled = true
	})

	fallbackCalled := false
	r.SetFallback(func(w http.ResponseWriter, req *http.Request) {
		fallbackCalled = true
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("custom 404"))
	})

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !fallbackCalled {
		t.Error("fallback handler was not called")
	}
	if w.Body.String() != "custom 404" {
		t.Errorf("body = %q, want %q", w.Body.String(), "custom 404")
	}

	req = httptest.NewRequest(http.MethodGet, "/exists", nil)
	fallbackCalled = false
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !routeCalled {
		t.Error("route handler was not called")
	}
	if fallbackCalled {
		t.Error("fallback should not be called for matched routes")
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := web.NewRouter()
	r.HandleFunc("GET /contents", func(w http.ResponseWriter, req *http.Request) {})

	fallbackCalled := false
	r.SetFallback(func(w http.ResponseWriter, req *http.Request) {
		fallbackCalled = true
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contents", nil))

	if fallbackCalled {
		t.Error("fallback should not be called for a method mismatch")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if allow := w.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("Allow = %q, want it to list GET", allow)
	}
}
