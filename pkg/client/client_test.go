package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/market-board/pkg/client"
	"github.com/JaimeStill/market-board/pkg/logging"
)

// tokenStub is a TokenProvider whose value can change between requests.
type tokenStub struct {
	mu    sync.Mutex
	token string
	err   error
	reads int
}

func (s *tokenStub) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.token, s.err
}

func (s *tokenStub) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

type captured struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

func newServer(t *testing.T) (*httptest.Server, func() []captured) {
	t.Helper()

	var mu sync.Mutex
	var reqs []captured

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, captured{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		mu.Unlock()

		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		case "/large":
			w.Write([]byte(strings.Repeat("x", 2048)))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":200}`))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), reqs...)
	}
}

func newConfig(t *testing.T, baseURL string, profile client.Profile) *client.Config {
	t.Helper()
	cfg := &client.Config{BaseURL: baseURL, Profile: profile}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	return cfg
}

func newClient(t *testing.T, cfg *client.Config, tokens client.TokenProvider) *client.Client {
	t.Helper()
	c, err := client.New(context.Background(), cfg, tokens, logging.Discard())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func issueAll(t *testing.T, c *client.Client) {
	t.Helper()
	ctx := context.Background()
	calls := []func() (*client.Response, error){
		func() (*client.Response, error) { return c.Get(ctx, "contents") },
		func() (*client.Response, error) { return c.Post(ctx, "contents", map[string]string{"a": "b"}) },
		func() (*client.Response, error) { return c.Put(ctx, "contents/1", map[string]string{"a": "c"}) },
		func() (*client.Response, error) { return c.Delete(ctx, "contents/1") },
	}
	for _, call := range calls {
		if _, err := call(); err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}
}

func TestStaticProfile_AttachesBearerOnEveryRequest(t *testing.T) {
	srv, requests := newServer(t)
	tokens := &tokenStub{token: "T"}
	c := newClient(t, newConfig(t, srv.URL, client.ProfileStatic), tokens)

	issueAll(t, c)

	reqs := requests()
	if len(reqs) != 4 {
		t.Fatalf("server saw %d requests, want 4", len(reqs))
	}
	for _, r := range reqs {
		if got := r.Header.Get("Authorization"); got != "Bearer T" {
			t.Errorf("%s Authorization = %q, want %q", r.Method, got, "Bearer T")
		}
	}
	if tokens.reads != 1 {
		t.Errorf("token reads = %d, want exactly 1 at construction", tokens.reads)
	}
}

func TestNoneProfile_OmitsAuthorization(t *testing.T) {
	srv, requests := newServer(t)
	tokens := &tokenStub{token: "T"}
	c := newClient(t, newConfig(t, srv.URL, client.ProfileNone), tokens)

	issueAll(t, c)

	for _, r := range requests() {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("%s carried Authorization header %q", r.Method, r.Header.Get("Authorization"))
		}
	}
	if tokens.reads != 0 {
		t.Errorf("token reads = %d, want 0", tokens.reads)
	}
}

func TestNoneProfile_NilProvider(t *testing.T) {
	cfg := newConfig(t, "http://example.test/", client.ProfileNone)
	if _, err := client.New(context.Background(), cfg, nil, logging.Discard()); err != nil {
		t.Errorf("New() with nil provider and none profile error = %v", err)
	}
}

func TestTokenProfiles_RequireProvider(t *testing.T) {
	for _, p := range []client.Profile{client.ProfileStatic, client.ProfileLive} {
		t.Run(string(p), func(t *testing.T) {
			cfg := newConfig(t, "http://example.test/", p)
			_, err := client.New(context.Background(), cfg, nil, logging.Discard())
			if !errors.Is(err, client.ErrTokenProviderRequired) {
				t.Errorf("New() error = %v, want ErrTokenProviderRequired", err)
			}
		})
	}
}

func TestStaticProfile_SnapshotSurvivesTokenChange(t *testing.T) {
	srv, requests := newServer(t)
	tokens := &tokenStub{token: "first"}
	c := newClient(t, newConfig(t, srv.URL, client.ProfileStatic), tokens)

	tokens.set("second")

	if _, err := c.Get(context.Background(), "contents"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	got := requests()[0].Header.Get("Authorization")
	if got != "Bearer first" {
		t.Errorf("Authorization = %q, want construction-time snapshot %q", got, "Bearer first")
	}
}

func TestLiveProfile_ReadsTokenPerRequest(t *testing.T) {
	srv, requests := newServer(t)
	tokens := &tokenStub{token: "first"}
	c := newClient(t, newConfig(t, srv.URL, client.ProfileLive), tokens)

	ctx := context.Background()
	c.Get(ctx, "contents")
	tokens.set("second")
	c.Get(ctx, "contents")
	tokens.set("")
	c.Get(ctx, "contents")

	reqs := requests()
	want := []string{"Bearer first", "Bearer second", ""}
	for i, w := range want {
		if got := reqs[i].Header.Get("Authorization"); got != w {
			t.Errorf("request %d Authorization = %q, want %q", i, got, w)
		}
	}
}

func TestLiveProfile_ProviderErrorFailsRequest(t *testing.T) {
	srv, requests := newServer(t)
	tokens := &tokenStub{err: errors.New("disk unavailable")}
	c := newClient(t, newConfig(t, srv.URL, client.ProfileLive), tokens)

	if _, err := c.Get(context.Background(), "contents"); err == nil {
		t.Error("Get() should fail when the provider errors")
	}
	if n := len(requests()); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestStaticProfile_MissingTokenOmitsHeader(t *testing.T) {
	tests := []struct {
		name   string
		tokens *tokenStub
	}{
		{"empty token", &tokenStub{}},
		{"whitespace token", &tokenStub{token: "  \n"}},
		{"provider error", &tokenStub{err: errors.New("permission denied")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newServer(t)
			c := newClient(t, newConfig(t, srv.URL, client.ProfileStatic), tt.tokens)

			if _, err := c.Get(context.Background(), "contents"); err != nil {
				t.Fatalf("Get() failed: %v", err)
			}

			h := requests()[0].Header
			if _, ok := h["Authorization"]; ok {
				t.Errorf("Authorization = %q, want header omitted", h.Get("Authorization"))
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	srv, requests := newServer(t)
	c, err := client.New(
		context.Background(),
		newConfig(t, srv.URL, client.ProfileNone),
		nil,
		logging.Discard(),
		client.WithHeader("X-Board-Variant", "ui"),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx := context.Background()
	c.Get(ctx, "contents")
	c.Post(ctx, "contents", map[string]int{"n": 1})

	reqs := requests()

	if ct := reqs[0].Header.Get("Content-Type"); ct != "" {
		t.Errorf("GET Content-Type = %q, want none", ct)
	}
	if ct := reqs[1].Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("POST Content-Type = %q, want application/json", ct)
	}
	if reqs[1].Body != `{"n":1}` {
		t.Errorf("POST body = %q, want %q", reqs[1].Body, `{"n":1}`)
	}

	for _, r := range reqs {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("%s Accept = %q", r.Method, r.Header.Get("Accept"))
		}
		if r.Header.Get("X-Board-Variant") != "ui" {
			t.Errorf("%s missing custom header", r.Method)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("%s missing X-Request-ID", r.Method)
		}
	}
	if reqs[0].Header.Get("X-Request-ID") == reqs[1].Header.Get("X-Request-ID") {
		t.Error("X-Request-ID should be unique per request")
	}
}

func TestBaseURLPrefixing(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"trailing slash base", "/", "contents", "/contents"},
		{"leading slash path", "/", "/contents/news", "/contents/news"},
		{"api prefix", "/api", "contents", "/api/contents"},
		{"api prefix with slashes", "/api/", "/contents", "/api/contents"},
		{"empty path", "/api", "", "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newServer(t)
			c := newClient(t, newConfig(t, srv.URL+tt.base, client.ProfileNone), nil)

			if _, err := c.Get(context.Background(), tt.path); err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got := requests()[0].Path; got != tt.want {
				t.Errorf("path = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAbsolutePathBypassesBaseURL(t *testing.T) {
	srv, requests := newServer(t)
	c := newClient(t, newConfig(t, "http://unreachable.invalid/", client.ProfileNone), nil)

	if _, err := c.Get(context.Background(), srv.URL+"/direct"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got := requests()[0].Path; got != "/direct" {
		t.Errorf("path = %q, want /direct", got)
	}
}

func TestStatusError(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, newConfig(t, srv.URL, client.ProfileNone), nil)

	resp, err := c.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("Get() should return error for 404")
	}

	var se *client.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %T, want *client.StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
	if !client.IsStatus(err, http.StatusNotFound) {
		t.Error("IsStatus(err, 404) = false")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Error("response should be returned alongside StatusError")
	}
}

func TestResponseTooLarge(t *testing.T) {
	srv, _ := newServer(t)
	cfg := &client.Config{BaseURL: srv.URL, Profile: client.ProfileNone, MaxResponseSize: "1KB"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	c := newClient(t, cfg, nil)

	_, err := c.Get(context.Background(), "large")
	if !errors.Is(err, client.ErrResponseTooLarge) {
		t.Errorf("Get() error = %v, want ErrResponseTooLarge", err)
	}
}

func TestGetJSON(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, newConfig(t, srv.URL, client.ProfileNone), nil)

	var out struct {
		Status int `json:"status"`
	}
	if err := c.GetJSON(context.Background(), "contents", &out); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if out.Status != 200 {
		t.Errorf("Status = %d, want 200", out.Status)
	}
}

func TestRawBodies(t *testing.T) {
	srv, requests := newServer(t)
	c := newClient(t, newConfig(t, srv.URL, client.ProfileNone), nil)
	ctx := context.Background()

	c.Post(ctx, "raw", []byte(`{"raw":true}`))
	c.Put(ctx, "reader", strings.NewReader(`{"reader":true}`))

	reqs := requests()
	if reqs[0].Body != `{"raw":true}` {
		t.Errorf("[]byte body = %q", reqs[0].Body)
	}
	if reqs[1].Body != `{"reader":true}` {
		t.Errorf("io.Reader body = %q", reqs[1].Body)
	}

	var v map[string]bool
	if err := json.Unmarshal([]byte(reqs[1].Body), &v); err != nil || !v["reader"] {
		t.Errorf("reader body not sent verbatim: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newServer(t)
	reg := prometheus.NewRegistry()
	metrics := client.NewMetrics(reg)

	c, err := client.New(
		context.Background(),
		newConfig(t, srv.URL, client.ProfileNone),
		nil,
		logging.Discard(),
		client.WithMetrics(metrics),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	c.Get(context.Background(), "contents")
	c.Get(context.Background(), "contents")

	count, err := testutil.GatherAndCount(reg, "board_api_client_requests_total")
	if err != nil {
		t.Fatalf("GatherAndCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("requests_total series = %d, want 1 (code=200, method=get)", count)
	}
}

func TestAccessors(t *testing.T) {
	c := newClient(t, newConfig(t, "", client.ProfileLive), &tokenStub{})

	if c.BaseURL() != client.DefaultAPIBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), client.DefaultAPIBaseURL)
	}
	if c.Profile() != client.ProfileLive {
		t.Errorf("Profile() = %q, want %q", c.Profile(), client.ProfileLive)
	}
}
