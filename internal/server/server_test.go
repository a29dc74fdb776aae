package server_test

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/JaimeStill/market-board/internal/config"
	"github.com/JaimeStill/market-board/internal/server"
	"github.com/JaimeStill/market-board/pkg/lifecycle"
	"github.com/JaimeStill/market-board/pkg/logging"
)

func TestServer_ServesAndShutsDown(t *testing.T) {
	cfg := &config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  "5s",
		WriteTimeout: "5s",
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("board"))
	})

	lc := lifecycle.New()
	srv := server.New(cfg, handler, logging.Discard(), time.Second)

	if err := srv.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != "board" {
		t.Errorf("body = %q, want %q", string(body), "board")
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	if _, err := http.Get("http://" + srv.Addr() + "/"); err == nil {
		t.Error("server should refuse connections after shutdown")
	}
}

func TestServer_BindError(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 0}

	lc := lifecycle.New()
	first := server.New(cfg, http.NotFoundHandler(), logging.Discard(), time.Second)
	if err := first.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer lc.Shutdown(5 * time.Second)

	taken := &config.ServerConfig{Host: "127.0.0.1"}
	_, port := splitPort(t, first.Addr())
	taken.Port = port

	second := server.New(taken, http.NotFoundHandler(), logging.Discard(), time.Second)
	if err := second.Start(lifecycle.New()); err == nil {
		t.Error("Start() on a bound port should fail")
	}
}

func splitPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("port %q: %v", portStr, err)
	}
	return host, port
}
