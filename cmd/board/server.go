package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/market-board/internal/config"
	"github.com/JaimeStill/market-board/internal/contents"
	"github.com/JaimeStill/market-board/internal/infrastructure"
	"github.com/JaimeStill/market-board/internal/server"
	"github.com/JaimeStill/market-board/web/app"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	cfg   *config.Config
	infra *infrastructure.Infrastructure
	http  server.System
}

// NewServer creates the infrastructure for cfg. Modules are assembled in
// Start, once local storage is available for the client token read.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, infra: infra}, nil
}

// Start brings up storage, builds the API client and page module, and begins
// serving. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.infra.Logger.Info("starting service", "version", s.cfg.Version)

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
		return err
	}

	api, err := s.infra.NewClient(ctx)
	if err != nil {
		return err
	}

	appModule, err := app.NewModule("", contents.New(api, s.infra.Logger), s.infra.Logger)
	if err != nil {
		return fmt.Errorf("app module init failed: %w", err)
	}

	router := buildRouter(s.infra, appModule)
	handler := buildMiddleware(s.infra.Logger).Apply(router)

	s.http = server.New(&s.cfg.Server, handler, s.infra.Logger, s.cfg.ShutdownTimeoutDuration())
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	s.infra.Logger.Info(
		"server initialized",
		"addr", s.http.Addr(),
		"api", api.BaseURL(),
		"profile", api.Profile(),
		"routes", len(appModule.Entries()),
	)
	return nil
}

// Addr returns the bound listener address. Valid after Start.
func (s *Server) Addr() string {
	if s.http == nil {
		return s.cfg.Server.Addr()
	}
	return s.http.Addr()
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}

func buildRouter(infra *infrastructure.Infrastructure, pages *app.Module) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthCheck)
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		handleReadinessCheck(w, infra.Lifecycle)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(infra.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /routes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := writeRoutes(w, "json", pages.Entries()); err != nil {
			infra.Logger.Error("write routes", "error", err)
		}
	})
	mux.Handle("/", pages.Handler())

	return mux
}
