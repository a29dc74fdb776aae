// Package infrastructure provides core service initialization for application startup.
// It assembles the common dependencies (lifecycle, logging, local storage,
// metrics) that the API client and page modules require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/market-board/internal/config"
	"github.com/JaimeStill/market-board/pkg/client"
	"github.com/JaimeStill/market-board/pkg/lifecycle"
	"github.com/JaimeStill/market-board/pkg/logging"
	"github.com/JaimeStill/market-board/pkg/storage"
)

// Infrastructure holds the core systems required by all application modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Tokens    *storage.TokenSource
	Registry  *prometheus.Registry

	client *client.Config
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, logging.New(&cfg.Logging))
}

// NewWithLogger is New with an explicit logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		Tokens:    storage.NewTokenSource(store, cfg.Client.TokenKey),
		Registry:  reg,
		client:    &cfg.Client,
	}, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// NewClient builds the shared API client, instrumented against Registry.
// Storage must have completed startup when the profile reads its token at
// construction. The client collectors are registered on each call, so
// NewClient is called once per Infrastructure.
func (i *Infrastructure) NewClient(ctx context.Context, opts ...client.Option) (*client.Client, error) {
	opts = append([]client.Option{client.WithMetrics(client.NewMetrics(i.Registry))}, opts...)

	c, err := client.New(ctx, i.client, i.Tokens, i.Logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("api client init failed: %w", err)
	}
	return c, nil
}
