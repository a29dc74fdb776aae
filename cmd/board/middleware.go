package main

import (
	"log/slog"

	"github.com/JaimeStill/market-board/pkg/middleware"
)

// buildMiddleware creates the middleware stack wrapped around every request.
func buildMiddleware(logger *slog.Logger) middleware.System {
	sys := middleware.New()
	sys.Use(middleware.Recoverer(logger))
	sys.Use(middleware.RequestID())
	sys.Use(middleware.TrimSlash())
	sys.Use(middleware.Logger(logger))
	return sys
}
