// Package contents reads the market announcements and news feeds from the
// backend API through the shared client.
package contents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/market-board/pkg/client"
)

// Backend API paths, relative to the client base URL.
const (
	AnnouncementsPath = "contents"
	NewsPath          = "contents/news"
)

// Requester is the subset of *client.Client the contents system uses.
type Requester interface {
	Get(ctx context.Context, path string) (*client.Response, error)
}

// System provides typed access to the contents endpoints.
type System interface {
	Announcements(ctx context.Context) ([]Announcement, error)
	News(ctx context.Context) (*News, error)
}

type envelope[T any] struct {
	Items  T   `json:"items"`
	Status int `json:"status"`
}

type system struct {
	api    Requester
	logger *slog.Logger
}

// New creates a contents System backed by api.
func New(api Requester, logger *slog.Logger) System {
	return &system{
		api:    api,
		logger: logger.With("system", "contents"),
	}
}

func (s *system) Announcements(ctx context.Context) ([]Announcement, error) {
	items, err := fetch[[]Announcement](ctx, s, AnnouncementsPath)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *system) News(ctx context.Context) (*News, error) {
	items, err := fetch[News](ctx, s, NewsPath)
	if err != nil {
		return nil, err
	}
	return &items, nil
}

func fetch[T any](ctx context.Context, s *system, path string) (T, error) {
	var zero T

	resp, err := s.api.Get(ctx, path)
	if err != nil {
		var status *client.StatusError
		if errors.As(err, &status) {
			s.logger.Warn("contents request rejected", "path", path, "status", status.StatusCode)
		} else {
			s.logger.Error("contents request failed", "path", path, "error", err)
		}
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var env envelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		s.logger.Error("contents response malformed", "path", path, "error", err)
		return zero, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if env.Status != 0 && env.Status != http.StatusOK {
		return zero, fmt.Errorf("%w: %s reported status %d", ErrUnavailable, path, env.Status)
	}

	return env.Items, nil
}
