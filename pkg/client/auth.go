package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// TokenProvider supplies the bearer token attached to outgoing requests.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// authorizer sets the Authorization header on a request, if any.
type authorizer interface {
	authorize(ctx context.Context, req *http.Request) error
}

type noAuth struct{}

func (noAuth) authorize(context.Context, *http.Request) error {
	return nil
}

// staticAuth holds the header value captured at construction.
// An empty value means no token was available and the header is omitted.
type staticAuth struct {
	value string
}

func (a staticAuth) authorize(_ context.Context, req *http.Request) error {
	if a.value != "" {
		req.Header.Set("Authorization", a.value)
	}
	return nil
}

type liveAuth struct {
	tokens TokenProvider
	logger *slog.Logger
}

func (a liveAuth) authorize(ctx context.Context, req *http.Request) error {
	tok, err := a.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if v := bearer(tok); v != "" {
		req.Header.Set("Authorization", v)
	} else {
		a.logger.Debug("no token stored, sending request without authorization")
	}
	return nil
}

func newAuthorizer(ctx context.Context, p Profile, tokens TokenProvider, logger *slog.Logger) (authorizer, error) {
	if !p.UsesToken() {
		return noAuth{}, nil
	}
	if tokens == nil {
		return nil, ErrTokenProviderRequired
	}

	if p == ProfileLive {
		return liveAuth{tokens: tokens, logger: logger}, nil
	}

	tok, err := tokens.Token(ctx)
	if err != nil {
		logger.Warn("token read failed, continuing without authorization", "error", err)
		return staticAuth{}, nil
	}
	if tok == "" {
		logger.Warn("no token stored, continuing without authorization")
	}
	return staticAuth{value: bearer(tok)}, nil
}

func bearer(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return "Bearer " + token
}
