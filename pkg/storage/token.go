package storage

import (
	"context"
	"errors"
)

// DefaultTokenKey is the key under which the API bearer token is stored.
const DefaultTokenKey = "token"

// TokenSource reads a bearer token from a System on each call.
// It satisfies client.TokenProvider.
type TokenSource struct {
	store System
	key   string
}

// NewTokenSource binds a System and key. An empty key selects DefaultTokenKey.
func NewTokenSource(store System, key string) *TokenSource {
	if key == "" {
		key = DefaultTokenKey
	}
	return &TokenSource{store: store, key: key}
}

// Key returns the storage key the source reads.
func (s *TokenSource) Key() string {
	return s.key
}

// Token returns the stored token. A missing key yields "" with no error.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
