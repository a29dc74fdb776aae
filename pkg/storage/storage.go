// Package storage provides the persistent key/value store that backs client
// credentials, the server-side counterpart of a browser's local storage.
// Values are short strings addressed by flat keys. Filesystem, in-memory, and
// PostgreSQL backends share the System interface.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/market-board/pkg/lifecycle"
)

// System defines the key/value operations shared by every backend.
type System interface {
	// Get returns the value stored at key.
	// Returns ErrNotFound if the key does not exist.
	// Returns ErrInvalidKey if the key is empty or malformed.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key, overwriting any previous value.
	// Returns ErrValueTooLarge if value exceeds the configured limit.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the backend selected by cfg.Backend. cfg must be finalized.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendFilesystem:
		return NewFilesystem(cfg, logger)
	case BackendMemory:
		return NewMemory(cfg), nil
	case BackendPostgres:
		return NewPostgres(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
