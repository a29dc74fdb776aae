package storage

import "errors"

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is empty or contains path separators
	// or traversal sequences.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrValueTooLarge indicates the value exceeds max_value_size.
	ErrValueTooLarge = errors.New("storage: value too large")
)
