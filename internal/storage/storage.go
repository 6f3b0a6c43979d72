package storage

import (
	"context"
	"errors"
)

// Common errors returned by storage implementations
var ErrNotFound = errors.New("key not found")

// Storage is the durable key-value layer carts and order logs are mirrored into.
// Writes are last-write-wins; there is no versioning.
type Storage interface {
	// Get returns the raw value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
