// Package kv provides the flat key-value store used for persisted
// preferences and as the storage backend of last resort.
package kv

import "context"

// Store is the interface the hosting platform must provide. Each key is
// independently addressable so a corrupt or missing value never
// invalidates the others.
type Store interface {
	// GetString returns the value for key. The second return is false
	// when the key is absent.
	GetString(ctx context.Context, key string) (string, bool, error)
	// SetString stores value under key, replacing any previous value.
	SetString(ctx context.Context, key, value string) error
	// RemoveString deletes key. Removing an absent key is not an error.
	RemoveString(ctx context.Context, key string) error
	// Close releases underlying resources.
	Close() error
}
