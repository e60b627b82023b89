// Package storage defines the note storage abstraction: one Backend
// contract with path-filesystem, document-tree, and flat key-value
// implementations. The note store selects an implementation from the
// shape of the effective root locator and never touches platform
// storage directly.
package storage

import (
	"context"
	"time"
)

// Entry is one directory entry as reported by a backend listing.
type Entry struct {
	Name       string
	IsDir      bool
	CreatedAt  time.Time
	ModifiedAt time.Time
	Locator    string
}

// Backend is the storage contract required from the hosting platform.
// Locators are backend-specific and opaque to callers; only the backend
// that minted a locator may interpret it.
type Backend interface {
	// ListEntries returns the immediate entries of a directory.
	ListEntries(ctx context.Context, dir string) ([]Entry, error)
	// ReadText returns the content of the file at loc.
	ReadText(ctx context.Context, loc string) (string, error)
	// WriteText creates or replaces the file named name under dir and
	// returns its locator.
	WriteText(ctx context.Context, dir, name, content string) (string, error)
	// DeleteEntry removes a single file. Implementations should be
	// idempotent where the platform allows it.
	DeleteEntry(ctx context.Context, loc string) error
	// DeleteTree removes a directory and everything beneath it.
	DeleteTree(ctx context.Context, loc string) error
	// EnsureDirectory makes sure dir exists, creating it where the
	// backend supports creation.
	EnsureDirectory(ctx context.Context, dir string) error
	// StatEntry returns metadata for the entry at loc.
	StatEntry(ctx context.Context, loc string) (Entry, error)
	// ResolveChild finds an existing direct child of dir by name.
	ResolveChild(ctx context.Context, dir, name string) (Entry, bool, error)
	// Parent returns the locator one level above loc, stopping at root.
	// The second return is false at (or above) root.
	Parent(ctx context.Context, loc, root string) (string, bool, error)
}
