// Package docprovider models an opaque document-tree provider: storage
// reached through provider-issued document IDs rather than paths, in the
// manner of Android's Storage Access Framework.
package docprovider

import (
	"context"
	"time"
)

// Authority is the provider authority embedded in tree locators.
const Authority = "lagu"

// Doc describes one document or directory inside a tree.
type Doc struct {
	ID        string
	Name      string
	IsDir     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Provider is the document-tree contract required from the hosting
// platform. There is deliberately no recursive delete: providers only
// remove empty directories, so bulk deletion is the caller's recursion.
type Provider interface {
	// CreateTree creates (or reopens) a named tree and returns its root
	// document ID. This is the "request persistent access to a
	// user-chosen tree" operation.
	CreateTree(ctx context.Context, name string) (string, error)
	// ListChildren returns the immediate children of a directory.
	ListChildren(ctx context.Context, dirID string) ([]Doc, error)
	// FindChild looks up a direct child by name.
	FindChild(ctx context.Context, dirID, name string) (Doc, bool, error)
	// ReadDocument returns a document's content.
	ReadDocument(ctx context.Context, id string) (string, error)
	// WriteDocument creates or replaces the document named name under
	// dirID and returns its ID.
	WriteDocument(ctx context.Context, dirID, name, content string) (string, error)
	// CreateDirectory creates a subdirectory under dirID and returns
	// its ID. Reuses an existing directory of the same name.
	CreateDirectory(ctx context.Context, dirID, name string) (string, error)
	// DeleteDocument removes a single document, or a directory that is
	// already empty.
	DeleteDocument(ctx context.Context, id string) error
	// Stat returns metadata for a document.
	Stat(ctx context.Context, id string) (Doc, error)
	// ParentOf returns the parent directory's ID. The second return is
	// false for tree roots.
	ParentOf(ctx context.Context, id string) (string, bool, error)
	// Close releases underlying resources.
	Close() error
}
