// Package locator classifies and manipulates the opaque locator strings
// that identify storage roots, directories, and notes.
//
// A locator's backend is determined once from its shape, never re-derived
// ad hoc by callers: a "tree:" scheme marks a document-provider
// reference, "flat:" marks the flat key-value store, and anything else
// is a plain filesystem path.
package locator

import (
	"net/url"
	"path"
	"strings"
)

// Kind tags the backend a locator belongs to.
type Kind int

const (
	KindPath Kind = iota
	KindTree
	KindFlat
)

const (
	// TreeScheme prefixes document-provider locators
	// ("tree://<authority>/<docID>").
	TreeScheme = "tree://"

	// FlatRoot is the synthetic root used when no real file access
	// exists.
	FlatRoot = "flat:notes"
)

// KindOf returns the backend kind for a locator.
func KindOf(loc string) Kind {
	switch {
	case strings.HasPrefix(loc, TreeScheme):
		return KindTree
	case strings.HasPrefix(loc, "flat:"):
		return KindFlat
	default:
		return KindPath
	}
}

// JoinPath joins a path-backend directory with a child name.
func JoinPath(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + name
}

// ParentPath returns the locator one level above loc, stopping at root.
// The second return is false when loc is already at (or above) root.
func ParentPath(loc, root string) (string, bool) {
	loc = strings.TrimRight(loc, "/")
	root = strings.TrimRight(root, "/")
	if loc == root || loc == "" {
		return "", false
	}
	parent := path.Dir(loc)
	if len(parent) < len(root) {
		return "", false
	}
	return parent, true
}

// Name returns the last segment of a path locator.
func Name(loc string) string {
	return path.Base(strings.TrimRight(loc, "/"))
}

// TreeID extracts the document ID from a tree locator. Returns "" for
// non-tree locators.
func TreeID(loc string) string {
	if !strings.HasPrefix(loc, TreeScheme) {
		return ""
	}
	rest := strings.TrimPrefix(loc, TreeScheme)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i+1:]
	}
	return ""
}

// TreeLocator builds a tree locator for a document ID under the given
// authority.
func TreeLocator(authority, docID string) string {
	return TreeScheme + authority + "/" + docID
}

// DescribeTree decodes a tree locator's document ID into a friendlier
// display form: percent-decoded, with any "<volume>:" prefix dropped.
// Falls back to the raw locator when it cannot be decoded.
func DescribeTree(loc string) string {
	id := TreeID(loc)
	if id == "" {
		return loc
	}
	decoded, err := url.PathUnescape(id)
	if err != nil {
		return id
	}
	if i := strings.IndexByte(decoded, ':'); i >= 0 && i+1 < len(decoded) {
		decoded = decoded[i+1:]
	}
	return decoded
}
