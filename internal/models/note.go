// Package models defines the domain types for lagu.
package models

import "time"

// PreviewLength is the number of characters (runes) of note content
// carried in a NotePreview.
const PreviewLength = 200

// Note represents a single Markdown document.
//
// Filename plus containing directory is the sole identity key; there is
// no separate id. Location is a backend-specific locator that callers
// round-trip but never parse.
type Note struct {
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Location  string    `json:"location"`
}

// Preview derives the bounded excerpt shown on listing screens.
// It is always a strict prefix of Content.
func (n *Note) Preview() string {
	r := []rune(n.Content)
	if len(r) <= PreviewLength {
		return n.Content
	}
	return string(r[:PreviewLength])
}

// NotePreview is a lightweight projection of Note for listings.
// Derived on read, never persisted.
type NotePreview struct {
	Filename  string    `json:"filename"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Location  string    `json:"location"`
}

// Folder is a directory entry discovered by listing. Timestamps come
// from the directory's own metadata where the backend exposes one.
type Folder struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DirectoryContents is one directory level: folders sorted
// case-insensitively by name, notes sorted by UpdatedAt descending.
// ParentPath is nil at the configured root. Never includes nested
// descendants.
type DirectoryContents struct {
	Folders     []Folder      `json:"folders"`
	Notes       []NotePreview `json:"notes"`
	CurrentPath string        `json:"current_path"`
	ParentPath  *string       `json:"parent_path"`
}

// StorageClass classifies where notes currently live.
type StorageClass string

const (
	StorageApp    StorageClass = "app"    // app-private default directory
	StoragePublic StorageClass = "public" // shared documents tree
	StorageCustom StorageClass = "custom" // any other user-chosen location
)

// StorageLocation is the human-readable description of the effective
// root returned to settings screens.
type StorageLocation struct {
	Class   StorageClass `json:"class"`
	Display string       `json:"display"`
}

// BatchResult reports the outcome of an import or export run. Per-item
// failures are collected, not fatal.
type BatchResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}
