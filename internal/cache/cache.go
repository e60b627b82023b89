// Package cache implements the in-memory store cache: directory
// listings keyed by locator and notes keyed by (directory, filename),
// valid until a fixed TTL elapses or any mutation clears everything.
package cache

import (
	"sync"
	"time"

	"github.com/nyberg/lagu/internal/models"
)

// DefaultTTL is the wall-clock validity window for cached entries.
const DefaultTTL = 5 * time.Minute

type dirEntry struct {
	contents *models.DirectoryContents
	filledAt time.Time
}

type noteEntry struct {
	note     *models.Note
	filledAt time.Time
}

// Cache holds directory listings and notes with time-based expiry.
// Invalidation is coarse: every mutating store operation calls Clear.
type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	dirs  map[string]dirEntry
	notes map[string]noteEntry
}

// New creates a cache with the given TTL. A non-positive ttl falls back
// to DefaultTTL. now may be nil for time.Now; tests inject a fake clock.
func New(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:   ttl,
		now:   now,
		dirs:  make(map[string]dirEntry),
		notes: make(map[string]noteEntry),
	}
}

// GetDir returns the cached listing for a directory locator, or false
// when absent or expired.
func (c *Cache) GetDir(loc string) (*models.DirectoryContents, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dirs[loc]
	if !ok || c.now().Sub(e.filledAt) > c.ttl {
		return nil, false
	}
	return e.contents, true
}

// PutDir stores a listing and stamps the fill time.
func (c *Cache) PutDir(loc string, contents *models.DirectoryContents) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirs[loc] = dirEntry{contents: contents, filledAt: c.now()}
}

// GetNote returns a cached note, or false when absent or expired.
func (c *Cache) GetNote(dir, filename string) (*models.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.notes[noteKey(dir, filename)]
	if !ok || c.now().Sub(e.filledAt) > c.ttl {
		return nil, false
	}
	return e.note, true
}

// PutNote stores a note and stamps the fill time.
func (c *Cache) PutNote(dir, filename string, note *models.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes[noteKey(dir, filename)] = noteEntry{note: note, filledAt: c.now()}
}

// Clear drops every entry. Called on any mutating operation so the
// cache can never observably diverge from backend state after a write.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirs = make(map[string]dirEntry)
	c.notes = make(map[string]noteEntry)
}

func noteKey(dir, filename string) string {
	return dir + "\x00" + filename
}
