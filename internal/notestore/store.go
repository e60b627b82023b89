// Package notestore implements the core note store: one logical
// note/folder CRUD surface over three structurally different backends,
// with an in-memory TTL cache, a directory cursor, persisted
// preferences, and import/export on top.
package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nyberg/lagu/internal/cache"
	"github.com/nyberg/lagu/internal/docprovider"
	"github.com/nyberg/lagu/internal/kv"
	"github.com/nyberg/lagu/internal/locator"
	"github.com/nyberg/lagu/internal/models"
	"github.com/nyberg/lagu/internal/prefs"
	"github.com/nyberg/lagu/internal/storage"
)

// EventSink receives note mutation notifications. kind is one of
// "note.saved", "note.deleted", "folder.deleted".
type EventSink func(kind, name string)

// Config wires a Store.
type Config struct {
	// DefaultRoot is the app-private directory used when no root
	// override is set.
	DefaultRoot string
	// FlatMode forces the flat key-value backend, used when there is no
	// real filesystem access.
	FlatMode bool
	// Provider backs tree locators; may be nil when the platform has no
	// document provider.
	Provider docprovider.Provider
	// KV backs the flat store; required in FlatMode.
	KV     kv.Store
	Prefs  *prefs.Manager
	Cache  *cache.Cache
	Logger *slog.Logger
	Events EventSink
	// RootChanged is called after every root override change, so the
	// filesystem watcher can re-aim at the new root.
	RootChanged func()
}

// Store is the process-wide note store. Every screen shares one
// instance and its cache; that is intentional, writers must be visible
// to each other.
type Store struct {
	logger      *slog.Logger
	defaultRoot string
	flatMode    bool
	prefs       *prefs.Manager
	cache       *cache.Cache
	events      EventSink
	rootChanged func()

	pathBackend *storage.PathFS
	treeBackend *storage.DocTree
	flatBackend *storage.FlatKV

	mu         sync.Mutex
	override   string
	currentDir string
}

// New creates a Store from cfg.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := cfg.Cache
	if c == nil {
		c = cache.New(0, nil)
	}
	s := &Store{
		logger:      logger,
		defaultRoot: strings.TrimRight(cfg.DefaultRoot, "/"),
		flatMode:    cfg.FlatMode,
		prefs:       cfg.Prefs,
		cache:       c,
		events:      cfg.Events,
		rootChanged: cfg.RootChanged,
		pathBackend: storage.NewPathFS(),
	}
	if cfg.Provider != nil {
		s.treeBackend = storage.NewDocTree(cfg.Provider)
	}
	if cfg.KV != nil {
		s.flatBackend = storage.NewFlatKV(cfg.KV)
	}
	return s
}

// Root returns the current effective root: the explicit override when
// set, otherwise the fixed app-private default. In flat mode it is
// always the synthetic flat root.
func (s *Store) Root() string {
	if s.flatMode {
		return locator.FlatRoot
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.override != "" {
		return s.override
	}
	return s.defaultRoot
}

// SetRoot replaces the root override, synchronously clears all caches,
// and persists the override in the background. A persist failure is
// logged, not raised: the in-memory override still takes effect for the
// rest of the process.
func (s *Store) SetRoot(loc string) {
	s.mu.Lock()
	s.override = strings.TrimRight(loc, "/")
	s.currentDir = ""
	s.mu.Unlock()
	s.cache.Clear()
	if s.rootChanged != nil {
		s.rootChanged()
	}

	if s.prefs == nil {
		return
	}
	go func() {
		if err := s.prefs.SetRoot(context.Background(), loc); err != nil {
			s.logger.Warn("persist root override failed",
				slog.String("root", loc), slog.String("error", err.Error()))
		}
	}()
}

// LoadRootPreference applies the persisted root override. Idempotent:
// the preference manager memoizes the first outcome, so repeated calls
// from focus handlers cost nothing.
func (s *Store) LoadRootPreference(ctx context.Context) error {
	if s.prefs == nil || s.flatMode {
		return nil
	}
	loc, err := s.prefs.LoadRoot(ctx)
	if err != nil {
		return fmt.Errorf("notestore: load root preference: %w", err)
	}
	if loc != "" {
		s.mu.Lock()
		s.override = strings.TrimRight(loc, "/")
		s.mu.Unlock()
	}
	return nil
}

// CurrentDirectory returns the browsing cursor, defaulting to the root.
func (s *Store) CurrentDirectory() string {
	s.mu.Lock()
	cur := s.currentDir
	s.mu.Unlock()
	if cur == "" {
		return s.Root()
	}
	return cur
}

// SetCurrentDirectory moves the browsing cursor.
func (s *Store) SetCurrentDirectory(loc string) {
	s.mu.Lock()
	s.currentDir = loc
	s.mu.Unlock()
}

// ResetToRoot moves the cursor back to the root without listing.
func (s *Store) ResetToRoot() {
	s.SetCurrentDirectory("")
}

// NavigateInto moves the cursor into folder and returns its contents.
func (s *Store) NavigateInto(ctx context.Context, folder models.Folder) *models.DirectoryContents {
	s.SetCurrentDirectory(folder.Path)
	return s.DirectoryContents(ctx, folder.Path)
}

// NavigateUp moves the cursor one level up and returns the new
// contents, or nil when already at the root.
func (s *Store) NavigateUp(ctx context.Context) *models.DirectoryContents {
	cur := s.CurrentDirectory()
	root := s.Root()
	b := s.backendFor(root)
	if b == nil {
		s.logger.Warn("no backend for root", slog.String("root", root))
		return nil
	}
	parent, ok, err := b.Parent(ctx, cur, root)
	if err != nil {
		s.logger.Warn("navigate up failed",
			slog.String("dir", cur), slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return nil
	}
	s.SetCurrentDirectory(parent)
	return s.DirectoryContents(ctx, parent)
}

// NavigateToRoot resets the cursor and returns the root contents.
func (s *Store) NavigateToRoot(ctx context.Context) *models.DirectoryContents {
	s.ResetToRoot()
	return s.DirectoryContents(ctx, "")
}

// InvalidateCache drops every cached listing and note. Exposed for the
// filesystem watcher, which observes external mutations.
func (s *Store) InvalidateCache() {
	s.cache.Clear()
}

// StorageLocation classifies the effective root for settings screens.
func (s *Store) StorageLocation() models.StorageLocation {
	if s.flatMode {
		return models.StorageLocation{Class: models.StorageApp, Display: "On-device storage"}
	}
	root := s.Root()
	switch locator.KindOf(root) {
	case locator.KindTree:
		display := locator.DescribeTree(root)
		class := models.StorageCustom
		if strings.HasPrefix(display, "Documents") {
			class = models.StoragePublic
		}
		return models.StorageLocation{Class: class, Display: display}
	default:
		if root == s.defaultRoot {
			return models.StorageLocation{Class: models.StorageApp, Display: "App storage"}
		}
		return models.StorageLocation{Class: models.StorageCustom, Display: root}
	}
}

// Prefs exposes the preference manager to API consumers.
func (s *Store) Prefs() *prefs.Manager {
	return s.prefs
}

// backendFor picks the backend implementation for a locator. The shape
// is inspected once here, never re-derived in operation bodies. Returns
// an untyped nil when the locator's kind has no configured backend, so
// callers can guard with a plain nil check.
func (s *Store) backendFor(loc string) storage.Backend {
	switch locator.KindOf(loc) {
	case locator.KindTree:
		if s.treeBackend == nil {
			return nil
		}
		return s.treeBackend
	case locator.KindFlat:
		if s.flatBackend == nil {
			return nil
		}
		return s.flatBackend
	default:
		return s.pathBackend
	}
}

// resolveDir resolves the target directory for an operation: the root
// itself, or the named subfolder under it using the backend-appropriate
// join rule.
func (s *Store) resolveDir(ctx context.Context, folder string) (string, storage.Backend, error) {
	root := s.Root()
	b := s.backendFor(root)
	if b == nil {
		return "", nil, fmt.Errorf("notestore: no backend for root %q", root)
	}
	if folder == "" {
		return root, b, nil
	}
	switch locator.KindOf(root) {
	case locator.KindTree:
		e, ok, err := b.ResolveChild(ctx, root, folder)
		if err != nil {
			return "", nil, fmt.Errorf("notestore: resolve folder %s: %w", folder, err)
		}
		if !ok {
			return "", nil, fmt.Errorf("notestore: folder %s not found", folder)
		}
		return e.Locator, b, nil
	case locator.KindFlat:
		// The flat store has no folders; everything lives at root.
		return root, b, nil
	default:
		return locator.JoinPath(root, folder), b, nil
	}
}

func (s *Store) emit(kind, name string) {
	if s.events != nil {
		s.events(kind, name)
	}
}
