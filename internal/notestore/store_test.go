package notestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nyberg/lagu/internal/cache"
	"github.com/nyberg/lagu/internal/kv"
	"github.com/nyberg/lagu/internal/models"
	"github.com/nyberg/lagu/internal/prefs"
	"github.com/nyberg/lagu/internal/testutil"
)

// memKV is an in-memory kv.Store for tests. SetRoot persists from a
// background goroutine, so access is locked.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) SetString(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) RemoveString(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error { return nil }

var _ kv.Store = (*memKV)(nil)

// writeExternal drops a file into dir behind the store's back.
func writeExternal(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// eventLog records emitted mutation events.
type eventLog struct {
	kinds []string
	names []string
}

func (l *eventLog) sink(kind, name string) {
	l.kinds = append(l.kinds, kind)
	l.names = append(l.names, name)
}

// pathStore builds a path-mode store rooted in a fresh temp directory.
func pathStore(t *testing.T) (*Store, string, *eventLog) {
	t.Helper()
	root := t.TempDir()
	events := &eventLog{}
	s := New(Config{
		DefaultRoot: root,
		Prefs:       prefs.NewManager(newMemKV(), nil),
		Events:      events.sink,
	})
	return s, root, events
}

// flatStore builds a flat-mode store over a real SQLite state store.
func flatStore(t *testing.T) *Store {
	t.Helper()
	return New(Config{
		FlatMode: true,
		KV:       testutil.TestKV(t),
		Prefs:    prefs.NewManager(newMemKV(), nil),
	})
}

func TestRootDefaultsAndOverride(t *testing.T) {
	s, root, _ := pathStore(t)

	if s.Root() != root {
		t.Errorf("Root = %q, want %q", s.Root(), root)
	}

	s.SetRoot("/custom/place/")
	if s.Root() != "/custom/place" {
		t.Errorf("Root after override = %q", s.Root())
	}
}

func TestSetRootResetsCursorAndPersists(t *testing.T) {
	s, _, _ := pathStore(t)
	s.SetCurrentDirectory("/somewhere/deep")

	s.SetRoot("/custom")
	if s.CurrentDirectory() != "/custom" {
		t.Errorf("cursor = %q, want new root", s.CurrentDirectory())
	}

	// Persistence runs in the background.
	deadline := time.Now().Add(2 * time.Second)
	for s.Prefs().Root() != "/custom" {
		if time.Now().After(deadline) {
			t.Fatal("root override never persisted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSetRootNotifiesRootChanged(t *testing.T) {
	var notified int
	s := New(Config{
		DefaultRoot: t.TempDir(),
		RootChanged: func() { notified++ },
	})

	s.SetRoot("/custom")
	s.SetRoot("/elsewhere")
	if notified != 2 {
		t.Errorf("notifications = %d, want 2", notified)
	}
}

func TestLoadRootPreference(t *testing.T) {
	mem := newMemKV()
	mem.data[prefs.KeyRootDirectory] = "/persisted/root"
	s := New(Config{
		DefaultRoot: t.TempDir(),
		Prefs:       prefs.NewManager(mem, nil),
	})

	if err := s.LoadRootPreference(context.Background()); err != nil {
		t.Fatalf("LoadRootPreference: %v", err)
	}
	if s.Root() != "/persisted/root" {
		t.Errorf("Root = %q", s.Root())
	}
}

func TestFlatModeRoot(t *testing.T) {
	s := flatStore(t)
	if s.Root() != "flat:notes" {
		t.Errorf("Root = %q", s.Root())
	}
	// The override has no effect in flat mode.
	s.SetRoot("/elsewhere")
	if s.Root() != "flat:notes" {
		t.Errorf("Root after SetRoot = %q", s.Root())
	}
}

func TestTreeRootWithoutProvider(t *testing.T) {
	// No document provider configured; pointing the root at a tree
	// locator must degrade, never dereference a missing backend.
	s, _, _ := pathStore(t)
	ctx := context.Background()
	s.SetRoot("tree://lagu/primary%3ADocuments%2FNotes")

	if note := s.GetNote(ctx, "anything", ""); note != nil {
		t.Errorf("GetNote = %+v, want nil", note)
	}

	contents := s.DirectoryContents(ctx, "")
	if contents == nil {
		t.Fatal("DirectoryContents = nil")
	}
	if len(contents.Folders) != 0 || len(contents.Notes) != 0 {
		t.Errorf("contents = %+v, want empty", contents)
	}
	if contents.CurrentPath == "" {
		t.Error("CurrentPath not set on degraded listing")
	}

	if got := s.NavigateUp(ctx); got != nil {
		t.Errorf("NavigateUp = %+v, want nil", got)
	}

	if _, err := s.SaveNote(ctx, &models.Note{Filename: "x", Content: "y"}, "", ""); err == nil {
		t.Error("SaveNote succeeded without a backend")
	}
	if err := s.DeleteNote(ctx, "x", ""); err == nil {
		t.Error("DeleteNote succeeded without a backend")
	}
}

func TestFlatRootWithoutKV(t *testing.T) {
	s, _, _ := pathStore(t)
	ctx := context.Background()
	s.SetRoot("flat:notes")

	if note := s.GetNote(ctx, "anything", ""); note != nil {
		t.Errorf("GetNote = %+v, want nil", note)
	}
	if contents := s.DirectoryContents(ctx, ""); len(contents.Notes) != 0 {
		t.Errorf("contents = %+v, want empty", contents)
	}
}

func TestNavigation(t *testing.T) {
	s, root, _ := pathStore(t)
	ctx := context.Background()

	// Create sub/ by saving a note into it.
	if _, err := s.SaveNote(ctx, &models.Note{Filename: "inner", Content: "x"}, "", "sub"); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	rootContents := s.DirectoryContents(ctx, "")
	if len(rootContents.Folders) != 1 || rootContents.Folders[0].Name != "sub" {
		t.Fatalf("root folders = %+v", rootContents.Folders)
	}

	sub := s.NavigateInto(ctx, rootContents.Folders[0])
	if sub.CurrentPath != rootContents.Folders[0].Path {
		t.Errorf("CurrentPath = %q", sub.CurrentPath)
	}
	if sub.ParentPath == nil || *sub.ParentPath != root {
		t.Errorf("ParentPath = %v, want %q", sub.ParentPath, root)
	}
	if len(sub.Notes) != 1 || sub.Notes[0].Filename != "inner" {
		t.Errorf("sub notes = %+v", sub.Notes)
	}

	up := s.NavigateUp(ctx)
	if up == nil || up.CurrentPath != root {
		t.Fatalf("NavigateUp = %+v", up)
	}
	if up.ParentPath != nil {
		t.Errorf("root ParentPath = %v, want nil", *up.ParentPath)
	}

	// Already at root: no-op, nil result.
	if got := s.NavigateUp(ctx); got != nil {
		t.Errorf("NavigateUp at root = %+v, want nil", got)
	}

	s.SetCurrentDirectory(rootContents.Folders[0].Path)
	back := s.NavigateToRoot(ctx)
	if back.CurrentPath != root {
		t.Errorf("NavigateToRoot path = %q", back.CurrentPath)
	}
	if s.CurrentDirectory() != root {
		t.Errorf("cursor = %q", s.CurrentDirectory())
	}
}

func TestNavigateUpInFlatMode(t *testing.T) {
	s := flatStore(t)
	if got := s.NavigateUp(context.Background()); got != nil {
		t.Errorf("flat NavigateUp = %+v, want nil", got)
	}
}

func TestStorageLocation(t *testing.T) {
	s, _, _ := pathStore(t)

	loc := s.StorageLocation()
	if loc.Class != models.StorageApp || loc.Display != "App storage" {
		t.Errorf("default location = %+v", loc)
	}

	s.SetRoot("/sdcard/my-notes")
	loc = s.StorageLocation()
	if loc.Class != models.StorageCustom || loc.Display != "/sdcard/my-notes" {
		t.Errorf("custom location = %+v", loc)
	}

	s.SetRoot("tree://lagu/primary%3ADocuments%2FNotes")
	loc = s.StorageLocation()
	if loc.Class != models.StoragePublic || loc.Display != "Documents/Notes" {
		t.Errorf("tree location = %+v", loc)
	}

	s.SetRoot("tree://lagu/primary%3ABackup%2FNotes")
	loc = s.StorageLocation()
	if loc.Class != models.StorageCustom || loc.Display != "Backup/Notes" {
		t.Errorf("non-documents tree location = %+v", loc)
	}
}

func TestStorageLocationFlat(t *testing.T) {
	s := flatStore(t)
	loc := s.StorageLocation()
	if loc.Class != models.StorageApp || loc.Display != "On-device storage" {
		t.Errorf("flat location = %+v", loc)
	}
}

func TestCacheCoherence(t *testing.T) {
	root := t.TempDir()
	clock := struct{ t time.Time }{t: time.Unix(10000, 0)}
	c := cache.New(5*time.Minute, func() time.Time { return clock.t })
	s := New(Config{DefaultRoot: root, Cache: c})
	ctx := context.Background()

	if _, err := s.SaveNote(ctx, &models.Note{Filename: "first", Content: "x"}, "", ""); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if n := len(s.DirectoryContents(ctx, "").Notes); n != 1 {
		t.Fatalf("notes = %d, want 1", n)
	}

	// An external write is invisible while the cache entry is fresh.
	writeExternal(t, root, "external.md", "from outside")
	if n := len(s.DirectoryContents(ctx, "").Notes); n != 1 {
		t.Errorf("cached listing should not see external file, notes = %d", n)
	}

	// TTL expiry makes it visible.
	clock.t = clock.t.Add(5*time.Minute + time.Second)
	if n := len(s.DirectoryContents(ctx, "").Notes); n != 2 {
		t.Errorf("expired listing should see external file, notes = %d", n)
	}

	// A mutation through the store invalidates immediately, no TTL wait.
	writeExternal(t, root, "another.md", "more")
	_ = s.DirectoryContents(ctx, "")
	if _, err := s.SaveNote(ctx, &models.Note{Filename: "second", Content: "y"}, "", ""); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if n := len(s.DirectoryContents(ctx, "").Notes); n != 4 {
		t.Errorf("post-save listing notes = %d, want 4", n)
	}
}

func TestInvalidateCache(t *testing.T) {
	s, root, _ := pathStore(t)
	ctx := context.Background()

	if n := len(s.DirectoryContents(ctx, "").Notes); n != 0 {
		t.Fatalf("notes = %d, want 0", n)
	}
	writeExternal(t, root, "new.md", "hello")
	if n := len(s.DirectoryContents(ctx, "").Notes); n != 0 {
		t.Fatalf("cached notes = %d, want 0", n)
	}

	s.InvalidateCache()
	if n := len(s.DirectoryContents(ctx, "").Notes); n != 1 {
		t.Errorf("notes after invalidate = %d, want 1", n)
	}
}
