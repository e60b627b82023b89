package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// countingStore records cache invalidations.
type countingStore struct {
	mu sync.Mutex
	n  int
}

func (c *countingStore) InvalidateCache() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatchInvalidatesOnMarkdownWrite(t *testing.T) {
	root := t.TempDir()
	store := &countingStore{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go func() {
		_ = Watch(ctx, root, store, quietLogger(), func(kind, name string) {
			mu.Lock()
			events = append(events, kind+":"+name)
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return store.count() >= 1
	}, "markdown write did not invalidate the cache")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "changed:new.md" {
				return true
			}
		}
		return false
	}, "expected changed:new.md callback")
}

func TestWatchIgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()
	store := &countingStore{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, root, store, quietLogger(), nil) }()
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "data.txt"), []byte("x"), 0o644)
	time.Sleep(500 * time.Millisecond)

	if store.count() != 0 {
		t.Errorf("invalidations = %d, non-markdown files must be ignored", store.count())
	}
}

func TestWatchReportsRemovals(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.md")
	_ = os.WriteFile(path, []byte("x"), 0o644)
	store := &countingStore{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go func() {
		_ = Watch(ctx, root, store, quietLogger(), func(kind, name string) {
			mu.Lock()
			events = append(events, kind+":"+name)
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "removed:gone.md" {
				return true
			}
		}
		return false
	}, "expected removed:gone.md callback")
}

func TestWatchPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	store := &countingStore{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, root, store, quietLogger(), nil) }()
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Let the watcher register the new directory before writing into it.
	time.Sleep(500 * time.Millisecond)
	before := store.count()

	_ = os.WriteFile(filepath.Join(sub, "nested.md"), []byte("deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return store.count() > before
	}, "write in a new subdirectory did not invalidate")
}

func TestWatchStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, root, &countingStore{}, quietLogger(), nil) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}
