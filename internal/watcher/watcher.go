// Package watcher observes a path-backend root with fsnotify and
// invalidates the note store cache when files change outside the API,
// so browsing screens never serve listings for externally deleted or
// edited notes longer than one event latency.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is the slice of the note store the watcher needs.
type Invalidator interface {
	InvalidateCache()
}

// EventCallback is called after a debounced invalidation. kind is one
// of "changed", "removed".
type EventCallback func(kind, name string)

// debounceWindow coalesces event bursts (editors often fire several
// writes per save) into one invalidation.
const debounceWindow = 200 * time.Millisecond

// Watch starts an fsnotify watcher on root and processes events until
// ctx is cancelled. New directories created at runtime are added to the
// watch list. Only Markdown files and directories trigger invalidation.
func Watch(ctx context.Context, root string, store Invalidator, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	var pendingKind, pendingName string

	schedule := func(kind, name string) {
		pendingKind, pendingName = kind, name
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounceWindow)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounceWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			store.InvalidateCache()
			logger.Debug("watcher: cache invalidated",
				slog.String("kind", pendingKind), slog.String("name", pendingName))
			if cb != nil {
				cb(pendingKind, pendingName)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories join the watch list immediately so their
			// contents are observed too.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule("changed", filepath.Base(ev.Name))
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule("changed", filepath.Base(ev.Name))
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				schedule("removed", filepath.Base(ev.Name))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
