package notestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nyberg/lagu/internal/locator"
	"github.com/nyberg/lagu/internal/models"
)

// GetNote reads a note by filename from the root or the named
// subfolder. It returns nil for every failure mode: not-found,
// permission, corrupt read. Callers cannot distinguish a missing note
// from a genuine error; that conflation is existing product behavior,
// kept pending product clarification. The cause is logged.
func (s *Store) GetNote(ctx context.Context, filename, folder string) *models.Note {
	dir, b, err := s.resolveDir(ctx, folder)
	if err != nil {
		s.logger.Warn("get note: resolve failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
		return nil
	}

	if cached, ok := s.cache.GetNote(dir, filename); ok {
		return cached
	}

	entry, ok, err := b.ResolveChild(ctx, dir, filename+".md")
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("get note: lookup failed",
				slog.String("filename", filename), slog.String("error", err.Error()))
		}
		return nil
	}
	content, err := b.ReadText(ctx, entry.Locator)
	if err != nil {
		s.logger.Warn("get note: read failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
		return nil
	}

	note := &models.Note{
		Filename:  filename,
		Content:   content,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.ModifiedAt,
		Location:  entry.Locator,
	}
	s.cache.PutNote(dir, filename, note)
	return note
}

// SaveNote writes note content under its filename, renaming when
// previousFilename differs. A rename is delete-old then write-new, not
// an atomic move: the pre-delete failure is logged and swallowed, which
// can leave the old file behind. That behavior is documented product
// behavior awaiting sign-off, not silently fixed here. Only the
// terminal write raises. The whole cache is cleared on success.
func (s *Store) SaveNote(ctx context.Context, note *models.Note, previousFilename, folder string) (*models.Note, error) {
	dir, b, err := s.resolveDir(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("notestore: save %s: %w", note.Filename, err)
	}

	if err := b.EnsureDirectory(ctx, dir); err != nil {
		return nil, fmt.Errorf("notestore: save %s: %w", note.Filename, err)
	}

	// A new note, or a rename, must not clobber an unrelated file.
	filename := note.Filename
	if previousFilename != filename {
		existing := s.listFilenames(ctx, folder)
		delete(existing, previousFilename)
		filename = uniqueFilename(filename, existing)
	}

	if previousFilename != "" && previousFilename != filename {
		if old, ok, err := b.ResolveChild(ctx, dir, previousFilename+".md"); err == nil && ok {
			if err := b.DeleteEntry(ctx, old.Locator); err != nil {
				s.logger.Warn("rename: delete of previous file failed, continuing",
					slog.String("previous", previousFilename),
					slog.String("error", err.Error()))
			}
		}
	}

	loc, err := b.WriteText(ctx, dir, filename+".md", note.Content)
	if err != nil {
		return nil, fmt.Errorf("notestore: save %s: %w", filename, err)
	}

	s.cache.Clear()
	s.emit("note.saved", filename)

	saved := *note
	saved.Filename = filename
	saved.Location = loc
	if entry, err := b.StatEntry(ctx, loc); err == nil {
		saved.CreatedAt = entry.CreatedAt
		saved.UpdatedAt = entry.ModifiedAt
	}
	return &saved, nil
}

// DeleteNote removes a note. Deleting an absent note is a no-op on the
// path and flat backends; the cache is cleared either way. Genuine
// backend failures raise.
func (s *Store) DeleteNote(ctx context.Context, filename, folder string) error {
	dir, b, err := s.resolveDir(ctx, folder)
	if err != nil {
		return fmt.Errorf("notestore: delete %s: %w", filename, err)
	}

	entry, ok, err := b.ResolveChild(ctx, dir, filename+".md")
	if err != nil {
		return fmt.Errorf("notestore: delete %s: %w", filename, err)
	}
	if ok {
		if err := b.DeleteEntry(ctx, entry.Locator); err != nil {
			return fmt.Errorf("notestore: delete %s: %w", filename, err)
		}
	} else if locator.KindOf(dir) == locator.KindTree {
		// The document provider has no idempotent delete; surface the
		// miss so the UI can refresh a stale listing.
		return fmt.Errorf("notestore: delete %s: note not found", filename)
	}

	s.cache.Clear()
	s.emit("note.deleted", filename)
	return nil
}

// DeleteFolder removes a folder and everything beneath it. The path
// backend removes recursively in one call; the document provider walks
// depth-first. Any failure mid-walk aborts and raises, with no
// partial-delete recovery.
func (s *Store) DeleteFolder(ctx context.Context, name, parentFolder string) error {
	dir, b, err := s.resolveDir(ctx, parentFolder)
	if err != nil {
		return fmt.Errorf("notestore: delete folder %s: %w", name, err)
	}

	entry, ok, err := b.ResolveChild(ctx, dir, name)
	if err != nil {
		return fmt.Errorf("notestore: delete folder %s: %w", name, err)
	}
	if !ok {
		// Idempotent on the path backend: removing a folder that is
		// already gone succeeds.
		if locator.KindOf(dir) == locator.KindPath {
			s.cache.Clear()
			return nil
		}
		return fmt.Errorf("notestore: delete folder %s: not found", name)
	}
	if !entry.IsDir {
		return fmt.Errorf("notestore: delete folder %s: not a folder", name)
	}

	if err := b.DeleteTree(ctx, entry.Locator); err != nil {
		return fmt.Errorf("notestore: delete folder %s: %w", name, err)
	}

	s.cache.Clear()
	s.emit("folder.deleted", name)
	return nil
}
