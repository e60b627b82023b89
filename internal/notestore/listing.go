package notestore

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nyberg/lagu/internal/models"
	"github.com/nyberg/lagu/internal/storage"
)

// previewReadLimit bounds the parallel content reads issued per
// listing.
const previewReadLimit = 8

// DirectoryContents lists one directory level: the explicit locator if
// given, else the current cursor, else the root.
//
// Failures never propagate: a missing directory or revoked permission
// degrades to an empty listing with the paths still set, so a browsing
// screen never crashes on a transient storage hiccup.
func (s *Store) DirectoryContents(ctx context.Context, loc string) *models.DirectoryContents {
	target := loc
	if target == "" {
		target = s.CurrentDirectory()
	}
	root := s.Root()
	b := s.backendFor(root)
	if b == nil {
		s.logger.Warn("no backend for root, returning empty",
			slog.String("root", root))
		return &models.DirectoryContents{
			Folders:     []models.Folder{},
			Notes:       []models.NotePreview{},
			CurrentPath: target,
		}
	}

	if cached, ok := s.cache.GetDir(target); ok {
		return cached
	}

	// The path backend creates a missing root; the document provider
	// assumes the user granted an existing tree.
	if target == root {
		if err := b.EnsureDirectory(ctx, root); err != nil {
			s.logger.Warn("ensure root failed",
				slog.String("root", root), slog.String("error", err.Error()))
		}
	}

	contents := &models.DirectoryContents{
		Folders:     []models.Folder{},
		Notes:       []models.NotePreview{},
		CurrentPath: target,
	}
	if parent, ok, err := b.Parent(ctx, target, root); err == nil && ok {
		contents.ParentPath = &parent
	}

	entries, err := b.ListEntries(ctx, target)
	if err != nil {
		s.logger.Warn("listing failed, returning empty",
			slog.String("dir", target), slog.String("error", err.Error()))
		return contents
	}

	var mdFiles []storage.Entry
	for _, e := range entries {
		if e.IsDir {
			// Hidden folders are excluded; hidden files are not.
			if strings.HasPrefix(e.Name, ".") {
				continue
			}
			contents.Folders = append(contents.Folders, models.Folder{
				Name:      e.Name,
				Path:      e.Locator,
				CreatedAt: e.CreatedAt,
				UpdatedAt: e.ModifiedAt,
			})
			continue
		}
		if strings.HasSuffix(e.Name, ".md") {
			mdFiles = append(mdFiles, e)
		}
	}

	// Read note contents in parallel; a failed read drops that one
	// preview, never the listing.
	previews := make([]*models.NotePreview, len(mdFiles))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(previewReadLimit)
	for i, e := range mdFiles {
		g.Go(func() error {
			content, err := b.ReadText(gCtx, e.Locator)
			if err != nil {
				s.logger.Warn("preview read failed",
					slog.String("file", e.Name), slog.String("error", err.Error()))
				return nil
			}
			n := models.Note{Content: content}
			previews[i] = &models.NotePreview{
				Filename:  strings.TrimSuffix(e.Name, ".md"),
				Preview:   n.Preview(),
				CreatedAt: e.CreatedAt,
				UpdatedAt: e.ModifiedAt,
				Location:  e.Locator,
			}
			return nil
		})
	}
	_ = g.Wait()
	for _, p := range previews {
		if p != nil {
			contents.Notes = append(contents.Notes, *p)
		}
	}

	sort.Slice(contents.Folders, func(i, j int) bool {
		return strings.ToLower(contents.Folders[i].Name) < strings.ToLower(contents.Folders[j].Name)
	})
	sort.Slice(contents.Notes, func(i, j int) bool {
		return contents.Notes[i].UpdatedAt.After(contents.Notes[j].UpdatedAt)
	})

	s.cache.PutDir(target, contents)
	return contents
}

// listFilenames returns the extension-stripped filenames present in
// folder, via the normal (cache-respecting) listing path.
func (s *Store) listFilenames(ctx context.Context, folder string) map[string]struct{} {
	dir, _, err := s.resolveDir(ctx, folder)
	if err != nil {
		s.logger.Warn("filename enumeration failed",
			slog.String("folder", folder), slog.String("error", err.Error()))
		return map[string]struct{}{}
	}
	contents := s.DirectoryContents(ctx, dir)
	out := make(map[string]struct{}, len(contents.Notes))
	for _, n := range contents.Notes {
		out[n.Filename] = struct{}{}
	}
	return out
}

