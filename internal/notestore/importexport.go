package notestore

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/nyberg/lagu/internal/models"
)

// ImportFromTree imports every Markdown file from a user-chosen source
// tree into the current root. Non-Markdown files are skipped silently;
// each per-file failure is collected, not fatal.
func (s *Store) ImportFromTree(ctx context.Context, srcTree string) models.BatchResult {
	result := models.BatchResult{Errors: []string{}}
	if s.treeBackend == nil {
		result.Errors = append(result.Errors, "no document provider available")
		return result
	}

	entries, err := s.treeBackend.ListEntries(ctx, srcTree)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list source tree: %v", err))
		return result
	}

	for _, e := range entries {
		if e.IsDir || !strings.HasSuffix(e.Name, ".md") {
			continue
		}
		content, err := s.treeBackend.ReadText(ctx, e.Locator)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		if err := s.importOne(ctx, e.Name, content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		result.Imported++
	}
	result.Success = result.Imported > 0
	return result
}

// ImportFiles imports individually selected files, for platforms
// without document-provider access. Same per-file error collection as
// ImportFromTree.
func (s *Store) ImportFiles(ctx context.Context, paths []string) models.BatchResult {
	result := models.BatchResult{Errors: []string{}}
	for _, p := range paths {
		name := path.Base(p)
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		content, err := s.pathBackend.ReadText(ctx, p)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if err := s.importOne(ctx, name, content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Imported++
	}
	result.Success = result.Imported > 0
	return result
}

// importOne sanitizes the source filename and saves through the normal
// SaveNote path, so uniqueness and cache invalidation apply.
func (s *Store) importOne(ctx context.Context, name, content string) error {
	title := SanitizeTitle(strings.TrimSuffix(name, ".md"))
	_, err := s.SaveNote(ctx, &models.Note{Filename: title, Content: content}, "", "")
	return err
}

// ExportNotes writes every note in the current root (non-recursive; it
// does not walk subfolders) to dest. dest may be a tree locator, a
// directory path, or empty, in which case a temporary export directory
// is created. Per-note failures are collected, not fatal.
func (s *Store) ExportNotes(ctx context.Context, dest string) (models.BatchResult, string) {
	result := models.BatchResult{Errors: []string{}}

	if dest == "" {
		tmp, err := os.MkdirTemp("", "lagu-export-*")
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("create export dir: %v", err))
			return result, ""
		}
		dest = tmp
	}

	destBackend := s.backendFor(dest)
	if destBackend == nil {
		result.Errors = append(result.Errors, "no backend for destination")
		return result, dest
	}

	contents := s.DirectoryContents(ctx, s.Root())
	for _, preview := range contents.Notes {
		note := s.GetNote(ctx, preview.Filename, "")
		if note == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: read failed", preview.Filename))
			continue
		}
		if _, err := destBackend.WriteText(ctx, dest, note.Filename+".md", note.Content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", note.Filename, err))
			continue
		}
		result.Imported++
	}
	result.Success = result.Imported > 0
	return result, dest
}
