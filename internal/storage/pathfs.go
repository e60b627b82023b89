package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nyberg/lagu/internal/locator"
)

// PathFS implements Backend on the local hierarchical filesystem.
// Locators are absolute paths built by joining the root with relative
// segments.
type PathFS struct{}

// NewPathFS creates the path-based backend.
func NewPathFS() *PathFS {
	return &PathFS{}
}

// ListEntries returns the immediate entries of dir.
func (p *PathFS) ListEntries(_ context.Context, dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		e := Entry{
			Name:    it.Name(),
			IsDir:   it.IsDir(),
			Locator: locator.JoinPath(dir, it.Name()),
		}
		if info, err := it.Info(); err == nil {
			e.ModifiedAt = info.ModTime()
			// The filesystem exposes no portable birth time; creation
			// falls back to the modification time.
			e.CreatedAt = info.ModTime()
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadText returns the content of the file at loc.
func (p *PathFS) ReadText(_ context.Context, loc string) (string, error) {
	data, err := os.ReadFile(loc)
	if err != nil {
		return "", fmt.Errorf("storage: read %s: %w", loc, err)
	}
	return string(data), nil
}

// WriteText atomically writes content: tmp file, fsync, rename.
func (p *PathFS) WriteText(_ context.Context, dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	dest := locator.JoinPath(dir, name)

	tmp, err := os.CreateTemp(dir, ".lagu-tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return dest, nil
}

// DeleteEntry removes a file. Deleting an absent file is not an error.
func (p *PathFS) DeleteEntry(_ context.Context, loc string) error {
	if err := os.Remove(loc); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", loc, err)
	}
	return nil
}

// DeleteTree removes a directory recursively. Idempotent.
func (p *PathFS) DeleteTree(_ context.Context, loc string) error {
	if err := os.RemoveAll(loc); err != nil {
		return fmt.Errorf("storage: delete tree %s: %w", loc, err)
	}
	return nil
}

// EnsureDirectory creates dir and any missing parents.
func (p *PathFS) EnsureDirectory(_ context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: ensure dir %s: %w", dir, err)
	}
	return nil
}

// StatEntry returns metadata for the entry at loc.
func (p *PathFS) StatEntry(_ context.Context, loc string) (Entry, error) {
	info, err := os.Stat(loc)
	if err != nil {
		return Entry{}, fmt.Errorf("storage: stat %s: %w", loc, err)
	}
	return Entry{
		Name:       info.Name(),
		IsDir:      info.IsDir(),
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
		Locator:    loc,
	}, nil
}

// ResolveChild finds an existing direct child of dir by name.
func (p *PathFS) ResolveChild(ctx context.Context, dir, name string) (Entry, bool, error) {
	e, err := p.StatEntry(ctx, locator.JoinPath(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

// Parent strips the last path segment, stopping at root.
func (p *PathFS) Parent(_ context.Context, loc, root string) (string, bool, error) {
	parent, ok := locator.ParentPath(loc, root)
	return parent, ok, nil
}

var _ Backend = (*PathFS)(nil)
