package storage

import (
	"context"
	"fmt"

	"github.com/nyberg/lagu/internal/docprovider"
	"github.com/nyberg/lagu/internal/locator"
)

// DocTree implements Backend over an opaque document-tree provider.
// Locators are "tree://<authority>/<docID>" references; there is no
// path structure to concatenate, every resolution is a provider call.
type DocTree struct {
	provider docprovider.Provider
}

// NewDocTree creates the document-provider backend.
func NewDocTree(p docprovider.Provider) *DocTree {
	return &DocTree{provider: p}
}

// ListEntries returns the immediate children of the directory at dir.
func (d *DocTree) ListEntries(ctx context.Context, dir string) ([]Entry, error) {
	docs, err := d.provider.ListChildren(ctx, locator.TreeID(dir))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entryFromDoc(doc))
	}
	return out, nil
}

// ReadText returns the content of the document at loc.
func (d *DocTree) ReadText(ctx context.Context, loc string) (string, error) {
	return d.provider.ReadDocument(ctx, locator.TreeID(loc))
}

// WriteText creates or replaces the document named name under dir.
func (d *DocTree) WriteText(ctx context.Context, dir, name, content string) (string, error) {
	id, err := d.provider.WriteDocument(ctx, locator.TreeID(dir), name, content)
	if err != nil {
		return "", err
	}
	return locator.TreeLocator(docprovider.Authority, id), nil
}

// DeleteEntry removes a single document.
func (d *DocTree) DeleteEntry(ctx context.Context, loc string) error {
	return d.provider.DeleteDocument(ctx, locator.TreeID(loc))
}

// DeleteTree removes a directory depth-first: the provider has no bulk
// primitive, so subfolders are recursed into, files deleted one by one,
// and the emptied directory removed last. Any failure aborts the whole
// walk.
func (d *DocTree) DeleteTree(ctx context.Context, loc string) error {
	id := locator.TreeID(loc)
	children, err := d.provider.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("storage: delete tree: %w", err)
	}
	for _, child := range children {
		childLoc := locator.TreeLocator(docprovider.Authority, child.ID)
		if child.IsDir {
			if err := d.DeleteTree(ctx, childLoc); err != nil {
				return err
			}
			continue
		}
		if err := d.provider.DeleteDocument(ctx, child.ID); err != nil {
			return fmt.Errorf("storage: delete tree: %w", err)
		}
	}
	return d.provider.DeleteDocument(ctx, id)
}

// EnsureDirectory is a no-op: the user grants access to an existing
// tree, the backend never creates one.
func (d *DocTree) EnsureDirectory(_ context.Context, _ string) error {
	return nil
}

// StatEntry returns metadata for the document at loc.
func (d *DocTree) StatEntry(ctx context.Context, loc string) (Entry, error) {
	doc, err := d.provider.Stat(ctx, locator.TreeID(loc))
	if err != nil {
		return Entry{}, err
	}
	return entryFromDoc(doc), nil
}

// ResolveChild finds an existing direct child of dir by name.
func (d *DocTree) ResolveChild(ctx context.Context, dir, name string) (Entry, bool, error) {
	doc, ok, err := d.provider.FindChild(ctx, locator.TreeID(dir), name)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	return entryFromDoc(doc), true, nil
}

// Parent resolves the parent document, stopping at root.
func (d *DocTree) Parent(ctx context.Context, loc, root string) (string, bool, error) {
	if loc == root {
		return "", false, nil
	}
	parentID, ok, err := d.provider.ParentOf(ctx, locator.TreeID(loc))
	if err != nil || !ok {
		return "", false, err
	}
	return locator.TreeLocator(docprovider.Authority, parentID), true, nil
}

func entryFromDoc(doc docprovider.Doc) Entry {
	return Entry{
		Name:       doc.Name,
		IsDir:      doc.IsDir,
		CreatedAt:  doc.CreatedAt,
		ModifiedAt: doc.UpdatedAt,
		Locator:    locator.TreeLocator(docprovider.Authority, doc.ID),
	}
}

var _ Backend = (*DocTree)(nil)
