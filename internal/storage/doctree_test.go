package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/nyberg/lagu/internal/apperr"
	"github.com/nyberg/lagu/internal/docprovider"
	"github.com/nyberg/lagu/internal/locator"
	"github.com/nyberg/lagu/internal/testutil"
)

func tempTree(t *testing.T) (*DocTree, string) {
	t.Helper()
	p, rootID := testutil.TestProvider(t)
	return NewDocTree(p), locator.TreeLocator(docprovider.Authority, rootID)
}

func TestDocTreeWriteRead(t *testing.T) {
	d, root := tempTree(t)
	ctx := context.Background()

	loc, err := d.WriteText(ctx, root, "a.md", "alpha")
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if locator.KindOf(loc) != locator.KindTree {
		t.Errorf("locator %q should be a tree locator", loc)
	}
	got, err := d.ReadText(ctx, loc)
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != "alpha" {
		t.Errorf("content = %q", got)
	}
}

func TestDocTreeListEntries(t *testing.T) {
	d, root := tempTree(t)
	ctx := context.Background()

	_, _ = d.WriteText(ctx, root, "a.md", "a")

	entries, err := d.ListEntries(ctx, root)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.md" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestDocTreeResolveChild(t *testing.T) {
	d, root := tempTree(t)
	ctx := context.Background()
	loc, _ := d.WriteText(ctx, root, "a.md", "x")

	e, ok, err := d.ResolveChild(ctx, root, "a.md")
	if err != nil {
		t.Fatalf("ResolveChild: %v", err)
	}
	if !ok || e.Locator != loc {
		t.Errorf("entry = %+v, ok=%v", e, ok)
	}
	if _, ok, _ := d.ResolveChild(ctx, root, "nope.md"); ok {
		t.Error("missing child should report ok=false")
	}
}

func TestDocTreeDeleteEntryMissing(t *testing.T) {
	d, _ := tempTree(t)
	ctx := context.Background()

	missing := locator.TreeLocator(docprovider.Authority, "does-not-exist")
	if err := d.DeleteEntry(ctx, missing); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDocTreeDeleteTreeRecursive(t *testing.T) {
	d, root := tempTree(t)
	ctx := context.Background()

	// Build sub/ with a file and a nested folder with another file.
	p := d.provider
	subID, _ := p.CreateDirectory(ctx, locator.TreeID(root), "sub")
	_, _ = p.WriteDocument(ctx, subID, "a.md", "x")
	deepID, _ := p.CreateDirectory(ctx, subID, "deep")
	_, _ = p.WriteDocument(ctx, deepID, "b.md", "y")

	subLoc := locator.TreeLocator(docprovider.Authority, subID)
	if err := d.DeleteTree(ctx, subLoc); err != nil {
		t.Fatalf("DeleteTree: %v", err)
	}
	if _, ok, _ := d.ResolveChild(ctx, root, "sub"); ok {
		t.Error("sub should be gone")
	}
}

func TestDocTreeParent(t *testing.T) {
	d, root := tempTree(t)
	ctx := context.Background()

	subID, _ := d.provider.CreateDirectory(ctx, locator.TreeID(root), "sub")
	subLoc := locator.TreeLocator(docprovider.Authority, subID)

	parent, ok, err := d.Parent(ctx, subLoc, root)
	if err != nil {
		t.Fatalf("Parent: %v", err)
	}
	if !ok || parent != root {
		t.Errorf("parent = %q, ok=%v, want %q", parent, ok, root)
	}
	if _, ok, _ := d.Parent(ctx, root, root); ok {
		t.Error("root should have no parent")
	}
}
