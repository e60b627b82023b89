// Package testutil provides shared test helpers for setting up state
// stores and document providers.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nyberg/lagu/internal/docprovider"
	"github.com/nyberg/lagu/internal/kv"
)

// TestKV creates a temporary SQLite key-value store that is
// automatically cleaned up.
func TestKV(t *testing.T) kv.Store {
	t.Helper()
	s, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestProvider creates a temporary SQLite document provider with one
// tree and returns the provider plus the tree's root document ID.
func TestProvider(t *testing.T) (docprovider.Provider, string) {
	t.Helper()
	p, err := docprovider.OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })

	root, err := p.CreateTree(context.Background(), "notes")
	if err != nil {
		t.Fatal(err)
	}
	return p, root
}
