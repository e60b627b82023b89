package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nyberg/lagu/internal/apperr"
	"github.com/nyberg/lagu/internal/kv"
	"github.com/nyberg/lagu/internal/locator"
)

// notesKey is the single flat-store key holding the whole note set.
const notesKey = "lagu.notes"

// flatNote is one element of the serialized note array.
type flatNote struct {
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FlatKV implements Backend on a flat key-value store: the entire note
// set lives as one JSON array under a single key, with no directory
// concept. Every operation deserializes the array, scans, and writes it
// back whole. O(n) per call, acceptable at local note counts.
type FlatKV struct {
	store kv.Store
}

// NewFlatKV creates the flat-store backend.
func NewFlatKV(store kv.Store) *FlatKV {
	return &FlatKV{store: store}
}

// ListEntries returns every note as a file entry. Only the synthetic
// root is listable; any other directory is empty by definition.
func (f *FlatKV) ListEntries(ctx context.Context, dir string) ([]Entry, error) {
	if dir != locator.FlatRoot {
		return nil, nil
	}
	notes, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(notes))
	for _, n := range notes {
		out = append(out, Entry{
			Name:       n.Filename,
			CreatedAt:  n.CreatedAt,
			ModifiedAt: n.UpdatedAt,
			Locator:    flatLocator(n.Filename),
		})
	}
	return out, nil
}

// ReadText returns the content of the note at loc.
func (f *FlatKV) ReadText(ctx context.Context, loc string) (string, error) {
	notes, err := f.load(ctx)
	if err != nil {
		return "", err
	}
	name := flatName(loc)
	for _, n := range notes {
		if n.Filename == name {
			return n.Content, nil
		}
	}
	return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
}

// WriteText creates or updates the note named name. CreatedAt is fixed
// on first write.
func (f *FlatKV) WriteText(ctx context.Context, _, name, content string) (string, error) {
	notes, err := f.load(ctx)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	found := false
	for i := range notes {
		if notes[i].Filename == name {
			notes[i].Content = content
			notes[i].UpdatedAt = now
			found = true
			break
		}
	}
	if !found {
		notes = append(notes, flatNote{
			Filename:  name,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := f.save(ctx, notes); err != nil {
		return "", err
	}
	return flatLocator(name), nil
}

// DeleteEntry removes a note. Deleting an absent note is a no-op.
func (f *FlatKV) DeleteEntry(ctx context.Context, loc string) error {
	notes, err := f.load(ctx)
	if err != nil {
		return err
	}
	name := flatName(loc)
	kept := notes[:0]
	for _, n := range notes {
		if n.Filename != name {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return nil
	}
	return f.save(ctx, kept)
}

// DeleteTree is unsupported: the flat store has no folders.
func (f *FlatKV) DeleteTree(_ context.Context, _ string) error {
	return fmt.Errorf("storage: delete tree: %w", apperr.ErrUnsupported)
}

// EnsureDirectory is a no-op for the flat store.
func (f *FlatKV) EnsureDirectory(_ context.Context, _ string) error {
	return nil
}

// StatEntry returns metadata for the note at loc.
func (f *FlatKV) StatEntry(ctx context.Context, loc string) (Entry, error) {
	notes, err := f.load(ctx)
	if err != nil {
		return Entry{}, err
	}
	name := flatName(loc)
	for _, n := range notes {
		if n.Filename == name {
			return Entry{
				Name:       n.Filename,
				CreatedAt:  n.CreatedAt,
				ModifiedAt: n.UpdatedAt,
				Locator:    loc,
			}, nil
		}
	}
	return Entry{}, fmt.Errorf("storage: stat %s: %w", name, apperr.ErrNotFound)
}

// ResolveChild finds a note by filename.
func (f *FlatKV) ResolveChild(ctx context.Context, _, name string) (Entry, bool, error) {
	e, err := f.StatEntry(ctx, flatLocator(name))
	if err != nil {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Parent always reports root: the flat store is a single level.
func (f *FlatKV) Parent(_ context.Context, _, _ string) (string, bool, error) {
	return "", false, nil
}

// load reads and decodes the note array. Corrupt stored JSON is treated
// as an empty note set rather than an error.
func (f *FlatKV) load(ctx context.Context) ([]flatNote, error) {
	raw, ok, err := f.store.GetString(ctx, notesKey)
	if err != nil {
		return nil, fmt.Errorf("storage: load notes: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var notes []flatNote
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		slog.Warn("flat store corrupt, starting empty", slog.String("error", err.Error()))
		return nil, nil
	}
	return notes, nil
}

func (f *FlatKV) save(ctx context.Context, notes []flatNote) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("storage: encode notes: %w", err)
	}
	if err := f.store.SetString(ctx, notesKey, string(raw)); err != nil {
		return fmt.Errorf("storage: save notes: %w", err)
	}
	return nil
}

func flatLocator(name string) string {
	return locator.FlatRoot + "/" + name
}

func flatName(loc string) string {
	return strings.TrimPrefix(loc, locator.FlatRoot+"/")
}

var _ Backend = (*FlatKV)(nil)
