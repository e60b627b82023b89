package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nyberg/lagu/internal/apperr"
)

func tempStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetString(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if err := s.SetString(ctx, "greeting", "hello"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, ok, err := s.GetString(ctx, "greeting")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if !ok || got != "hello" {
		t.Errorf("got %q, ok=%v", got, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := tempStore(t)
	_, ok, err := s.GetString(context.Background(), "absent")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if ok {
		t.Error("missing key should report ok=false")
	}
}

func TestSetOverwrites(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.SetString(ctx, "k", "one")
	if err := s.SetString(ctx, "k", "two"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, _, _ := s.GetString(ctx, "k")
	if got != "two" {
		t.Errorf("got %q, want %q", got, "two")
	}
}

func TestRemoveString(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.SetString(ctx, "k", "v")
	if err := s.RemoveString(ctx, "k"); err != nil {
		t.Fatalf("RemoveString: %v", err)
	}
	if _, ok, _ := s.GetString(ctx, "k"); ok {
		t.Error("key should be gone after remove")
	}
	// Removing again is not an error.
	if err := s.RemoveString(ctx, "k"); err != nil {
		t.Errorf("second remove: %v", err)
	}
}

// slowStore blocks every call until its gate channel closes.
type slowStore struct {
	gate chan struct{}
}

func (s *slowStore) GetString(ctx context.Context, key string) (string, bool, error) {
	select {
	case <-s.gate:
		return "late", true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (s *slowStore) SetString(ctx context.Context, key, value string) error {
	select {
	case <-s.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slowStore) RemoveString(ctx context.Context, key string) error {
	return s.SetString(ctx, key, "")
}

func (s *slowStore) Close() error { return nil }

func TestTimeoutGetString(t *testing.T) {
	slow := &slowStore{gate: make(chan struct{})}
	defer close(slow.gate)

	wrapped := WithTimeout(slow, 20*time.Millisecond)
	_, _, err := wrapped.GetString(context.Background(), "k")
	if !errors.Is(err, apperr.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestTimeoutSetString(t *testing.T) {
	slow := &slowStore{gate: make(chan struct{})}
	defer close(slow.gate)

	wrapped := WithTimeout(slow, 20*time.Millisecond)
	err := wrapped.SetString(context.Background(), "k", "v")
	if !errors.Is(err, apperr.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestTimeoutPassThrough(t *testing.T) {
	fast := tempStore(t)
	wrapped := WithTimeout(fast, time.Second)
	ctx := context.Background()

	if err := wrapped.SetString(ctx, "k", "v"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, ok, err := wrapped.GetString(ctx, "k")
	if err != nil || !ok || got != "v" {
		t.Errorf("got %q, ok=%v, err=%v", got, ok, err)
	}
}

func TestTimeoutDefaultLimit(t *testing.T) {
	w := WithTimeout(&slowStore{gate: make(chan struct{})}, 0)
	if w.limit != DefaultTimeout {
		t.Errorf("limit = %v, want %v", w.limit, DefaultTimeout)
	}
}
