package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nyberg/lagu/internal/apperr"
)

// DefaultTimeout bounds every store call made through WithTimeout. The
// underlying key-value store has been observed to hang indefinitely on
// some devices, so callers must never wait on it unbounded.
const DefaultTimeout = 5 * time.Second

// Timeout wraps a Store so that every call completes within a fixed
// deadline or fails with apperr.ErrTimeout.
type Timeout struct {
	inner Store
	limit time.Duration
}

// WithTimeout wraps store with the given per-call deadline. A
// non-positive limit falls back to DefaultTimeout.
func WithTimeout(store Store, limit time.Duration) *Timeout {
	if limit <= 0 {
		limit = DefaultTimeout
	}
	return &Timeout{inner: store, limit: limit}
}

func (t *Timeout) GetString(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	type result struct {
		value string
		ok    bool
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, ok, err := t.inner.GetString(ctx, key)
		ch <- result{v, ok, err}
	}()

	select {
	case r := <-ch:
		return r.value, r.ok, wrapDeadline(r.err, key)
	case <-ctx.Done():
		return "", false, fmt.Errorf("kv: get %s: %w", key, apperr.ErrTimeout)
	}
}

func (t *Timeout) SetString(ctx context.Context, key, value string) error {
	return t.bounded(ctx, key, func(ctx context.Context) error {
		return t.inner.SetString(ctx, key, value)
	})
}

func (t *Timeout) RemoveString(ctx context.Context, key string) error {
	return t.bounded(ctx, key, func(ctx context.Context) error {
		return t.inner.RemoveString(ctx, key)
	})
}

func (t *Timeout) Close() error {
	return t.inner.Close()
}

func (t *Timeout) bounded(ctx context.Context, key string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	ch := make(chan error, 1)
	go func() { ch <- fn(ctx) }()

	select {
	case err := <-ch:
		return wrapDeadline(err, key)
	case <-ctx.Done():
		return fmt.Errorf("kv: %s: %w", key, apperr.ErrTimeout)
	}
}

func wrapDeadline(err error, key string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("kv: %s: %w", key, apperr.ErrTimeout)
	}
	return err
}
