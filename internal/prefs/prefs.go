// Package prefs manages persisted user preferences: a small bag of
// independently-keyed scalars over the key-value store. Each key is
// read and written on its own so one corrupt or missing value never
// invalidates the others.
package prefs

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/nyberg/lagu/internal/kv"
)

// Preference keys. Deliberately one key per scalar, not a grouped blob.
const (
	KeyShowTimestamps   = "pref.show_timestamps"
	KeyWelcomeCompleted = "pref.welcome_completed"
	KeyQuickNote        = "pref.quick_note"
	KeyAutoSaveOnExit   = "pref.auto_save_on_exit"
	KeyFABLeft          = "pref.fab_left"
	KeyRootDirectory    = "pref.root_directory"
)

// State tracks the root-preference load lifecycle. The first load
// outcome, success or failure, is memoized for the process lifetime so
// screens that trigger a load on every focus never repeat the
// round-trip.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

// Manager reads and writes preferences. Values are loaded lazily on
// first access, held in memory afterward, and written through on every
// set.
type Manager struct {
	store  kv.Store
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	rootValue string
	loaded    map[string]string
}

// NewManager creates a preference manager over store.
func NewManager(store kv.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		logger: logger,
		loaded: make(map[string]string),
	}
}

// LoadState returns the current root-preference load state.
func (m *Manager) LoadState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LoadRoot loads the persisted root-directory override. Idempotent: the
// first outcome is cached and subsequent calls just reapply it.
func (m *Manager) LoadRoot(ctx context.Context) (string, error) {
	m.mu.Lock()
	switch m.state {
	case StateReady:
		v := m.rootValue
		m.mu.Unlock()
		return v, nil
	case StateFailed:
		m.mu.Unlock()
		return "", nil
	}
	m.state = StateLoading
	m.mu.Unlock()

	value, ok, err := m.store.GetString(ctx, KeyRootDirectory)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateFailed
		m.logger.Warn("root preference load failed", slog.String("error", err.Error()))
		return "", err
	}
	m.state = StateReady
	if ok {
		m.rootValue = value
	}
	return m.rootValue, nil
}

// SetRoot persists the root-directory override. The in-memory value is
// updated before the write so it takes effect even when persistence
// fails.
func (m *Manager) SetRoot(ctx context.Context, loc string) error {
	m.mu.Lock()
	m.rootValue = loc
	m.state = StateReady
	m.mu.Unlock()

	if loc == "" {
		return m.store.RemoveString(ctx, KeyRootDirectory)
	}
	return m.store.SetString(ctx, KeyRootDirectory, loc)
}

// Root returns the in-memory root override without touching the store.
func (m *Manager) Root() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rootValue
}

// ShowTimestamps reports whether listing screens render timestamps.
func (m *Manager) ShowTimestamps(ctx context.Context) bool {
	return m.getBool(ctx, KeyShowTimestamps, false)
}

// SetShowTimestamps persists the timestamp display toggle.
func (m *Manager) SetShowTimestamps(ctx context.Context, v bool) error {
	return m.setBool(ctx, KeyShowTimestamps, v)
}

// WelcomeCompleted reports whether the first-run flow has finished.
func (m *Manager) WelcomeCompleted(ctx context.Context) bool {
	return m.getBool(ctx, KeyWelcomeCompleted, false)
}

// SetWelcomeCompleted persists the first-run flag.
func (m *Manager) SetWelcomeCompleted(ctx context.Context, v bool) error {
	return m.setBool(ctx, KeyWelcomeCompleted, v)
}

// AutoSaveOnExit reports whether the editor saves when backgrounded.
func (m *Manager) AutoSaveOnExit(ctx context.Context) bool {
	return m.getBool(ctx, KeyAutoSaveOnExit, true)
}

// SetAutoSaveOnExit persists the auto-save toggle.
func (m *Manager) SetAutoSaveOnExit(ctx context.Context, v bool) error {
	return m.setBool(ctx, KeyAutoSaveOnExit, v)
}

// FABLeft reports whether the action button docks on the left.
func (m *Manager) FABLeft(ctx context.Context) bool {
	return m.getBool(ctx, KeyFABLeft, false)
}

// SetFABLeft persists the action button position.
func (m *Manager) SetFABLeft(ctx context.Context, v bool) error {
	return m.setBool(ctx, KeyFABLeft, v)
}

// QuickNote returns the quick-note locator, empty when unset.
func (m *Manager) QuickNote(ctx context.Context) string {
	return m.getString(ctx, KeyQuickNote, "")
}

// SetQuickNote persists the quick-note locator; an empty locator clears
// the pointer.
func (m *Manager) SetQuickNote(ctx context.Context, loc string) error {
	if loc == "" {
		m.remember(KeyQuickNote, "")
		return m.store.RemoveString(ctx, KeyQuickNote)
	}
	m.remember(KeyQuickNote, loc)
	return m.store.SetString(ctx, KeyQuickNote, loc)
}

func (m *Manager) getString(ctx context.Context, key, fallback string) string {
	m.mu.Lock()
	if v, ok := m.loaded[key]; ok {
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	value, ok, err := m.store.GetString(ctx, key)
	if err != nil {
		m.logger.Warn("preference read failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	if !ok {
		value = fallback
	}
	m.remember(key, value)
	return value
}

func (m *Manager) getBool(ctx context.Context, key string, fallback bool) bool {
	raw := m.getString(ctx, key, strconv.FormatBool(fallback))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (m *Manager) setBool(ctx context.Context, key string, v bool) error {
	s := strconv.FormatBool(v)
	m.remember(key, s)
	return m.store.SetString(ctx, key, s)
}

func (m *Manager) remember(key, value string) {
	m.mu.Lock()
	m.loaded[key] = value
	m.mu.Unlock()
}
