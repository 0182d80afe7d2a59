package config

import (
	"sync"

	"github.com/palefire-io/palefire/internal/models"
)

// LoadSettings loads the global settings from ~/.palefire/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// SaveSettings saves the global settings to ~/.palefire/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// Store is the settings store consumed by the shell coordinators. It holds
// the current settings in memory and persists mutations back to disk.
// Reads happen on the shell event loop and writes can come from the
// fsnotify watcher goroutine, so access is guarded.
type Store struct {
	mu       sync.RWMutex
	settings *models.Settings
	persist  func(*models.Settings) error
}

// NewStore creates a store around already-loaded settings. Mutations
// persist to the global settings file.
func NewStore(s *models.Settings) *Store {
	if s == nil {
		s = models.NewSettings()
	}
	return &Store{settings: s, persist: SaveSettings}
}

// NewMemoryStore creates a store that never touches disk. Used by tests.
func NewMemoryStore(s *models.Settings) *Store {
	st := NewStore(s)
	st.persist = func(*models.Settings) error { return nil }
	return st
}

// OpenStore loads settings from disk and wraps them in a store.
func OpenStore() (*Store, error) {
	s, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	return NewStore(s), nil
}

// Snapshot returns a copy of the current settings.
func (st *Store) Snapshot() models.Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return *st.settings
}

// Replace swaps in freshly loaded settings (used by the file watcher).
func (st *Store) Replace(s *models.Settings) {
	if s == nil {
		return
	}
	st.mu.Lock()
	st.settings = s
	st.mu.Unlock()
}

// NotificationsEnabled reports whether response-complete notifications are on.
func (st *Store) NotificationsEnabled() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Notifications.Enabled
}

// HotkeysEnabled reports the master hotkeys switch.
func (st *Store) HotkeysEnabled() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Hotkeys.Enabled
}

// Binding returns the binding for one hotkey action.
func (st *Store) Binding(action models.HotkeyAction) models.HotkeyBinding {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Binding(action)
}

// TrayOnClose reports whether closing the main window hides it to the tray
// instead of quitting (Windows/Linux behavior).
func (st *Store) TrayOnClose() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Window.TrayOnClose
}

// AlwaysOnTop reports the persisted always-on-top flag.
func (st *Store) AlwaysOnTop() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Window.AlwaysOnTop
}

// ZenMode reports the persisted zen-mode flag.
func (st *Store) ZenMode() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Window.ZenMode
}

// SetAlwaysOnTop updates and persists the always-on-top flag.
func (st *Store) SetAlwaysOnTop(enabled bool) error {
	return st.mutate(func(s *models.Settings) {
		s.Window.AlwaysOnTop = enabled
	})
}

// SetZenMode updates and persists the zen-mode flag.
func (st *Store) SetZenMode(enabled bool) error {
	return st.mutate(func(s *models.Settings) {
		s.Window.ZenMode = enabled
	})
}

// SetHotkeysEnabled updates and persists the master hotkeys switch.
func (st *Store) SetHotkeysEnabled(enabled bool) error {
	return st.mutate(func(s *models.Settings) {
		s.Hotkeys.Enabled = enabled
	})
}

// SetBinding updates and persists one hotkey binding.
func (st *Store) SetBinding(action models.HotkeyAction, b models.HotkeyBinding) error {
	return st.mutate(func(s *models.Settings) {
		if s.Hotkeys.Bindings == nil {
			s.Hotkeys.Bindings = make(map[models.HotkeyAction]models.HotkeyBinding)
		}
		s.Hotkeys.Bindings[action] = b
	})
}

// SetNotificationsEnabled updates and persists the notifications switch.
func (st *Store) SetNotificationsEnabled(enabled bool) error {
	return st.mutate(func(s *models.Settings) {
		s.Notifications.Enabled = enabled
	})
}

func (st *Store) mutate(fn func(*models.Settings)) error {
	st.mu.Lock()
	fn(st.settings)
	snapshot := *st.settings
	st.mu.Unlock()
	return st.persist(&snapshot)
}
