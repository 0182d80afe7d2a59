package models

// HotkeyAction identifies a logical global-shortcut action.
type HotkeyAction string

// Hotkey actions.
const (
	ActionQuickChat   HotkeyAction = "quick_chat"
	ActionBossKey     HotkeyAction = "boss_key"
	ActionZenMode     HotkeyAction = "zen_mode"
	ActionAlwaysOnTop HotkeyAction = "always_on_top"
)

// Actions lists every hotkey action in a stable order.
func Actions() []HotkeyAction {
	return []HotkeyAction{ActionQuickChat, ActionBossKey, ActionZenMode, ActionAlwaysOnTop}
}

// HotkeyBinding holds the user configuration for one hotkey action.
type HotkeyBinding struct {
	Enabled     bool   `yaml:"enabled"`
	Accelerator string `yaml:"accelerator"`
}

// HotkeysConfig holds the master switch and per-action bindings.
type HotkeysConfig struct {
	Enabled  bool                           `yaml:"enabled"`
	Bindings map[HotkeyAction]HotkeyBinding `yaml:"bindings"`
}

// NotificationsConfig holds settings for response-complete notifications.
type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WindowConfig holds window-behavior settings.
type WindowConfig struct {
	// TrayOnClose controls what the close button does on Windows/Linux:
	// true hides the main window to the tray, false quits the process.
	TrayOnClose bool `yaml:"tray_on_close"`
	AlwaysOnTop bool `yaml:"always_on_top"`
	ZenMode     bool `yaml:"zen_mode"`
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool `yaml:"check_on_startup"`
	AutoDownload   bool `yaml:"auto_download"`
}

// Settings represents global application settings.
// This corresponds to ~/.palefire/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version"`
	Hotkeys       HotkeysConfig       `yaml:"hotkeys"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Window        WindowConfig        `yaml:"window"`
	Updates       UpdatesConfig       `yaml:"updates"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Hotkeys: HotkeysConfig{
			Enabled: true,
			Bindings: map[HotkeyAction]HotkeyBinding{
				ActionQuickChat:   {Enabled: true, Accelerator: "CmdOrCtrl+Shift+Space"},
				ActionBossKey:     {Enabled: true, Accelerator: "CmdOrCtrl+Shift+H"},
				ActionZenMode:     {Enabled: false, Accelerator: "CmdOrCtrl+Shift+Z"},
				ActionAlwaysOnTop: {Enabled: false, Accelerator: "CmdOrCtrl+Shift+T"},
			},
		},
		Notifications: NotificationsConfig{Enabled: true},
		Window: WindowConfig{
			TrayOnClose: true,
		},
		Updates: UpdatesConfig{
			CheckOnStartup: true,
			AutoDownload:   false,
		},
	}
}

// Binding returns the configured binding for an action, falling back to the
// default when the settings file predates the action.
func (s *Settings) Binding(action HotkeyAction) HotkeyBinding {
	if b, ok := s.Hotkeys.Bindings[action]; ok {
		return b
	}
	if b, ok := NewSettings().Hotkeys.Bindings[action]; ok {
		return b
	}
	return HotkeyBinding{}
}
