package host

import (
	"sync/atomic"

	"github.com/palefire-io/palefire/internal/shell"
	"github.com/palefire-io/palefire/internal/shell/hotkey"
)

// ShellAPI is the service bound into the webview. It is registered at
// application construction, before the shell exists, so every method
// tolerates an unbound state. Calls may arrive in any order.
type ShellAPI struct {
	shell atomic.Pointer[shell.Shell]
	emit  func(name string, data any)
}

// Bind attaches the shell once composition is done.
func (a *ShellAPI) Bind(s *shell.Shell) { a.shell.Store(s) }

func (a *ShellAPI) OpenOptions() {
	if s := a.shell.Load(); s != nil {
		s.OpenOptions()
	}
}

func (a *ShellAPI) OpenAbout() {
	if s := a.shell.Load(); s != nil {
		s.OpenAbout()
	}
}

func (a *ShellAPI) OpenAuth() {
	if s := a.shell.Load(); s != nil {
		s.OpenAuth()
	}
}

func (a *ShellAPI) CloseAuth() {
	if s := a.shell.Load(); s != nil {
		s.CloseAuth()
	}
}

func (a *ShellAPI) SubmitQuickChat(text string) {
	if s := a.shell.Load(); s != nil {
		s.SubmitQuickChat(text)
	}
}

func (a *ShellAPI) HideQuickChat() {
	if s := a.shell.Load(); s != nil {
		s.HideQuickChat()
	}
}

func (a *ShellAPI) CancelQuickChat() {
	if s := a.shell.Load(); s != nil {
		s.CancelQuickChat()
	}
}

func (a *ShellAPI) ResponseComplete() {
	if s := a.shell.Load(); s != nil {
		s.ResponseComplete()
	}
}

func (a *ShellAPI) AlwaysOnTop() bool {
	if s := a.shell.Load(); s != nil {
		return s.AlwaysOnTop()
	}
	return false
}

func (a *ShellAPI) SetAlwaysOnTop(enabled bool) error {
	if s := a.shell.Load(); s != nil {
		return s.SetAlwaysOnTop(enabled)
	}
	return nil
}

func (a *ShellAPI) ZenMode() bool {
	if s := a.shell.Load(); s != nil {
		return s.ZenMode()
	}
	return false
}

// SetZenMode persists the flag and tells the content so it can reduce
// its chrome; the window-level effect is the shell's.
func (a *ShellAPI) SetZenMode(enabled bool) error {
	s := a.shell.Load()
	if s == nil {
		return nil
	}
	if err := s.SetZenMode(enabled); err != nil {
		return err
	}
	if a.emit != nil {
		a.emit("palefire:zen-mode", enabled)
	}
	return nil
}

func (a *ShellAPI) WindowCount() int {
	if s := a.shell.Load(); s != nil {
		return s.WindowCount()
	}
	return 0
}

func (a *ShellAPI) IsMainFocused() bool {
	if s := a.shell.Load(); s != nil {
		return s.IsMainFocused()
	}
	return false
}

func (a *ShellAPI) PlatformHotkeyStatus() hotkey.Status {
	if s := a.shell.Load(); s != nil {
		return s.PlatformHotkeyStatus()
	}
	return hotkey.Status{}
}
