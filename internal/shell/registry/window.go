// Package registry owns creation, destruction, and lookup of the shell's
// native windows. It is the only component allowed to hold native window
// handles; everything else refers to windows by role.
package registry

import (
	"github.com/palefire-io/palefire/internal/models"
)

// NativeWindow is the port to one native window. The production
// implementation wraps a wails webview window; tests use fakes.
type NativeWindow interface {
	Show()
	Hide()
	Focus()
	Minimise()
	UnMinimise()
	IsMinimised() bool
	// SetSkipTaskbar excludes the window from the taskbar while hidden to
	// tray. A no-op on platforms without the concept (macOS).
	SetSkipTaskbar(skip bool)
	SetAlwaysOnTop(onTop bool)
	// Destroy tears down the native window and detaches all listeners
	// registered at creation. Implementations must tolerate double calls.
	Destroy()
}

// Callbacks are the OS-level listeners the registry attaches at window
// creation. The factory must stop invoking them once Destroy has run.
type Callbacks struct {
	// OnCloseRequested fires when the user asks to close the window.
	// Returning true cancels the native close so the visibility policy can
	// decide what actually happens.
	OnCloseRequested func() bool
	// OnClosed fires after the native window is gone.
	OnClosed func()
	OnFocus  func()
	OnBlur   func()
}

// Factory builds native windows for roles.
type Factory interface {
	Create(role models.WindowRole, cb Callbacks) (NativeWindow, error)
}

// Handle pairs a native window with its role and tracked visibility state.
type Handle struct {
	role  models.WindowRole
	win   NativeWindow
	state models.VisibilityState
}

// Role returns the window's role tag.
func (h *Handle) Role() models.WindowRole { return h.role }

// State returns the tracked visibility state.
func (h *Handle) State() models.VisibilityState { return h.state }

// Native exposes the underlying window to the action executor.
func (h *Handle) Native() NativeWindow { return h.win }
