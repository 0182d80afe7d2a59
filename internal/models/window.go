package models

// WindowRole tags each native window with its function in the shell.
type WindowRole string

// Window roles. Every role except Main is an at-most-one singleton; Main is
// exactly one for the process lifetime (recreated, never duplicated).
const (
	RoleMain      WindowRole = "main"
	RoleOptions   WindowRole = "options"
	RoleAuth      WindowRole = "auth"
	RoleQuickChat WindowRole = "quickChat"
	RoleAbout     WindowRole = "about"
)

// WindowRoles lists every role in a stable order.
func WindowRoles() []WindowRole {
	return []WindowRole{RoleMain, RoleOptions, RoleAuth, RoleQuickChat, RoleAbout}
}

// VisibilityState is the per-window visibility as tracked by the registry.
// Transitions are driven only by the visibility policy.
type VisibilityState int

const (
	// StateVisible means the window is shown and on the taskbar/dock.
	StateVisible VisibilityState = iota
	// StateHiddenToTray means not visible, not minimized, and excluded
	// from the taskbar. Distinct from StateMinimized.
	StateHiddenToTray
	// StateMinimized is the OS-level minimize.
	StateMinimized
	// StateDestroyed means the underlying native window is gone.
	StateDestroyed
)

func (s VisibilityState) String() string {
	switch s {
	case StateVisible:
		return "visible"
	case StateHiddenToTray:
		return "hiddenToTray"
	case StateMinimized:
		return "minimized"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
