// Package policy is the shell's visibility decision logic. Decide is a pure
// function from an incoming trigger plus current window state to the
// ordered list of actions the executor should apply. All platform
// branching for window visibility lives here and nowhere else.
package policy

import (
	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/platform"
)

// Trigger is the OS-level event the policy is deciding for.
type Trigger int

const (
	// TrigTrayClick is a single click on the tray icon.
	TrigTrayClick Trigger = iota
	// TrigTrayShowMenu is the tray context menu's "Show" item.
	TrigTrayShowMenu
	// TrigDockActivate is a dock/taskbar activation (macOS reopen).
	TrigDockActivate
	// TrigMainCloseButton is the main window's close button.
	TrigMainCloseButton
	// TrigNotificationClick is a click on a desktop notification.
	TrigNotificationClick
	// TrigBossKey is the hide/restore toggle hotkey.
	TrigBossKey
	// TrigQuickChatHotkey toggles the quick-chat capture window.
	TrigQuickChatHotkey
	// TrigOpenWindow is a request to open the singleton window named in
	// Input.Target (options, about, auth).
	TrigOpenWindow
)

// Input is the state snapshot Decide works from. The policy never reads
// state on its own; callers pass everything in.
type Input struct {
	Trigger  Trigger
	Platform platform.Variant

	MainAlive bool
	MainState models.VisibilityState

	// Target describes the window a TrigOpenWindow or TrigQuickChatHotkey
	// trigger is aimed at.
	Target      models.WindowRole
	TargetAlive bool
	TargetState models.VisibilityState

	// TrayOnClose is the user preference for the close button on
	// Windows/Linux: hide to tray when true, quit when false.
	TrayOnClose bool
}

// Op is one kind of window action.
type Op int

const (
	// OpCreate builds a fresh window for Action.Role.
	OpCreate Op = iota
	// OpShow makes the window visible (no taskbar changes).
	OpShow
	// OpFocus raises and focuses the window.
	OpFocus
	// OpHide hides the window without tray semantics (macOS close).
	OpHide
	// OpHideToTray hides the window and excludes it from the taskbar.
	OpHideToTray
	// OpRestoreFromTray un-minimizes, re-adds to the taskbar, and shows.
	OpRestoreFromTray
	// OpQuit terminates the process.
	OpQuit
)

// Action is one step of the decided transition.
type Action struct {
	Op   Op
	Role models.WindowRole
}

func act(op Op, role models.WindowRole) Action { return Action{Op: op, Role: role} }

// Decide maps a trigger and the current state to the actions to apply, in
// order. It has no side effects and no failure modes.
func Decide(in Input) []Action {
	switch in.Trigger {
	case TrigMainCloseButton:
		return decideMainClose(in)
	case TrigDockActivate:
		return decideActivate(in)
	case TrigTrayClick, TrigTrayShowMenu, TrigNotificationClick:
		return decideRestore(in)
	case TrigBossKey:
		return decideBossKey(in)
	case TrigQuickChatHotkey:
		return decideQuickChatToggle(in)
	case TrigOpenWindow:
		return decideOpenSingleton(in)
	}
	return nil
}

// decideMainClose: macOS hides the window and keeps the process (dock icon
// stays). Windows/Linux hide to tray, unless the user disabled
// tray-on-close, in which case the process quits.
func decideMainClose(in Input) []Action {
	if in.Platform == platform.MacOS {
		return []Action{act(OpHide, models.RoleMain)}
	}
	if in.TrayOnClose {
		return []Action{act(OpHideToTray, models.RoleMain)}
	}
	return []Action{act(OpQuit, models.RoleMain)}
}

// decideActivate: dock activation with no live main recreates it from
// scratch (macOS only; Windows/Linux keep one hidden instance alive, so a
// taskbar activate there is just a restore).
func decideActivate(in Input) []Action {
	if !in.MainAlive {
		if in.Platform == platform.MacOS {
			return []Action{
				act(OpCreate, models.RoleMain),
				act(OpShow, models.RoleMain),
				act(OpFocus, models.RoleMain),
			}
		}
		// Windows/Linux never destroy main; nothing sane to do.
		return nil
	}
	return decideRestore(in)
}

// decideRestore: bring an existing (possibly hidden or minimized) main
// window back to visible and focused; recreate it when the platform allows
// a dead main (macOS).
func decideRestore(in Input) []Action {
	if !in.MainAlive {
		if in.Platform == platform.MacOS {
			return []Action{
				act(OpCreate, models.RoleMain),
				act(OpShow, models.RoleMain),
				act(OpFocus, models.RoleMain),
			}
		}
		return nil
	}
	switch in.MainState {
	case models.StateHiddenToTray, models.StateMinimized:
		return []Action{
			act(OpRestoreFromTray, models.RoleMain),
			act(OpFocus, models.RoleMain),
		}
	default:
		return []Action{act(OpFocus, models.RoleMain)}
	}
}

// decideBossKey toggles: visible main hides to tray, hidden main restores.
func decideBossKey(in Input) []Action {
	if !in.MainAlive {
		return decideRestore(in)
	}
	if in.MainState == models.StateVisible {
		if in.Platform == platform.MacOS {
			return []Action{act(OpHide, models.RoleMain)}
		}
		return []Action{act(OpHideToTray, models.RoleMain)}
	}
	return decideRestore(in)
}

// decideQuickChatToggle shows the quick-chat capture window, or hides it if
// it is already up.
func decideQuickChatToggle(in Input) []Action {
	if in.TargetAlive && in.TargetState == models.StateVisible {
		return []Action{act(OpHide, models.RoleQuickChat)}
	}
	if in.TargetAlive {
		return []Action{
			act(OpShow, models.RoleQuickChat),
			act(OpFocus, models.RoleQuickChat),
		}
	}
	return []Action{
		act(OpCreate, models.RoleQuickChat),
		act(OpShow, models.RoleQuickChat),
		act(OpFocus, models.RoleQuickChat),
	}
}

// decideOpenSingleton: a live singleton gets focused, never duplicated.
func decideOpenSingleton(in Input) []Action {
	if in.TargetAlive {
		return []Action{act(OpFocus, in.Target)}
	}
	return []Action{
		act(OpCreate, in.Target),
		act(OpShow, in.Target),
		act(OpFocus, in.Target),
	}
}
