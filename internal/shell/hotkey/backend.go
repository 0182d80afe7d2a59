// Package hotkey registers global keyboard shortcuts and translates their
// activation into shell events. Registration goes through one of two
// backends: native OS registration, or the desktop-portal D-Bus interface
// on Wayland compositors that forbid direct hooking. Consumers never see
// which backend fired; both surface the same bus event.
package hotkey

import "errors"

// ErrBackendUnavailable is returned when a backend cannot be used on the
// current system.
var ErrBackendUnavailable = errors.New("hotkey backend not available on this system")

// ErrRegistrationFailed wraps per-hotkey registration failures (e.g. the
// accelerator is claimed by another process). Never fatal: the app stays
// fully usable with zero hotkeys registered.
var ErrRegistrationFailed = errors.New("hotkey registration failed")

// ErrPortalUnavailable is returned on Wayland when no usable
// GlobalShortcuts portal exists and there is nothing to fall back to.
var ErrPortalUnavailable = errors.New("global shortcuts portal unavailable")

// Backend abstracts one hotkey registration mechanism so the coordinator
// can swap between native and portal registration per platform.
type Backend interface {
	// Register binds an accelerator under a stable id and returns a
	// handle delivering activations.
	Register(id string, accel Accel) (Registration, error)

	// Name returns a human-readable backend name for logging.
	Name() string

	// Close releases backend-wide resources after all registrations are
	// gone.
	Close() error
}

// Registration is one bound hotkey.
type Registration interface {
	// Activated returns the channel that receives a tick per key press.
	// The channel is never closed; a press racing teardown is dropped,
	// not delivered to a closed channel. Teardown is Unregister
	// returning.
	Activated() <-chan struct{}

	// Unregister removes the binding. Idempotent.
	Unregister() error
}
