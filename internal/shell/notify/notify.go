// Package notify turns response-complete events into OS notifications
// and a dock/taskbar badge, and clears the badge when the user comes
// back to the main window.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/shell/event"
)

// Notifier posts OS notifications.
type Notifier interface {
	// Notify shows a notification. Implementations must not block on
	// user interaction.
	Notify(title, message string) error

	// Supported reports whether notifications can be delivered at all
	// on this system.
	Supported() bool
}

// BadgeRenderer draws or clears the unread badge on the app icon.
// Implementations degrade silently on platforms without badges.
type BadgeRenderer interface {
	SetBadge(label string) error
	ClearBadge() error
}

// State tracks where we are between a finished response and the user
// seeing it.
type State int

const (
	// StateIdle means nothing is pending.
	StateIdle State = iota
	// StateNotified means a notification and badge are out, waiting
	// for the user to focus the main window.
	StateNotified
)

// Coordinator owns the notified-state machine.
type Coordinator struct {
	store    *config.Store
	notifier Notifier
	badge    BadgeRenderer
	focused  func() bool
	log      *zap.Logger

	mu    sync.Mutex
	state State
}

// NewCoordinator wires the coordinator. focused reports whether the
// main window currently has focus.
func NewCoordinator(store *config.Store, notifier Notifier, badge BadgeRenderer, focused func() bool, log *zap.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		notifier: notifier,
		badge:    badge,
		focused:  focused,
		log:      log,
	}
}

// Attach subscribes the coordinator to the bus events it consumes.
func (c *Coordinator) Attach(bus *event.Bus) {
	bus.Subscribe(event.KindResponseComplete, func(event.Event) { c.OnResponseComplete() })
	bus.Subscribe(event.KindWindowFocused, func(ev event.Event) {
		if ev.Role == models.RoleMain {
			c.OnMainFocus()
		}
	})
}

// OnResponseComplete fires the notification and badge for a finished
// response, unless the user is already looking at the window or has
// notifications turned off.
func (c *Coordinator) OnResponseComplete() {
	if c.focused() {
		return
	}
	if !c.store.NotificationsEnabled() {
		return
	}

	c.mu.Lock()
	already := c.state == StateNotified
	c.state = StateNotified
	c.mu.Unlock()

	if err := c.badge.SetBadge("●"); err != nil {
		c.log.Debug("badge not set", zap.Error(err))
	}
	if already {
		// Badge refreshed, but one notification per unseen batch is enough.
		return
	}
	if !c.notifier.Supported() {
		return
	}
	if err := c.notifier.Notify("Palefire", "Response complete"); err != nil {
		c.log.Warn("notification failed", zap.Error(err))
	}
}

// OnMainFocus resets the state machine and clears the badge. The clear
// is unconditional: focus is the single recovery path, and it must work
// even when the tracked state and the rendered badge disagree.
func (c *Coordinator) OnMainFocus() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	if err := c.badge.ClearBadge(); err != nil {
		c.log.Debug("badge not cleared", zap.Error(err))
	}
}

// State returns the current machine state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
