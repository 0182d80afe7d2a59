// Package tray implements the system tray icon and menu for the shell.
// The icon is created once at startup and lives for the process lifetime;
// hide/restore cycles never touch it.
package tray

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/platform"
	"github.com/palefire-io/palefire/internal/shell/event"
)

const baseTooltip = "Palefire"

// MenuItem is one entry of the tray context menu.
type MenuItem struct {
	Label     string
	Disabled  bool
	Separator bool
	OnClick   func()
}

// Handle is the port to the native tray icon. The production implementation
// wraps the wails system tray; tests use a fake.
type Handle interface {
	SetTooltip(tooltip string)
	SetMenu(items []MenuItem)
	// OnClick registers the single-click handler for the icon itself.
	OnClick(fn func())
}

// Coordinator owns the tray icon and routes its events onto the bus.
type Coordinator struct {
	handle Handle
	bus    *event.Bus
	log    *zap.Logger

	mu     sync.Mutex
	suffix string
}

// New creates the coordinator. Call Start once the native tray exists.
func New(handle Handle, bus *event.Bus, log *zap.Logger) *Coordinator {
	return &Coordinator{handle: handle, bus: bus, log: log}
}

// Start builds the context menu and wires click routing. The settings entry
// label follows platform convention.
func (c *Coordinator) Start(variant platform.Variant) {
	settingsLabel := "Settings…"
	if variant == platform.MacOS {
		settingsLabel = "Preferences…"
	}

	c.handle.SetMenu([]MenuItem{
		{Label: "Palefire", Disabled: true},
		{Separator: true},
		{Label: "Show", OnClick: func() {
			c.bus.Publish(event.Event{Kind: event.KindTrayShowClicked})
		}},
		{Label: settingsLabel, OnClick: func() {
			c.bus.Publish(event.Event{Kind: event.KindTrayShowClicked})
			c.bus.Publish(event.Event{Kind: event.KindOpenOptionsRequested})
		}},
		{Separator: true},
		{Label: "Quit", OnClick: func() {
			c.bus.Publish(event.Event{Kind: event.KindQuitRequested})
		}},
	})

	c.handle.OnClick(func() {
		c.bus.Publish(event.Event{Kind: event.KindTrayClicked})
	})

	c.handle.SetTooltip(baseTooltip)
	c.log.Info("tray ready")
}

// SetTooltipSuffix appends extra info to the base tooltip, e.g.
// "Palefire — update 2.5.0 ready". An empty suffix resets to the base.
func (c *Coordinator) SetTooltipSuffix(suffix string) {
	c.mu.Lock()
	c.suffix = suffix
	tooltip := formatTooltip(suffix)
	c.mu.Unlock()

	c.handle.SetTooltip(tooltip)
}

// TooltipSuffix returns the current suffix (used by tests).
func (c *Coordinator) TooltipSuffix() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suffix
}

func formatTooltip(suffix string) string {
	if suffix == "" {
		return baseTooltip
	}
	return fmt.Sprintf("%s — %s", baseTooltip, suffix)
}
