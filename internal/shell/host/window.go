package host

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/shell/registry"
)

// windowSpec is the per-role window configuration.
type windowSpec struct {
	title       string
	url         string
	width       int
	height      int
	minWidth    int
	minHeight   int
	frameless   bool
	alwaysOnTop bool
	hidden      bool
}

var windowSpecs = map[models.WindowRole]windowSpec{
	models.RoleMain: {
		title: "Palefire", url: AppURL,
		width: 1280, height: 860, minWidth: 800, minHeight: 600,
	},
	models.RoleOptions: {
		title: "Settings", url: AppURL + "/desktop/settings",
		width: 720, height: 560, minWidth: 520, minHeight: 400,
	},
	models.RoleAuth: {
		title: "Sign in", url: AppURL + "/login",
		width: 480, height: 640,
	},
	models.RoleQuickChat: {
		title: "Quick Chat", url: AppURL + "/desktop/quick-chat",
		width: 680, height: 120,
		frameless: true, alwaysOnTop: true, hidden: true,
	},
	models.RoleAbout: {
		title: "About Palefire", url: AppURL + "/desktop/about",
		width: 400, height: 320,
	},
}

// WindowFactory builds wails webview windows for registry roles.
type WindowFactory struct {
	app *application.App
	log *zap.Logger

	mu   sync.Mutex
	wins map[models.WindowRole]*wailsWindow
}

func newWindowFactory(app *application.App, log *zap.Logger) *WindowFactory {
	return &WindowFactory{
		app:  app,
		log:  log,
		wins: make(map[models.WindowRole]*wailsWindow),
	}
}

// Create implements registry.Factory.
func (f *WindowFactory) Create(role models.WindowRole, cb registry.Callbacks) (registry.NativeWindow, error) {
	spec, ok := windowSpecs[role]
	if !ok {
		return nil, fmt.Errorf("no window spec for role %q", role)
	}

	win := f.app.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:        string(role),
		Title:       spec.title,
		URL:         spec.url,
		Width:       spec.width,
		Height:      spec.height,
		MinWidth:    spec.minWidth,
		MinHeight:   spec.minHeight,
		Frameless:   spec.frameless,
		AlwaysOnTop: spec.alwaysOnTop,
		Hidden:      spec.hidden,
	})

	w := &wailsWindow{win: win, onClosed: cb.OnClosed}

	win.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		if w.closing(cb.OnCloseRequested) {
			e.Cancel()
		}
	})
	win.RegisterHook(events.Common.WindowFocus, func(*application.WindowEvent) {
		if cb.OnFocus != nil && !w.destroyed.Load() {
			cb.OnFocus()
		}
	})
	win.RegisterHook(events.Common.WindowLostFocus, func(*application.WindowEvent) {
		if cb.OnBlur != nil && !w.destroyed.Load() {
			cb.OnBlur()
		}
	})

	f.mu.Lock()
	f.wins[role] = w
	f.mu.Unlock()
	return w, nil
}

// get returns the live window for a role, or nil.
func (f *WindowFactory) get(role models.WindowRole) *wailsWindow {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.wins[role]
	if w == nil || w.destroyed.Load() {
		return nil
	}
	return w
}

// wailsWindow adapts one webview window to the registry port.
type wailsWindow struct {
	win       *application.WebviewWindow
	onClosed  func()
	destroyed atomic.Bool
}

func (w *wailsWindow) Show()             { w.win.Show() }
func (w *wailsWindow) Hide()             { w.win.Hide() }
func (w *wailsWindow) Focus()            { w.win.Focus() }
func (w *wailsWindow) Minimise()         { w.win.Minimise() }
func (w *wailsWindow) UnMinimise()       { w.win.UnMinimise() }
func (w *wailsWindow) IsMinimised() bool { return w.win.IsMinimised() }

// SetSkipTaskbar is a no-op here: wails removes hidden windows from the
// taskbar on Windows and Linux already, which is the behavior the
// policy's hide-to-tray expects.
func (w *wailsWindow) SetSkipTaskbar(bool) {}

func (w *wailsWindow) SetAlwaysOnTop(onTop bool) { w.win.SetAlwaysOnTop(onTop) }

// closing implements the WindowClosing decision. Returns true when the
// close must be cancelled. A close that proceeds is final: the window
// is marked destroyed and the registry hears about it, whether the user
// hit the title-bar X or the shell called Destroy.
func (w *wailsWindow) closing(onCloseRequested func() bool) bool {
	if w.destroyed.Load() {
		return false
	}
	if onCloseRequested != nil && onCloseRequested() {
		return true
	}
	w.markClosed()
	return false
}

func (w *wailsWindow) markClosed() {
	if w.destroyed.Swap(true) {
		return
	}
	if w.onClosed != nil {
		w.onClosed()
	}
}

// Destroy closes the window for real. The destroyed flag is set first
// so the WindowClosing hook lets the close through without consulting
// the close callback.
func (w *wailsWindow) Destroy() {
	w.markClosed()
	w.win.Close()
}
