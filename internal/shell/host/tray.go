package host

import (
	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/palefire-io/palefire/internal/shell/tray"
)

// Tray adapts the wails system tray to the tray coordinator's port.
type Tray struct {
	app  *application.App
	tray *application.SystemTray
}

func newTray(app *application.App) *Tray {
	t := app.SystemTray.New()
	t.SetIcon(trayIcon)
	return &Tray{app: app, tray: t}
}

// SetTooltip maps to the tray label; wails renders it as hover text on
// Windows and as the status-item text on macOS.
func (t *Tray) SetTooltip(tooltip string) {
	t.tray.SetLabel(tooltip)
}

func (t *Tray) SetMenu(items []tray.MenuItem) {
	menu := t.app.NewMenu()
	for _, item := range items {
		if item.Separator {
			menu.AddSeparator()
			continue
		}
		entry := menu.Add(item.Label)
		if item.Disabled {
			entry.SetEnabled(false)
		}
		if fn := item.OnClick; fn != nil {
			entry.OnClick(func(*application.Context) { fn() })
		}
	}
	t.tray.SetMenu(menu)
}

func (t *Tray) OnClick(fn func()) {
	t.tray.OnClick(fn)
}
