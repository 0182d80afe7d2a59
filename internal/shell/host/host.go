// Package host holds every wails v3 touchpoint: the application object,
// window factory, tray icon, and the script bridge. The core packages
// only ever see the ports defined next to their consumers.
package host

import (
	_ "embed"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/shell/event"
)

//go:embed icons/appicon.png
var appIcon []byte

//go:embed icons/tray-icon.png
var trayIcon []byte

// AppURL is the embedded web application.
const AppURL = "https://app.palefire.io"

// Host owns the wails application and the adapters built on it.
type Host struct {
	App     *application.App
	Windows *WindowFactory
	Tray    *Tray
	API     *ShellAPI
	log     *zap.Logger
}

// New constructs the wails application. Closing the last window must
// never quit: the tray owns process lifetime on every platform.
func New(log *zap.Logger) *Host {
	api := &ShellAPI{}
	app := application.New(application.Options{
		Name: "Palefire",
		Icon: appIcon,
		Services: []application.Service{
			application.NewService(api),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
		Windows: application.WindowsOptions{
			DisableQuitOnLastWindowClosed: true,
		},
		Linux: application.LinuxOptions{
			DisableQuitOnLastWindowClosed: true,
			ProgramName:                   "palefire",
		},
	})

	api.emit = func(name string, data any) {
		app.Event.Emit(name, data)
	}

	h := &Host{App: app, API: api, log: log}
	h.Windows = newWindowFactory(app, log)
	h.Tray = newTray(app)
	return h
}

// PublishDockActivation forwards macOS reopen events onto the shell bus.
// Call before app.Run.
func (h *Host) PublishDockActivation(bus *event.Bus) {
	h.App.OnApplicationEvent(events.Mac.ApplicationShouldHandleReopen, func(*application.ApplicationEvent) {
		bus.Publish(event.Event{Kind: event.KindDockActivated})
	})
}

// Run starts the wails main loop. Blocks until Quit.
func (h *Host) Run() error {
	return h.App.Run()
}

// Quit stops the wails main loop.
func (h *Host) Quit() {
	h.App.Quit()
}
