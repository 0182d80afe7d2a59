// Package event implements the shell's internal event bus. OS-level
// triggers (tray clicks, hotkeys, window focus changes, update checks) are
// translated into typed events with a closed set of kinds, and every
// coordinator subscribes at composition time. Dispatch is single-threaded:
// one goroutine drains the queue, so handlers never run concurrently and
// the shell's window state needs no locking.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/models"
)

// Kind is the closed enum of shell event kinds.
type Kind int

const (
	// KindTrayClicked fires on a tray icon single-click.
	KindTrayClicked Kind = iota
	// KindTrayShowClicked fires on the tray "Show" menu item.
	KindTrayShowClicked
	// KindQuitRequested fires on the tray "Quit" menu item or an OS quit.
	KindQuitRequested
	// KindDockActivated fires on dock/taskbar activation (macOS reopen).
	KindDockActivated
	// KindMainCloseRequested fires when the main window's close button is
	// clicked, before anything is destroyed.
	KindMainCloseRequested
	// KindWindowFocused and KindWindowBlurred carry the Role field.
	KindWindowFocused
	KindWindowBlurred
	// KindWindowClosed fires after a window's native handle is gone.
	KindWindowClosed
	// KindHotkeyTriggered carries the Action field. Both the native and the
	// portal backend publish this, so consumers are agnostic to the
	// registration method.
	KindHotkeyTriggered
	// KindNotificationClicked fires when the user clicks a desktop
	// notification.
	KindNotificationClicked
	// KindOpenOptionsRequested asks the shell to open the options window
	// (tray settings entry).
	KindOpenOptionsRequested
	// KindResponseComplete fires when the embedded web app reports a
	// finished chat response. The IPC layer filters non-response traffic
	// before publishing this.
	KindResponseComplete
	// KindSettingsChanged fires after the settings store was reloaded.
	KindSettingsChanged
	// Update collaborator events; Version/Percent/Message carry details.
	KindUpdateAvailable
	KindUpdateProgress
	KindUpdateDownloaded
	KindUpdateError
)

var kindNames = map[Kind]string{
	KindTrayClicked:          "tray-clicked",
	KindTrayShowClicked:      "tray-show-clicked",
	KindQuitRequested:        "quit-requested",
	KindDockActivated:        "dock-activated",
	KindMainCloseRequested:   "main-close-requested",
	KindWindowFocused:        "window-focused",
	KindWindowBlurred:        "window-blurred",
	KindWindowClosed:         "window-closed",
	KindHotkeyTriggered:      "hotkey-triggered",
	KindNotificationClicked:  "notification-clicked",
	KindOpenOptionsRequested: "open-options-requested",
	KindResponseComplete:     "response-complete",
	KindSettingsChanged:      "settings-changed",
	KindUpdateAvailable:      "update-available",
	KindUpdateProgress:       "update-progress",
	KindUpdateDownloaded:     "update-downloaded",
	KindUpdateError:          "update-error",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event is one bus message. Only the fields relevant to the Kind are set.
type Event struct {
	Kind    Kind
	Role    models.WindowRole
	Action  models.HotkeyAction
	Version string
	Percent int
	Message string
}

// Handler processes one event. Handlers run on the dispatch goroutine and
// must not block; long work belongs on a separate goroutine.
type Handler func(Event)

// Bus routes published events to subscribed handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
	queue    chan Event
	log      *zap.Logger
}

// New creates a bus with a buffered queue.
func New(log *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[Kind][]Handler),
		queue:    make(chan Event, 256),
		log:      log,
	}
}

// Subscribe registers a handler for a kind. Intended for composition time,
// but safe at any point.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.mu.Lock()
	b.handlers[kind] = append(b.handlers[kind], h)
	b.mu.Unlock()
}

// Publish enqueues an event. It never blocks: handlers publish follow-up
// events from the dispatch goroutine itself, and a blocking enqueue there
// would deadlock the loop. A full queue drops the event with a warning.
func (b *Bus) Publish(ev Event) {
	select {
	case b.queue <- ev:
	default:
		b.log.Warn("event queue full, dropping event", zap.Stringer("kind", ev.Kind))
	}
}

// Run drains the queue until the context is canceled. Call from exactly one
// goroutine.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.queue:
			b.Dispatch(ev)
		}
	}
}

// TryDispatchOne pops a single queued event and dispatches it, returning
// false when the queue is empty. Tests use it to drain the bus
// deterministically without running the loop goroutine.
func (b *Bus) TryDispatchOne() bool {
	select {
	case ev := <-b.queue:
		b.Dispatch(ev)
		return true
	default:
		return false
	}
}

// Dispatch runs all handlers for an event synchronously. Run uses it for
// every dequeued event; tests call it directly for deterministic ordering.
func (b *Bus) Dispatch(ev Event) {
	b.mu.RLock()
	hs := b.handlers[ev.Kind]
	b.mu.RUnlock()

	if len(hs) == 0 {
		b.log.Debug("event with no subscriber", zap.Stringer("kind", ev.Kind))
		return
	}
	for _, h := range hs {
		h(ev)
	}
}
