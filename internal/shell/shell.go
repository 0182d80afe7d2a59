// Package shell is the composition root. It owns every coordinator,
// routes bus events through the visibility policy, and exposes the
// operations the renderer boundary calls.
package shell

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/platform"
	"github.com/palefire-io/palefire/internal/shell/event"
	"github.com/palefire-io/palefire/internal/shell/hotkey"
	"github.com/palefire-io/palefire/internal/shell/inject"
	"github.com/palefire-io/palefire/internal/shell/notify"
	"github.com/palefire-io/palefire/internal/shell/policy"
	"github.com/palefire-io/palefire/internal/shell/registry"
	"github.com/palefire-io/palefire/internal/shell/tray"
)

// Options carries the platform ports the shell composes. Everything
// here is constructed by the caller (the wails host in production,
// fakes in tests) and injected; no component reaches for globals.
type Options struct {
	Store    *config.Store
	Factory  registry.Factory
	Tray     tray.Handle
	Notifier notify.Notifier
	Badge    notify.BadgeRenderer
	Frames   inject.FrameHost
	Variant  platform.Variant
	Desktop  platform.DesktopEnv

	// Quit terminates the host application loop.
	Quit func()

	// Watch enables reloading settings when the file changes on disk.
	Watch bool

	Log *zap.Logger
}

// Shell wires the coordinators together and executes policy decisions.
type Shell struct {
	bus      *event.Bus
	store    *config.Store
	registry *registry.Registry
	tray     *tray.Coordinator
	hotkeys  *hotkey.Coordinator
	notify   *notify.Coordinator
	pipeline *inject.Pipeline
	watcher  *config.Watcher
	variant  platform.Variant
	quit     func()
	log      *zap.Logger

	cancel context.CancelFunc
}

// New builds the shell. Nothing native is touched until Start.
func New(opts Options) (*Shell, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Quit == nil {
		return nil, fmt.Errorf("shell: Quit is required")
	}

	bus := event.New(opts.Log)
	reg := registry.New(opts.Factory, bus, opts.Log)

	s := &Shell{
		bus:      bus,
		store:    opts.Store,
		registry: reg,
		tray:     tray.New(opts.Tray, bus, opts.Log),
		variant:  opts.Variant,
		quit:     opts.Quit,
		log:      opts.Log,
	}

	notifyFn := func(title, message string) {
		if err := opts.Notifier.Notify(title, message); err != nil {
			opts.Log.Warn("notification failed", zap.Error(err))
		}
	}
	s.hotkeys = hotkey.NewCoordinator(bus, opts.Store, opts.Variant, opts.Desktop, notifyFn, opts.Log)
	s.notify = notify.NewCoordinator(opts.Store, opts.Notifier, opts.Badge,
		func() bool { return reg.IsFocused(models.RoleMain) }, opts.Log)
	s.pipeline = inject.New(opts.Frames, nil, 0, opts.Log)

	if opts.Watch {
		w, err := config.NewWatcher(opts.Store, opts.Log)
		if err != nil {
			return nil, fmt.Errorf("shell: settings watcher: %w", err)
		}
		s.watcher = w
	}

	s.subscribe()
	return s, nil
}

// Start brings up the tray, the main window, hotkey registration, and
// the event loop. Hotkey registration runs in the background; the
// window never waits on it.
func (s *Shell) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.tray.Start(s.variant)

	if _, _, err := s.registry.GetOrCreate(models.RoleMain); err != nil {
		return fmt.Errorf("shell: main window: %w", err)
	}
	s.applyWindowPrefs()

	s.hotkeys.Start()

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.log.Warn("settings watcher not started", zap.Error(err))
		} else {
			go s.watchSettings(ctx)
		}
	}

	go s.bus.Run(ctx)
	s.log.Info("shell started", zap.String("platform", s.variant.String()))
	return nil
}

// Stop tears everything down in reverse order of Start.
func (s *Shell) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hotkeys.Stop()
}

func (s *Shell) watchSettings(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-s.watcher.Changed():
			if !ok {
				return
			}
			s.bus.Publish(event.Event{Kind: event.KindSettingsChanged})
		}
	}
}

func (s *Shell) subscribe() {
	s.bus.Subscribe(event.KindTrayClicked, func(event.Event) {
		s.decide(policy.TrigTrayClick, "")
	})
	s.bus.Subscribe(event.KindTrayShowClicked, func(event.Event) {
		s.decide(policy.TrigTrayShowMenu, "")
	})
	s.bus.Subscribe(event.KindDockActivated, func(event.Event) {
		s.decide(policy.TrigDockActivate, "")
	})
	s.bus.Subscribe(event.KindMainCloseRequested, func(event.Event) {
		s.decide(policy.TrigMainCloseButton, "")
	})
	// A notification click only ever restores the main window; any
	// payload it carries is untrusted and ignored.
	s.bus.Subscribe(event.KindNotificationClicked, func(event.Event) {
		s.decide(policy.TrigNotificationClick, "")
	})
	s.bus.Subscribe(event.KindOpenOptionsRequested, func(event.Event) {
		s.decide(policy.TrigOpenWindow, models.RoleOptions)
	})
	s.bus.Subscribe(event.KindQuitRequested, func(event.Event) {
		s.quit()
	})
	s.bus.Subscribe(event.KindHotkeyTriggered, func(ev event.Event) {
		s.onHotkey(ev.Action)
	})
	s.bus.Subscribe(event.KindSettingsChanged, func(event.Event) {
		s.hotkeys.Reload()
		s.applyWindowPrefs()
	})
	s.bus.Subscribe(event.KindUpdateAvailable, func(ev event.Event) {
		s.tray.SetTooltipSuffix(fmt.Sprintf("update %s available", ev.Version))
	})
	s.bus.Subscribe(event.KindUpdateDownloaded, func(ev event.Event) {
		s.tray.SetTooltipSuffix(fmt.Sprintf("update %s ready", ev.Version))
	})
	s.bus.Subscribe(event.KindUpdateError, func(ev event.Event) {
		s.tray.SetTooltipSuffix("")
	})

	s.notify.Attach(s.bus)
}

func (s *Shell) onHotkey(action models.HotkeyAction) {
	switch action {
	case models.ActionQuickChat:
		s.decide(policy.TrigQuickChatHotkey, models.RoleQuickChat)
	case models.ActionBossKey:
		s.decide(policy.TrigBossKey, "")
	case models.ActionZenMode:
		if err := s.SetZenMode(!s.store.ZenMode()); err != nil {
			s.log.Warn("zen mode toggle failed", zap.Error(err))
		}
	case models.ActionAlwaysOnTop:
		if err := s.SetAlwaysOnTop(!s.store.AlwaysOnTop()); err != nil {
			s.log.Warn("always-on-top toggle failed", zap.Error(err))
		}
	}
}

// decide snapshots current state, runs the policy, and applies the
// resulting actions.
func (s *Shell) decide(trigger policy.Trigger, target models.WindowRole) {
	in := policy.Input{
		Trigger:     trigger,
		Platform:    s.variant,
		MainAlive:   s.registry.IsAlive(models.RoleMain),
		MainState:   s.registry.State(models.RoleMain),
		TrayOnClose: s.store.TrayOnClose(),
	}
	if target != "" {
		in.Target = target
		in.TargetAlive = s.registry.IsAlive(target)
		in.TargetState = s.registry.State(target)
	}
	s.apply(policy.Decide(in))
}

// apply executes policy actions in order. Unknown or impossible steps
// are logged and skipped; one bad step never aborts the rest.
func (s *Shell) apply(actions []policy.Action) {
	for _, a := range actions {
		switch a.Op {
		case policy.OpCreate:
			if _, _, err := s.registry.GetOrCreate(a.Role); err != nil {
				s.log.Error("window create failed",
					zap.String("role", string(a.Role)), zap.Error(err))
				return
			}
			if a.Role == models.RoleMain {
				s.applyWindowPrefs()
			}
		case policy.OpShow:
			s.withWindow(a.Role, func(w registry.NativeWindow) {
				w.Show()
				s.registry.SetState(a.Role, models.StateVisible)
			})
		case policy.OpFocus:
			s.withWindow(a.Role, func(w registry.NativeWindow) {
				if w.IsMinimised() {
					w.UnMinimise()
				}
				w.Focus()
			})
		case policy.OpHide:
			s.withWindow(a.Role, func(w registry.NativeWindow) {
				w.Hide()
				// No tray-vs-plain distinction in tracked state: hidden
				// is hidden, and restore brings it back either way.
				s.registry.SetState(a.Role, models.StateHiddenToTray)
			})
		case policy.OpHideToTray:
			s.withWindow(a.Role, func(w registry.NativeWindow) {
				w.Hide()
				w.SetSkipTaskbar(true)
				s.registry.SetState(a.Role, models.StateHiddenToTray)
			})
		case policy.OpRestoreFromTray:
			s.withWindow(a.Role, func(w registry.NativeWindow) {
				w.SetSkipTaskbar(false)
				if w.IsMinimised() {
					w.UnMinimise()
				}
				w.Show()
				s.registry.SetState(a.Role, models.StateVisible)
			})
		case policy.OpQuit:
			s.quit()
			return
		}
	}
}

func (s *Shell) withWindow(role models.WindowRole, fn func(registry.NativeWindow)) {
	h, ok := s.registry.Get(role)
	if !ok {
		s.log.Debug("action on absent window", zap.String("role", string(role)))
		return
	}
	fn(h.Native())
}

// applyWindowPrefs pushes the persisted window flags onto the live main
// window. Zen mode implies always-on-top.
func (s *Shell) applyWindowPrefs() {
	onTop := s.store.AlwaysOnTop() || s.store.ZenMode()
	s.withWindow(models.RoleMain, func(w registry.NativeWindow) {
		w.SetAlwaysOnTop(onTop)
	})
}

// OpenOptions shows the settings window, focusing the existing one if
// it is already open.
func (s *Shell) OpenOptions() {
	s.decide(policy.TrigOpenWindow, models.RoleOptions)
}

// OpenAbout shows the about window.
func (s *Shell) OpenAbout() {
	s.decide(policy.TrigOpenWindow, models.RoleAbout)
}

// OpenAuth shows the authentication window.
func (s *Shell) OpenAuth() {
	s.decide(policy.TrigOpenWindow, models.RoleAuth)
}

// CloseAuth destroys the auth window once the embedded content has
// navigated past the login flow.
func (s *Shell) CloseAuth() {
	s.registry.Destroy(models.RoleAuth)
}

// SubmitQuickChat queues text for injection into the embedded chat.
func (s *Shell) SubmitQuickChat(text string) {
	s.pipeline.Submit(text)
}

// HideQuickChat hides the capture window without submitting.
func (s *Shell) HideQuickChat() {
	s.withWindow(models.RoleQuickChat, func(w registry.NativeWindow) {
		w.Hide()
		s.registry.SetState(models.RoleQuickChat, models.StateHiddenToTray)
	})
}

// CancelQuickChat dismisses the capture window; the content side owns
// clearing its input.
func (s *Shell) CancelQuickChat() {
	s.HideQuickChat()
}

// ResponseComplete signals that the embedded app finished producing a
// response; the notification coordinator decides whether to surface it.
func (s *Shell) ResponseComplete() {
	s.bus.Publish(event.Event{Kind: event.KindResponseComplete})
}

// NotificationClicked restores the main window after a notification
// click.
func (s *Shell) NotificationClicked() {
	s.bus.Publish(event.Event{Kind: event.KindNotificationClicked})
}

// AlwaysOnTop returns the persisted flag.
func (s *Shell) AlwaysOnTop() bool { return s.store.AlwaysOnTop() }

// SetAlwaysOnTop persists the flag and applies it to the main window.
func (s *Shell) SetAlwaysOnTop(enabled bool) error {
	if err := s.store.SetAlwaysOnTop(enabled); err != nil {
		return err
	}
	s.applyWindowPrefs()
	return nil
}

// ZenMode returns the persisted flag.
func (s *Shell) ZenMode() bool { return s.store.ZenMode() }

// SetZenMode persists the flag and applies its window effects.
func (s *Shell) SetZenMode(enabled bool) error {
	if err := s.store.SetZenMode(enabled); err != nil {
		return err
	}
	s.applyWindowPrefs()
	return nil
}

// WindowCount returns the number of live windows.
func (s *Shell) WindowCount() int { return s.registry.WindowCount() }

// IsMainFocused reports whether the main window holds OS focus.
func (s *Shell) IsMainFocused() bool { return s.registry.IsFocused(models.RoleMain) }

// PlatformHotkeyStatus reports hotkey capability and per-binding state
// for the settings UI.
func (s *Shell) PlatformHotkeyStatus() hotkey.Status { return s.hotkeys.Status() }

// Bus exposes the event bus to the host layer for publishing OS events
// (dock activation, update progress).
func (s *Shell) Bus() *event.Bus { return s.bus }
