package hotkey

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/platform"
	"github.com/palefire-io/palefire/internal/shell/event"
)

// RegState is the lifecycle of one action's binding.
type RegState int

const (
	RegUnregistered RegState = iota
	RegRegistering
	RegRegistered
	RegFailed
)

func (s RegState) String() string {
	switch s {
	case RegUnregistered:
		return "unregistered"
	case RegRegistering:
		return "registering"
	case RegRegistered:
		return "registered"
	case RegFailed:
		return "failed"
	}
	return "unknown"
}

// BindingStatus is the reportable state of one action's hotkey.
type BindingStatus struct {
	State       RegState
	Accelerator string
	Error       string
}

// Status is a snapshot for the settings UI.
type Status struct {
	// GlobalHotkeysEnabled is false only when the platform cannot
	// register shortcuts at all (Wayland without a usable portal).
	GlobalHotkeysEnabled bool
	Backend              string
	Bindings             map[models.HotkeyAction]BindingStatus
}

// Coordinator owns backend selection and keeps OS registrations in sync
// with the settings. Startup is asynchronous: registration failures
// never block or crash the app, they just leave bindings in a failed
// state the UI can surface.
type Coordinator struct {
	bus     *event.Bus
	store   *config.Store
	log     *zap.Logger
	variant platform.Variant
	desktop platform.DesktopEnv

	// Injectable for tests; defaults pick the real backends.
	newNative func() Backend
	newPortal func() (Backend, error)
	notify    func(title, message string)

	mu          sync.Mutex
	backend     Backend
	capable     bool
	noticeShown bool
	started     bool
	states      map[models.HotkeyAction]*bindingState
}

type bindingState struct {
	state RegState
	accel string
	err   error
	reg   Registration
	done  chan struct{}
}

// NewCoordinator wires the coordinator but does not touch the OS yet.
// notify is invoked at most once, for the Wayland-without-portal notice.
func NewCoordinator(bus *event.Bus, store *config.Store, variant platform.Variant, desktop platform.DesktopEnv, notify func(title, message string), log *zap.Logger) *Coordinator {
	c := &Coordinator{
		bus:     bus,
		store:   store,
		log:     log,
		variant: variant,
		desktop: desktop,
		notify:  notify,
		capable: true,
		states:  make(map[models.HotkeyAction]*bindingState),
	}
	c.newNative = func() Backend { return NewNativeBackend(log) }
	c.newPortal = func() (Backend, error) { return NewPortalBackend(log) }
	for _, action := range models.Actions() {
		c.states[action] = &bindingState{state: RegUnregistered}
	}
	return c
}

// Start selects a backend and registers enabled bindings in the
// background. Safe to call once; the main window must not wait on it.
func (c *Coordinator) Start() {
	go func() {
		c.mu.Lock()
		if c.started {
			c.mu.Unlock()
			return
		}
		c.started = true
		c.mu.Unlock()

		backend, err := c.selectBackend()
		if err != nil {
			c.disable(err)
			return
		}

		c.mu.Lock()
		c.backend = backend
		c.mu.Unlock()
		c.log.Info("hotkey backend selected", zap.String("backend", backend.Name()))

		c.registerAll()
	}()
}

// selectBackend picks native registration everywhere except Wayland,
// where the portal is the only sanctioned path. The bus probe inside
// NewPortalBackend is authoritative; desktop-environment heuristics
// only shape the log message.
func (c *Coordinator) selectBackend() (Backend, error) {
	if c.variant != platform.LinuxWayland {
		return c.newNative(), nil
	}

	backend, err := c.newPortal()
	if err == nil {
		return backend, nil
	}
	if !c.desktop.SupportsPortalShortcuts() {
		c.log.Warn("desktop environment lacks global shortcuts portal support",
			zap.String("desktop", c.desktop.Name),
			zap.Error(err))
	} else {
		c.log.Warn("global shortcuts portal expected but unreachable", zap.Error(err))
	}
	return nil, err
}

// disable marks the platform incapable and tells the user once. The
// rest of the app keeps running; only hotkeys go dark.
func (c *Coordinator) disable(err error) {
	c.mu.Lock()
	c.capable = false
	show := !c.noticeShown
	c.noticeShown = true
	c.mu.Unlock()

	c.log.Warn("global hotkeys disabled", zap.Error(err))
	if show && c.notify != nil && errors.Is(err, ErrPortalUnavailable) {
		c.notify("Global shortcuts unavailable",
			"Your desktop does not support the global shortcuts portal. Keyboard shortcuts will only work while Palefire is focused.")
	}
}

// registerAll registers every enabled binding from the current
// settings snapshot. Callers must not hold c.mu.
func (c *Coordinator) registerAll() {
	if !c.store.HotkeysEnabled() {
		c.log.Debug("hotkeys disabled in settings, skipping registration")
		return
	}

	for _, action := range models.Actions() {
		binding := c.store.Binding(action)
		if !binding.Enabled || binding.Accelerator == "" {
			continue
		}
		c.register(action, binding.Accelerator)
	}
}

func (c *Coordinator) register(action models.HotkeyAction, accelerator string) {
	c.mu.Lock()
	backend := c.backend
	st := c.states[action]
	if backend == nil || st == nil || st.state == RegRegistered || st.state == RegRegistering {
		c.mu.Unlock()
		return
	}
	st.state = RegRegistering
	st.accel = accelerator
	st.err = nil
	c.mu.Unlock()

	accel, err := ParseAccelerator(accelerator)
	if err != nil {
		c.markFailed(action, err)
		return
	}

	reg, err := backend.Register(string(action), accel)
	if err != nil {
		c.markFailed(action, err)
		return
	}

	done := make(chan struct{})
	c.mu.Lock()
	st.state = RegRegistered
	st.reg = reg
	st.done = done
	c.mu.Unlock()

	go c.forward(action, reg, done)
	c.log.Info("hotkey registered",
		zap.String("action", string(action)),
		zap.String("accelerator", accelerator))
}

func (c *Coordinator) markFailed(action models.HotkeyAction, err error) {
	c.mu.Lock()
	st := c.states[action]
	st.state = RegFailed
	st.err = err
	c.mu.Unlock()
	c.log.Warn("hotkey registration failed",
		zap.String("action", string(action)),
		zap.Error(err))
}

// forward turns backend activations into bus events until the binding
// is torn down.
func (c *Coordinator) forward(action models.HotkeyAction, reg Registration, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-reg.Activated():
			c.bus.Publish(event.Event{Kind: event.KindHotkeyTriggered, Action: action})
		}
	}
}

// Reload tears down every registration and rebuilds from the current
// settings. Called on settings file changes; a full cycle is cheap at
// this binding count and sidesteps diffing edge cases.
func (c *Coordinator) Reload() {
	c.unregisterAll()
	c.mu.Lock()
	ready := c.backend != nil
	c.mu.Unlock()
	if ready {
		c.registerAll()
	}
}

func (c *Coordinator) unregisterAll() {
	c.mu.Lock()
	var regs []Registration
	for _, st := range c.states {
		if st.reg != nil {
			regs = append(regs, st.reg)
			if st.done != nil {
				close(st.done)
			}
		}
		st.state = RegUnregistered
		st.reg = nil
		st.done = nil
		st.err = nil
	}
	c.mu.Unlock()

	for _, reg := range regs {
		if err := reg.Unregister(); err != nil {
			c.log.Warn("hotkey unregister failed", zap.Error(err))
		}
	}
}

// Stop releases all registrations and the backend.
func (c *Coordinator) Stop() {
	c.unregisterAll()
	c.mu.Lock()
	backend := c.backend
	c.backend = nil
	c.mu.Unlock()
	if backend != nil {
		if err := backend.Close(); err != nil {
			c.log.Warn("hotkey backend close failed", zap.Error(err))
		}
	}
}

// Status reports platform capability and per-binding registration
// state for the settings window.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		GlobalHotkeysEnabled: c.capable,
		Bindings:             make(map[models.HotkeyAction]BindingStatus, len(c.states)),
	}
	if c.backend != nil {
		s.Backend = c.backend.Name()
	}
	for action, st := range c.states {
		bs := BindingStatus{State: st.state, Accelerator: st.accel}
		if st.err != nil {
			bs.Error = st.err.Error()
		}
		s.Bindings[action] = bs
	}
	return s
}
