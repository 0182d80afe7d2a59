package registry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/buildinfo"
	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/shell/event"
)

// ErrDuplicateSingleton is logged (and, in debug builds, panicked) when a
// main window creation is attempted while one is already alive.
var ErrDuplicateSingleton = fmt.Errorf("duplicate singleton window")

// Registry tracks the live window per role and enforces the singleton
// invariant. Lookup and creation are guarded by one mutex with no await
// between the liveness check and the create call, so rapid repeated
// triggers cannot race a duplicate into existence.
type Registry struct {
	mu       sync.Mutex
	windows  map[models.WindowRole]*Handle
	focused  models.WindowRole
	hasFocus bool

	factory Factory
	bus     *event.Bus
	log     *zap.Logger
}

// New creates an empty registry.
func New(factory Factory, bus *event.Bus, log *zap.Logger) *Registry {
	return &Registry{
		windows: make(map[models.WindowRole]*Handle),
		factory: factory,
		bus:     bus,
		log:     log,
	}
}

// Get returns the live handle for a role, if any.
func (r *Registry) Get(role models.WindowRole) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.liveLocked(role)
	return h, ok
}

// IsAlive reports whether a non-destroyed window exists for the role.
func (r *Registry) IsAlive(role models.WindowRole) bool {
	_, ok := r.Get(role)
	return ok
}

// LiveCount returns the number of live windows for a role. It is 0 or 1 by
// construction; tests assert on it.
func (r *Registry) LiveCount(role models.WindowRole) int {
	if r.IsAlive(role) {
		return 1
	}
	return 0
}

// WindowCount returns the total number of live windows.
func (r *Registry) WindowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for role := range r.windows {
		if _, ok := r.liveLocked(role); ok {
			n++
		}
	}
	return n
}

// GetOrCreate returns the live handle for a role, creating one if none
// exists. For a singleton role with a live handle this is idempotent: the
// existing handle is returned unchanged and created is false; the caller is
// expected to focus it.
func (r *Registry) GetOrCreate(role models.WindowRole) (h *Handle, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.liveLocked(role); ok {
		return h, false, nil
	}
	h, err = r.createLocked(role)
	return h, err == nil, err
}

// Create builds a new window for the role. Unlike GetOrCreate it treats an
// existing live window as a programming error: fatal in debug builds, a
// logged no-op returning the existing handle in release builds.
func (r *Registry) Create(role models.WindowRole) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.liveLocked(role); ok {
		if buildinfo.IsDebug() {
			panic(fmt.Sprintf("registry: %v for role %s", ErrDuplicateSingleton, role))
		}
		r.log.Error("duplicate singleton creation attempt",
			zap.String("role", string(role)), zap.Error(ErrDuplicateSingleton))
		return h, nil
	}
	return r.createLocked(role)
}

// Destroy tears down the window for a role. Listener deregistration happens
// exactly once; destroying an absent role is a no-op.
func (r *Registry) Destroy(role models.WindowRole) {
	r.mu.Lock()
	h, ok := r.liveLocked(role)
	if ok {
		h.state = models.StateDestroyed
	}
	r.mu.Unlock()

	if ok {
		// Native teardown outside the lock; the OnClosed callback re-enters
		// the registry.
		h.win.Destroy()
	}
}

// SetState records a visibility transition decided by the policy.
func (r *Registry) SetState(role models.WindowRole, state models.VisibilityState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.liveLocked(role); ok {
		h.state = state
	}
}

// State returns the tracked visibility state, or StateDestroyed if absent.
func (r *Registry) State(role models.WindowRole) models.VisibilityState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.liveLocked(role); ok {
		return h.state
	}
	return models.StateDestroyed
}

// IsFocused reports whether the given role currently holds OS focus.
func (r *Registry) IsFocused(role models.WindowRole) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasFocus && r.focused == role
}

func (r *Registry) liveLocked(role models.WindowRole) (*Handle, bool) {
	h, ok := r.windows[role]
	if !ok || h.state == models.StateDestroyed {
		return nil, false
	}
	return h, true
}

func (r *Registry) createLocked(role models.WindowRole) (*Handle, error) {
	h := &Handle{role: role, state: models.StateVisible}

	win, err := r.factory.Create(role, Callbacks{
		OnCloseRequested: func() bool { return r.onCloseRequested(role) },
		OnClosed:         func() { r.onClosed(role) },
		OnFocus:          func() { r.onFocus(role) },
		OnBlur:           func() { r.onBlur(role) },
	})
	if err != nil {
		return nil, fmt.Errorf("create %s window: %w", role, err)
	}
	h.win = win
	r.windows[role] = h

	r.log.Info("window created", zap.String("role", string(role)))
	return h, nil
}

// onCloseRequested intercepts the main window's close so the visibility
// policy decides between hide, hide-to-tray, and quit. Secondary windows
// close natively.
func (r *Registry) onCloseRequested(role models.WindowRole) bool {
	if role == models.RoleMain {
		r.bus.Publish(event.Event{Kind: event.KindMainCloseRequested})
		return true
	}
	return false
}

func (r *Registry) onClosed(role models.WindowRole) {
	r.mu.Lock()
	if h, ok := r.windows[role]; ok {
		h.state = models.StateDestroyed
	}
	if r.hasFocus && r.focused == role {
		r.hasFocus = false
	}
	r.mu.Unlock()

	r.log.Info("window closed", zap.String("role", string(role)))
	r.bus.Publish(event.Event{Kind: event.KindWindowClosed, Role: role})
}

func (r *Registry) onFocus(role models.WindowRole) {
	r.mu.Lock()
	r.focused = role
	r.hasFocus = true
	r.mu.Unlock()

	r.bus.Publish(event.Event{Kind: event.KindWindowFocused, Role: role})
}

func (r *Registry) onBlur(role models.WindowRole) {
	r.mu.Lock()
	if r.focused == role {
		r.hasFocus = false
	}
	r.mu.Unlock()

	r.bus.Publish(event.Event{Kind: event.KindWindowBlurred, Role: role})
}
