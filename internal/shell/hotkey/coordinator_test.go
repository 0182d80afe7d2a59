package hotkey

import (
	"sync"
	"testing"
	"time"

	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/platform"
	"github.com/palefire-io/palefire/internal/shell/event"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu         sync.Mutex
	registered map[string]*fakeRegistration
	failIDs    map[string]bool
	closed     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		registered: make(map[string]*fakeRegistration),
		failIDs:    make(map[string]bool),
	}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Register(id string, accel Accel) (Registration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failIDs[id] {
		return nil, ErrRegistrationFailed
	}
	reg := &fakeRegistration{backend: b, id: id, activated: make(chan struct{}, 1)}
	b.registered[id] = reg
	return reg, nil
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBackend) ids() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for id := range b.registered {
		out = append(out, id)
	}
	return out
}

func (b *fakeBackend) fire(id string) bool {
	b.mu.Lock()
	reg, ok := b.registered[id]
	b.mu.Unlock()
	if !ok {
		return false
	}
	// Coalescing send, same as the real backends.
	select {
	case reg.activated <- struct{}{}:
	default:
	}
	return true
}

type fakeRegistration struct {
	backend   *fakeBackend
	id        string
	activated chan struct{}
	once      sync.Once
}

func (r *fakeRegistration) Activated() <-chan struct{} { return r.activated }

func (r *fakeRegistration) Unregister() error {
	r.once.Do(func() {
		r.backend.mu.Lock()
		delete(r.backend.registered, r.id)
		r.backend.mu.Unlock()
	})
	return nil
}

func newTestCoordinator(t *testing.T, variant platform.Variant, settings *models.Settings) (*Coordinator, *fakeBackend, *event.Bus, *notifyRecorder) {
	t.Helper()
	bus := event.New(zap.NewNop())
	backend := newFakeBackend()
	rec := &notifyRecorder{}
	c := NewCoordinator(bus, config.NewMemoryStore(settings), variant, platform.DesktopEnv{}, rec.notify, zap.NewNop())
	c.newNative = func() Backend { return backend }
	c.newPortal = func() (Backend, error) { return backend, nil }
	return c, backend, bus, rec
}

type notifyRecorder struct {
	mu    sync.Mutex
	count int
	title string
}

func (r *notifyRecorder) notify(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.title = title
}

func (r *notifyRecorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func contains(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestRegistersEnabledBindings(t *testing.T) {
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxX11, models.NewSettings())

	c.backend = backend
	c.registerAll()

	ids := backend.ids()
	if !contains(ids, string(models.ActionQuickChat)) {
		t.Errorf("quick chat binding not registered, got %v", ids)
	}
	if !contains(ids, string(models.ActionBossKey)) {
		t.Errorf("boss key binding not registered, got %v", ids)
	}
	if contains(ids, string(models.ActionZenMode)) {
		t.Errorf("zen mode is disabled by default but got registered")
	}
}

func TestHotkeysDisabledInSettingsSkipsAll(t *testing.T) {
	settings := models.NewSettings()
	settings.Hotkeys.Enabled = false
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxX11, settings)

	c.backend = backend
	c.registerAll()

	if got := backend.ids(); len(got) != 0 {
		t.Errorf("expected no registrations, got %v", got)
	}
}

func TestActivationPublishesBusEvent(t *testing.T) {
	c, backend, bus, _ := newTestCoordinator(t, platform.LinuxX11, models.NewSettings())

	var mu sync.Mutex
	var got []models.HotkeyAction
	bus.Subscribe(event.KindHotkeyTriggered, func(ev event.Event) {
		mu.Lock()
		got = append(got, ev.Action)
		mu.Unlock()
	})

	c.backend = backend
	c.registerAll()

	if !backend.fire(string(models.ActionQuickChat)) {
		t.Fatal("quick chat not registered")
	}

	deadline := time.After(2 * time.Second)
	for {
		if bus.TryDispatchOne() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no bus event after activation")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != models.ActionQuickChat {
		t.Errorf("got actions %v, want [quick_chat]", got)
	}
}

func TestRegistrationFailureIsNotFatal(t *testing.T) {
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxX11, models.NewSettings())
	backend.failIDs[string(models.ActionQuickChat)] = true

	c.backend = backend
	c.registerAll()

	status := c.Status()
	if !status.GlobalHotkeysEnabled {
		t.Error("one failed binding must not disable the platform")
	}
	qc := status.Bindings[models.ActionQuickChat]
	if qc.State != RegFailed {
		t.Errorf("quick chat state = %v, want failed", qc.State)
	}
	bk := status.Bindings[models.ActionBossKey]
	if bk.State != RegRegistered {
		t.Errorf("boss key state = %v, want registered", bk.State)
	}
}

func TestReloadReflectsSettingsChange(t *testing.T) {
	settings := models.NewSettings()
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxX11, settings)

	c.backend = backend
	c.registerAll()
	if !contains(backend.ids(), string(models.ActionQuickChat)) {
		t.Fatal("quick chat not registered initially")
	}

	updated := models.NewSettings()
	updated.Hotkeys.Bindings[models.ActionQuickChat] = models.HotkeyBinding{
		Enabled:     false,
		Accelerator: "CmdOrCtrl+Shift+Space",
	}
	c.store.Replace(updated)
	c.Reload()

	if contains(backend.ids(), string(models.ActionQuickChat)) {
		t.Error("quick chat still registered after being disabled")
	}
	if !contains(backend.ids(), string(models.ActionBossKey)) {
		t.Error("boss key lost across reload")
	}
}

func TestActivationRacingReloadDoesNotPanic(t *testing.T) {
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxX11, models.NewSettings())

	c.backend = backend
	c.registerAll()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				backend.fire(string(models.ActionQuickChat))
			}
		}
	}()

	// A press landing mid-teardown must coalesce or drop, never crash.
	for i := 0; i < 100; i++ {
		c.Reload()
	}
	close(stop)
	wg.Wait()

	if !contains(backend.ids(), string(models.ActionQuickChat)) {
		t.Error("quick chat not registered after final reload")
	}
}

func TestWaylandWithoutPortalDisablesHotkeys(t *testing.T) {
	c, _, _, rec := newTestCoordinator(t, platform.LinuxWayland, models.NewSettings())
	c.newPortal = func() (Backend, error) { return nil, ErrPortalUnavailable }

	if _, err := c.selectBackend(); err == nil {
		t.Fatal("expected portal selection to fail")
	} else {
		c.disable(err)
	}

	status := c.Status()
	if status.GlobalHotkeysEnabled {
		t.Error("platform still reports hotkeys enabled")
	}
	if rec.calls() != 1 {
		t.Errorf("notice shown %d times, want 1", rec.calls())
	}

	c.disable(ErrPortalUnavailable)
	if rec.calls() != 1 {
		t.Errorf("notice repeated on second failure, shown %d times", rec.calls())
	}
}

func TestWaylandWithPortalUsesPortalBackend(t *testing.T) {
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxWayland, models.NewSettings())

	selected, err := c.selectBackend()
	if err != nil {
		t.Fatalf("selectBackend failed: %v", err)
	}
	if selected != Backend(backend) {
		t.Error("portal factory result not selected on Wayland")
	}
}

func TestStopClosesBackend(t *testing.T) {
	c, backend, _, _ := newTestCoordinator(t, platform.LinuxX11, models.NewSettings())

	c.backend = backend
	c.registerAll()
	c.Stop()

	if got := backend.ids(); len(got) != 0 {
		t.Errorf("registrations survived Stop: %v", got)
	}
	if !backend.closed {
		t.Error("backend not closed")
	}
}
