package registry

import (
	"testing"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/shell/event"
)

type fakeWindow struct {
	cb        Callbacks
	destroyed bool
	calls     []string
}

func (w *fakeWindow) Show()                 { w.calls = append(w.calls, "show") }
func (w *fakeWindow) Hide()                 { w.calls = append(w.calls, "hide") }
func (w *fakeWindow) Focus()                { w.calls = append(w.calls, "focus") }
func (w *fakeWindow) Minimise()             { w.calls = append(w.calls, "minimise") }
func (w *fakeWindow) UnMinimise()           { w.calls = append(w.calls, "unminimise") }
func (w *fakeWindow) IsMinimised() bool     { return false }
func (w *fakeWindow) SetSkipTaskbar(bool)   {}
func (w *fakeWindow) SetAlwaysOnTop(bool)   {}

func (w *fakeWindow) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	if w.cb.OnClosed != nil {
		w.cb.OnClosed()
	}
}

type fakeFactory struct {
	windows map[models.WindowRole][]*fakeWindow
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{windows: make(map[models.WindowRole][]*fakeWindow)}
}

func (f *fakeFactory) Create(role models.WindowRole, cb Callbacks) (NativeWindow, error) {
	w := &fakeWindow{cb: cb}
	f.windows[role] = append(f.windows[role], w)
	return w, nil
}

func (f *fakeFactory) created(role models.WindowRole) int {
	return len(f.windows[role])
}

func newTestRegistry(t *testing.T) (*Registry, *fakeFactory, *event.Bus) {
	t.Helper()
	factory := newFakeFactory()
	bus := event.New(zap.NewNop())
	return New(factory, bus, zap.NewNop()), factory, bus
}

func TestGetOrCreateIsIdempotentForSingletons(t *testing.T) {
	r, factory, _ := newTestRegistry(t)

	first, created, err := r.GetOrCreate(models.RoleOptions)
	if err != nil || !created {
		t.Fatalf("first GetOrCreate: created=%v err=%v", created, err)
	}
	second, created, err := r.GetOrCreate(models.RoleOptions)
	if err != nil || created {
		t.Fatalf("second GetOrCreate: created=%v err=%v", created, err)
	}
	if first != second {
		t.Error("second GetOrCreate returned a different handle")
	}
	if factory.created(models.RoleOptions) != 1 {
		t.Errorf("factory built %d windows, want 1", factory.created(models.RoleOptions))
	}
}

func TestOptionsNeverExceedsOneLiveWindow(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	// Every interleaving of open/open/close must keep the live count <= 1.
	steps := []string{"open", "open", "close", "open", "close", "close", "open"}
	for _, step := range steps {
		switch step {
		case "open":
			if _, _, err := r.GetOrCreate(models.RoleOptions); err != nil {
				t.Fatal(err)
			}
		case "close":
			r.Destroy(models.RoleOptions)
		}
		if n := r.LiveCount(models.RoleOptions); n > 1 {
			t.Fatalf("after %q: live options windows = %d, want <= 1", step, n)
		}
	}
}

func TestCreateDuplicateMainReturnsExistingInRelease(t *testing.T) {
	// buildinfo reports a debug build under `go test` (Version == "dev"),
	// so the duplicate guard must panic here; the release path is the
	// non-panicking branch of the same guard.
	r, _, _ := newTestRegistry(t)

	if _, err := r.Create(models.RoleMain); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate main creation did not panic in debug build")
		}
	}()
	_, _ = r.Create(models.RoleMain)
}

func TestDestroyedWindowIsNotAlive(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	if _, _, err := r.GetOrCreate(models.RoleAbout); err != nil {
		t.Fatal(err)
	}
	if !r.IsAlive(models.RoleAbout) {
		t.Fatal("window should be alive after creation")
	}

	r.Destroy(models.RoleAbout)
	if r.IsAlive(models.RoleAbout) {
		t.Error("window still alive after Destroy")
	}
	if r.State(models.RoleAbout) != models.StateDestroyed {
		t.Errorf("state = %v, want destroyed", r.State(models.RoleAbout))
	}

	// Destroy of an absent role is a no-op.
	r.Destroy(models.RoleAbout)
}

func TestRecreateAfterDestroy(t *testing.T) {
	r, factory, _ := newTestRegistry(t)

	if _, _, err := r.GetOrCreate(models.RoleQuickChat); err != nil {
		t.Fatal(err)
	}
	r.Destroy(models.RoleQuickChat)

	_, created, err := r.GetOrCreate(models.RoleQuickChat)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected a fresh window after destroy")
	}
	if factory.created(models.RoleQuickChat) != 2 {
		t.Errorf("factory built %d windows, want 2", factory.created(models.RoleQuickChat))
	}
}

func TestFocusTracking(t *testing.T) {
	r, factory, _ := newTestRegistry(t)

	if _, _, err := r.GetOrCreate(models.RoleMain); err != nil {
		t.Fatal(err)
	}
	win := factory.windows[models.RoleMain][0]

	if r.IsFocused(models.RoleMain) {
		t.Error("main focused before any focus event")
	}
	win.cb.OnFocus()
	if !r.IsFocused(models.RoleMain) {
		t.Error("main not focused after focus event")
	}
	win.cb.OnBlur()
	if r.IsFocused(models.RoleMain) {
		t.Error("main still focused after blur event")
	}
}

func TestMainCloseIsIntercepted(t *testing.T) {
	r, factory, _ := newTestRegistry(t)

	if _, _, err := r.GetOrCreate(models.RoleMain); err != nil {
		t.Fatal(err)
	}
	win := factory.windows[models.RoleMain][0]

	if cancel := win.cb.OnCloseRequested(); !cancel {
		t.Error("main close was not intercepted")
	}

	if _, _, err := r.GetOrCreate(models.RoleAbout); err != nil {
		t.Fatal(err)
	}
	about := factory.windows[models.RoleAbout][0]
	if cancel := about.cb.OnCloseRequested(); cancel {
		t.Error("secondary window close should not be intercepted")
	}
}
