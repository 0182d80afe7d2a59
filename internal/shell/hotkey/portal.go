//go:build linux

package hotkey

import (
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	portalBusName    = "org.freedesktop.portal.Desktop"
	portalObjectPath = "/org/freedesktop/portal/desktop"
	shortcutsIface   = "org.freedesktop.portal.GlobalShortcuts"
	requestIface     = "org.freedesktop.portal.Request"
)

// portalBackend registers shortcuts through the XDG GlobalShortcuts
// desktop portal. This is the only sanctioned path on Wayland, where
// compositors refuse direct key hooking. The compositor owns the actual
// binding; our accelerator is passed as a preferred trigger only.
type portalBackend struct {
	log  *zap.Logger
	conn *dbus.Conn

	sessionHandle dbus.ObjectPath
	signals       chan *dbus.Signal

	mu      sync.Mutex
	regs    map[string]*portalRegistration
	pending map[dbus.ObjectPath]chan portalResponse
}

// NewPortalBackend connects to the session bus, verifies the
// GlobalShortcuts portal is present, and opens a shortcuts session.
// Returns ErrPortalUnavailable when the portal is missing or too old.
func NewPortalBackend(log *zap.Logger) (Backend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: session bus: %v", ErrPortalUnavailable, err)
	}

	b := &portalBackend{
		log:     log,
		conn:    conn,
		regs:    make(map[string]*portalRegistration),
		pending: make(map[dbus.ObjectPath]chan portalResponse),
	}

	if err := b.probe(); err != nil {
		conn.Close()
		return nil, err
	}

	b.signals = make(chan *dbus.Signal, 16)
	conn.Signal(b.signals)

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(shortcutsIface),
		dbus.WithMatchMember("Activated"),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: match Activated: %v", ErrPortalUnavailable, err)
	}

	if err := b.createSession(); err != nil {
		conn.Close()
		return nil, err
	}

	go b.dispatch()
	return b, nil
}

func (b *portalBackend) Name() string { return "portal" }

// probe reads the portal's version property. Presence on the bus is the
// authoritative availability signal; desktop heuristics only decide
// whether we attempt this at all.
func (b *portalBackend) probe() error {
	obj := b.conn.Object(portalBusName, portalObjectPath)
	variant, err := obj.GetProperty(shortcutsIface + ".version")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPortalUnavailable, err)
	}
	var version uint32
	if err := variant.Store(&version); err != nil || version < 1 {
		return fmt.Errorf("%w: unusable version property", ErrPortalUnavailable)
	}
	b.log.Debug("global shortcuts portal found", zap.Uint32("version", version))
	return nil
}

// createSession performs the portal request/response handshake for
// CreateSession and records the resulting session handle.
func (b *portalBackend) createSession() error {
	token := requestToken()
	sessionToken := requestToken()

	respCh, cancel, err := b.watchRequest(token)
	if err != nil {
		return err
	}
	defer cancel()

	obj := b.conn.Object(portalBusName, portalObjectPath)
	var requestPath dbus.ObjectPath
	call := obj.Call(shortcutsIface+".CreateSession", 0, map[string]dbus.Variant{
		"handle_token":         dbus.MakeVariant(token),
		"session_handle_token": dbus.MakeVariant(sessionToken),
	})
	if call.Err != nil {
		return fmt.Errorf("%w: CreateSession: %v", ErrPortalUnavailable, call.Err)
	}
	if err := call.Store(&requestPath); err != nil {
		return fmt.Errorf("%w: CreateSession reply: %v", ErrPortalUnavailable, err)
	}

	resp := <-respCh
	if resp.code != 0 {
		return fmt.Errorf("%w: CreateSession denied (code %d)", ErrPortalUnavailable, resp.code)
	}

	handle, ok := resp.results["session_handle"]
	if !ok {
		return fmt.Errorf("%w: CreateSession response lacks session_handle", ErrPortalUnavailable)
	}
	switch v := handle.Value().(type) {
	case dbus.ObjectPath:
		b.sessionHandle = v
	case string:
		b.sessionHandle = dbus.ObjectPath(v)
	default:
		return fmt.Errorf("%w: unexpected session_handle type %T", ErrPortalUnavailable, v)
	}
	return nil
}

func (b *portalBackend) Register(id string, accel Accel) (Registration, error) {
	token := requestToken()
	respCh, cancel, err := b.watchRequest(token)
	if err != nil {
		return nil, err
	}
	defer cancel()

	shortcut := []struct {
		ID   string
		Data map[string]dbus.Variant
	}{{
		ID: id,
		Data: map[string]dbus.Variant{
			"description":       dbus.MakeVariant("Palefire: " + id),
			"preferred_trigger": dbus.MakeVariant(accel.PortalTrigger()),
		},
	}}

	obj := b.conn.Object(portalBusName, portalObjectPath)
	call := obj.Call(shortcutsIface+".BindShortcuts", 0,
		b.sessionHandle,
		shortcut,
		"",
		map[string]dbus.Variant{"handle_token": dbus.MakeVariant(token)},
	)
	if call.Err != nil {
		return nil, fmt.Errorf("%w: BindShortcuts: %v", ErrRegistrationFailed, call.Err)
	}

	resp := <-respCh
	if resp.code != 0 {
		return nil, fmt.Errorf("%w: BindShortcuts denied (code %d)", ErrRegistrationFailed, resp.code)
	}

	reg := &portalRegistration{
		backend:   b,
		id:        id,
		activated: make(chan struct{}, 1),
	}
	b.mu.Lock()
	b.regs[id] = reg
	b.mu.Unlock()

	b.log.Debug("bound portal shortcut",
		zap.String("id", id),
		zap.String("trigger", accel.PortalTrigger()))
	return reg, nil
}

type portalResponse struct {
	code    uint32
	results map[string]dbus.Variant
}

// watchRequest subscribes to the Response signal for the request object
// the portal derives from our sender name and token.
func (b *portalBackend) watchRequest(token string) (<-chan portalResponse, func(), error) {
	sender := strings.TrimPrefix(b.conn.Names()[0], ":")
	sender = strings.ReplaceAll(sender, ".", "_")
	path := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/portal/desktop/request/%s/%s", sender, token))

	if err := b.conn.AddMatchSignal(
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
		dbus.WithMatchObjectPath(path),
	); err != nil {
		return nil, nil, fmt.Errorf("%w: match Response: %v", ErrPortalUnavailable, err)
	}

	ch := make(chan portalResponse, 1)
	b.mu.Lock()
	b.pending[path] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.pending, path)
		b.mu.Unlock()
		_ = b.conn.RemoveMatchSignal(
			dbus.WithMatchInterface(requestIface),
			dbus.WithMatchMember("Response"),
			dbus.WithMatchObjectPath(path),
		)
	}
	return ch, cancel, nil
}

// dispatch routes portal signals: Response signals resolve pending
// requests, Activated signals tick the matching registration.
func (b *portalBackend) dispatch() {
	for sig := range b.signals {
		switch sig.Name {
		case requestIface + ".Response":
			b.handleResponse(sig)
		case shortcutsIface + ".Activated":
			b.handleActivated(sig)
		}
	}
}

func (b *portalBackend) handleResponse(sig *dbus.Signal) {
	b.mu.Lock()
	ch, ok := b.pending[sig.Path]
	b.mu.Unlock()
	if !ok {
		return
	}

	var resp portalResponse
	if len(sig.Body) >= 1 {
		if code, ok := sig.Body[0].(uint32); ok {
			resp.code = code
		}
	}
	if len(sig.Body) >= 2 {
		if results, ok := sig.Body[1].(map[string]dbus.Variant); ok {
			resp.results = results
		}
	}
	select {
	case ch <- resp:
	default:
	}
}

func (b *portalBackend) handleActivated(sig *dbus.Signal) {
	// Activated carries (session_handle, shortcut_id, timestamp, options).
	if len(sig.Body) < 2 {
		return
	}
	if handle, ok := sig.Body[0].(dbus.ObjectPath); ok && handle != b.sessionHandle {
		return
	}
	id, ok := sig.Body[1].(string)
	if !ok {
		return
	}

	b.mu.Lock()
	reg, ok := b.regs[id]
	b.mu.Unlock()
	if !ok {
		return
	}
	select {
	case reg.activated <- struct{}{}:
	default:
	}
}

func (b *portalBackend) Close() error {
	b.mu.Lock()
	for id := range b.regs {
		delete(b.regs, id)
	}
	b.mu.Unlock()

	if b.sessionHandle != "" {
		obj := b.conn.Object(portalBusName, b.sessionHandle)
		_ = obj.Call("org.freedesktop.portal.Session.Close", 0).Err
	}
	return b.conn.Close()
}

type portalRegistration struct {
	backend   *portalBackend
	id        string
	activated chan struct{}
	once      sync.Once
}

func (r *portalRegistration) Activated() <-chan struct{} { return r.activated }

// Unregister drops local routing. The portal keeps the compositor-side
// binding for the session; rebinding the same id later reuses it. The
// activation channel stays open: an Activated signal racing teardown
// lands in handleActivated's non-blocking send, never a closed channel.
func (r *portalRegistration) Unregister() error {
	r.once.Do(func() {
		r.backend.mu.Lock()
		delete(r.backend.regs, r.id)
		r.backend.mu.Unlock()
	})
	return nil
}

func requestToken() string {
	return "palefire_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
