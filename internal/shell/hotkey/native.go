//go:build darwin || windows || linux

package hotkey

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	hk "golang.design/x/hotkey"
)

var errNativeClosed = errors.New("native hotkey backend closed")

// nativeBackend registers shortcuts directly with the OS through
// golang.design/x/hotkey. Works on macOS, Windows and X11; on pure
// Wayland sessions the underlying X calls fail and the coordinator
// falls through to the portal backend instead.
//
// The OS APIs underneath tie registration to the calling thread (the
// Carbon event target on macOS, WM_HOTKEY routing on Windows), so
// every hk call funnels through one locked OS thread owned by the
// backend.
type nativeBackend struct {
	log *zap.Logger
	ops chan func()

	mu     sync.Mutex
	closed bool
	regs   map[string]*nativeRegistration
}

// NewNativeBackend returns the OS-level registration backend.
func NewNativeBackend(log *zap.Logger) Backend {
	b := &nativeBackend{
		log:  log,
		ops:  make(chan func()),
		regs: make(map[string]*nativeRegistration),
	}
	go func() {
		runtime.LockOSThread()
		for fn := range b.ops {
			fn()
		}
	}()
	return b
}

func (b *nativeBackend) Name() string { return "native" }

// do runs fn on the backend's hotkey thread and waits for its result.
func (b *nativeBackend) do(fn func() error) error {
	errCh := make(chan error, 1)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errNativeClosed
	}
	b.ops <- func() { errCh <- fn() }
	b.mu.Unlock()
	return <-errCh
}

func (b *nativeBackend) Register(id string, accel Accel) (Registration, error) {
	key, err := nativeKey(accel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	h := hk.New(nativeModifiers(accel), key)
	if err := b.do(h.Register); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRegistrationFailed, accel, err)
	}

	reg := &nativeRegistration{
		backend:   b,
		id:        id,
		hk:        h,
		activated: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	b.mu.Lock()
	b.regs[id] = reg
	b.mu.Unlock()

	go reg.pump()

	b.log.Debug("registered native hotkey",
		zap.String("id", id),
		zap.String("accelerator", accel.String()))
	return reg, nil
}

func (b *nativeBackend) Close() error {
	b.mu.Lock()
	regs := make([]*nativeRegistration, 0, len(b.regs))
	for _, r := range b.regs {
		regs = append(regs, r)
	}
	b.mu.Unlock()

	for _, r := range regs {
		_ = r.Unregister()
	}

	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.ops)
	}
	b.mu.Unlock()
	return nil
}

type nativeRegistration struct {
	backend *nativeBackend
	id      string
	hk      *hk.Hotkey

	activated chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (r *nativeRegistration) Activated() <-chan struct{} { return r.activated }

// pump forwards OS key-down events onto the activation channel. A full
// channel means the coordinator has not consumed the last press yet;
// extra presses coalesce rather than queue. The activation channel is
// never closed: a press racing teardown must not panic, so teardown is
// signaled only through done.
func (r *nativeRegistration) pump() {
	for {
		select {
		case <-r.done:
			return
		case _, ok := <-r.hk.Keydown():
			if !ok {
				return
			}
			select {
			case r.activated <- struct{}{}:
			default:
			}
		}
	}
}

func (r *nativeRegistration) Unregister() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		if e := r.backend.do(r.hk.Unregister); e != nil && !errors.Is(e, errNativeClosed) {
			err = e
		}

		r.backend.mu.Lock()
		delete(r.backend.regs, r.id)
		r.backend.mu.Unlock()
	})
	return err
}
