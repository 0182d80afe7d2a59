package inject

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeFrame struct {
	mu       sync.Mutex
	url      string
	result   string
	execErr  error
	executed []string
	block    chan struct{}
}

func (f *fakeFrame) URL() string { return f.url }

func (f *fakeFrame) ExecuteScript(script string) (string, error) {
	f.mu.Lock()
	f.executed = append(f.executed, script)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.execErr != nil {
		return "", f.execErr
	}
	return f.result, nil
}

func (f *fakeFrame) execCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed)
}

func (f *fakeFrame) execAt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.executed[i]
}

type fakeHost struct {
	mu        sync.Mutex
	mainAlive bool
	frames    []Frame
	calls     []string
}

func (h *fakeHost) MainAlive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mainAlive
}

func (h *fakeHost) HideQuickChat() { h.record("hide") }
func (h *fakeHost) FocusMain()     { h.record("focus") }

func (h *fakeHost) Frames() []Frame {
	h.record("frames")
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

func (h *fakeHost) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *fakeHost) callLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func chatFrame() *fakeFrame {
	return &fakeFrame{
		url:    "https://chat.palefire.io/session/1",
		result: `{"success": true}`,
	}
}

func newTestPipeline(host *fakeHost) *Pipeline {
	return New(host, nil, time.Millisecond, zap.NewNop())
}

func TestStepOrdering(t *testing.T) {
	frame := chatFrame()
	host := &fakeHost{mainAlive: true, frames: []Frame{frame}}
	p := newTestPipeline(host)

	if err := p.run(&Request{Text: "hello"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"hide", "focus", "frames"}
	got := host.callLog()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if len(frame.executed) != 1 {
		t.Fatalf("ExecuteScript called %d times, want 1", len(frame.executed))
	}
}

func TestMainWindowMissing(t *testing.T) {
	host := &fakeHost{mainAlive: false}
	p := newTestPipeline(host)

	err := p.run(&Request{Text: "hello"})
	if !errors.Is(err, ErrMainWindowNotFound) {
		t.Errorf("err = %v, want ErrMainWindowNotFound", err)
	}
	if len(host.callLog()) != 0 {
		t.Errorf("window choreography ran despite missing main: %v", host.callLog())
	}
}

func TestEmptyFrameListSkipsExecution(t *testing.T) {
	host := &fakeHost{mainAlive: true, frames: nil}
	p := newTestPipeline(host)

	err := p.run(&Request{Text: "hello"})
	if !errors.Is(err, ErrTargetFrameNotFound) {
		t.Errorf("err = %v, want ErrTargetFrameNotFound", err)
	}
}

func TestNoMatchingOrigin(t *testing.T) {
	other := &fakeFrame{url: "https://ads.example.com/banner"}
	host := &fakeHost{mainAlive: true, frames: []Frame{other}}
	p := newTestPipeline(host)

	err := p.run(&Request{Text: "hello"})
	if !errors.Is(err, ErrTargetFrameNotFound) {
		t.Errorf("err = %v, want ErrTargetFrameNotFound", err)
	}
	if len(other.executed) != 0 {
		t.Error("script executed in a non-matching frame")
	}
}

func TestPicksMatchingFrameAmongMany(t *testing.T) {
	other := &fakeFrame{url: "https://ads.example.com/banner"}
	frame := chatFrame()
	host := &fakeHost{mainAlive: true, frames: []Frame{other, frame}}
	p := newTestPipeline(host)

	if err := p.run(&Request{Text: "hello"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(frame.executed) != 1 || len(other.executed) != 0 {
		t.Error("script did not land in the matching frame")
	}
}

func TestScriptFailureResult(t *testing.T) {
	frame := chatFrame()
	frame.result = `{"success": false, "error": "chat input not found"}`
	host := &fakeHost{mainAlive: true, frames: []Frame{frame}}
	p := newTestPipeline(host)

	err := p.run(&Request{Text: "hello"})
	if !errors.Is(err, ErrScriptFailure) {
		t.Errorf("err = %v, want ErrScriptFailure", err)
	}
	if !strings.Contains(err.Error(), "chat input not found") {
		t.Errorf("embedded script error lost: %v", err)
	}
}

func TestExecutionException(t *testing.T) {
	frame := chatFrame()
	frame.execErr = errors.New("frame was disposed")
	host := &fakeHost{mainAlive: true, frames: []Frame{frame}}
	p := newTestPipeline(host)

	err := p.run(&Request{Text: "hello"})
	if !errors.Is(err, ErrExecutionError) {
		t.Errorf("err = %v, want ErrExecutionError", err)
	}
}

func TestScriptEscapesHostileText(t *testing.T) {
	text := `Test with "quotes" and \backslashes\` + "\nand a newline"
	script := buildScript(text, time.Millisecond)

	if !strings.Contains(script, `\"quotes\"`) {
		t.Error("quotes not escaped in generated script")
	}
	if !strings.Contains(script, `\\backslashes\\`) {
		t.Error("backslashes not escaped in generated script")
	}
	if strings.Contains(script, "\nand a newline") {
		t.Error("raw newline embedded in string literal")
	}
	if !strings.Contains(script, `\nand a newline`) {
		t.Error("newline not encoded in generated script")
	}
}

func TestNewestPendingSubmissionWins(t *testing.T) {
	frame := chatFrame()
	frame.block = make(chan struct{})
	host := &fakeHost{mainAlive: true, frames: []Frame{frame}}
	p := newTestPipeline(host)

	p.Submit("first")

	// Wait for the worker to reach the blocked ExecuteScript call.
	deadline := time.After(2 * time.Second)
	for frame.execCount() != 1 {
		select {
		case <-deadline:
			t.Fatal("first submission never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	p.Submit("second")
	p.Submit("third")
	close(frame.block)

	deadline = time.After(2 * time.Second)
	for frame.execCount() != 2 {
		select {
		case <-deadline:
			t.Fatal("pending submission never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if strings.Contains(frame.execAt(1), "second") {
		t.Error("superseded submission ran instead of the newest one")
	}
	if !strings.Contains(frame.execAt(1), "third") {
		t.Error("newest submission not delivered")
	}
}
