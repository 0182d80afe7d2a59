// Package inject delivers quick-chat text into the embedded app. A
// submission hides the capture window, focuses the main window, finds
// the chat iframe by origin, and runs a generated script inside it.
package inject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pipeline failure modes, in step order.
var (
	ErrMainWindowNotFound = errors.New("main window not found")
	// ErrTargetFrameNotFound covers both no frames at all and no frame
	// matching a known origin.
	ErrTargetFrameNotFound = errors.New("target frame not found")
	// ErrScriptFailure means the injected script ran and reported
	// {success:false}.
	ErrScriptFailure = errors.New("injection script reported failure")
	// ErrExecutionError means script execution itself threw, e.g. the
	// frame navigated away mid-call.
	ErrExecutionError = errors.New("injection script execution failed")
)

// Frame is one frame in the main window's content tree.
type Frame interface {
	URL() string
	// ExecuteScript runs script in the frame and returns its JSON
	// result. An error is an execution-level exception, distinct from
	// the script reporting failure in its result.
	ExecuteScript(script string) (string, error)
}

// FrameHost exposes the main window's frame tree and the window
// choreography the pipeline needs before injecting.
type FrameHost interface {
	// MainAlive reports whether the main window exists.
	MainAlive() bool
	// HideQuickChat hides the capture window.
	HideQuickChat()
	// FocusMain brings the main window forward.
	FocusMain()
	// Frames lists the current frames of the main window's content.
	Frames() []Frame
}

// scriptResult is what the injected script reports back.
type scriptResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Request is one quick-chat submission.
type Request struct {
	Text      string
	CreatedAt time.Time
}

// Pipeline serializes submissions through a single worker. While one
// submission is in flight the next one waits in a single slot; a third
// replaces the waiting one, newest wins.
type Pipeline struct {
	host        FrameHost
	origins     []string
	submitDelay time.Duration
	log         *zap.Logger

	mu      sync.Mutex
	pending *Request
	busy    bool
}

// Origin patterns of the embedded chat app. A frame qualifies when its
// URL starts with any of these.
var defaultOrigins = []string{
	"https://chat.palefire.io",
	"https://app.palefire.io/chat",
}

// DefaultSubmitDelay gives the embedded input's event handlers time to
// see the inserted text before the synthetic submit.
const DefaultSubmitDelay = 100 * time.Millisecond

// New builds a pipeline over host. origins may be nil for the default
// patterns.
func New(host FrameHost, origins []string, submitDelay time.Duration, log *zap.Logger) *Pipeline {
	if origins == nil {
		origins = defaultOrigins
	}
	if submitDelay <= 0 {
		submitDelay = DefaultSubmitDelay
	}
	return &Pipeline{
		host:        host,
		origins:     origins,
		submitDelay: submitDelay,
		log:         log,
	}
}

// Submit queues text for injection. The call returns once the request
// is accepted; delivery happens on the pipeline's worker goroutine.
// A submission arriving while one is in flight parks in a single slot,
// and a newer one evicts it.
func (p *Pipeline) Submit(text string) {
	req := &Request{Text: text, CreatedAt: time.Now()}

	p.mu.Lock()
	if p.busy {
		if p.pending != nil {
			p.log.Debug("quick chat submission superseded",
				zap.Time("created_at", p.pending.CreatedAt))
		}
		p.pending = req
		p.mu.Unlock()
		return
	}
	p.busy = true
	p.mu.Unlock()

	go p.drain(req)
}

func (p *Pipeline) drain(req *Request) {
	for {
		if err := p.run(req); err != nil {
			p.log.Error("quick chat injection failed", zap.Error(err))
		}

		p.mu.Lock()
		next := p.pending
		p.pending = nil
		if next == nil {
			p.busy = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		req = next
	}
}

// run executes one submission. Step order is a contract: hide, focus,
// locate, inject. Hiding before focusing keeps focus from landing on a
// window about to disappear.
func (p *Pipeline) run(req *Request) error {
	if !p.host.MainAlive() {
		return ErrMainWindowNotFound
	}

	p.host.HideQuickChat()
	p.host.FocusMain()

	frame, err := p.findTargetFrame()
	if err != nil {
		return err
	}

	script := buildScript(req.Text, p.submitDelay)
	raw, err := frame.ExecuteScript(script)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExecutionError, err)
	}

	var result scriptResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return fmt.Errorf("%w: unparseable result %q", ErrExecutionError, raw)
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", ErrScriptFailure, result.Error)
	}

	p.log.Debug("quick chat injected",
		zap.Int("length", len(req.Text)),
		zap.String("frame", frame.URL()))
	return nil
}

func (p *Pipeline) findTargetFrame() (Frame, error) {
	frames := p.host.Frames()
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: main window has no frames", ErrTargetFrameNotFound)
	}
	for _, f := range frames {
		url := f.URL()
		for _, origin := range p.origins {
			if strings.HasPrefix(url, origin) {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no frame matches a known origin", ErrTargetFrameNotFound)
}

// buildScript generates the frame-side injection script. The text is
// embedded as a JSON string literal so quotes, backslashes and
// newlines cannot break out of it.
func buildScript(text string, submitDelay time.Duration) string {
	encoded, _ := json.Marshal(text)
	delayMs := submitDelay.Milliseconds()

	return fmt.Sprintf(`(function() {
  try {
    var text = %s;
    var input = document.querySelector('textarea, [contenteditable="true"]');
    if (!input) {
      return JSON.stringify({success: false, error: "chat input not found"});
    }
    if (input.tagName === 'TEXTAREA') {
      var setter = Object.getOwnPropertyDescriptor(window.HTMLTextAreaElement.prototype, 'value').set;
      setter.call(input, text);
    } else {
      input.textContent = text;
    }
    input.dispatchEvent(new Event('input', {bubbles: true}));
    setTimeout(function() {
      input.dispatchEvent(new KeyboardEvent('keydown', {key: 'Enter', bubbles: true}));
    }, %d);
    return JSON.stringify({success: true});
  } catch (e) {
    return JSON.stringify({success: false, error: String(e)});
  }
})()`, string(encoded), delayMs)
}
