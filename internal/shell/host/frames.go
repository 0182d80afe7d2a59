package host

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v3/pkg/application"
	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/models"
	"github.com/palefire-io/palefire/internal/shell/inject"
)

const (
	bridgeEvent   = "palefire:script-result"
	bridgeTimeout = 10 * time.Second
)

// FrameHost implements the injection pipeline's port over the wails
// windows. ExecJS has no return channel, so script results come back
// through a runtime event carrying a correlation id.
type FrameHost struct {
	factory *WindowFactory
	log     *zap.Logger

	mu      sync.Mutex
	waiters map[string]chan string
}

// NewFrameHost wires the result bridge. Call once, before any window
// executes scripts.
func NewFrameHost(app *application.App, factory *WindowFactory, log *zap.Logger) *FrameHost {
	h := &FrameHost{
		factory: factory,
		log:     log,
		waiters: make(map[string]chan string),
	}

	app.Event.On(bridgeEvent, func(e *application.CustomEvent) {
		var payload struct {
			ID     string `json:"id"`
			Result string `json:"result"`
		}
		raw, err := json.Marshal(e.Data)
		if err != nil || json.Unmarshal(raw, &payload) != nil {
			h.log.Warn("malformed script result event")
			return
		}
		h.mu.Lock()
		ch, ok := h.waiters[payload.ID]
		delete(h.waiters, payload.ID)
		h.mu.Unlock()
		if ok {
			ch <- payload.Result
		}
	})
	return h
}

func (h *FrameHost) MainAlive() bool {
	return h.factory.get(models.RoleMain) != nil
}

func (h *FrameHost) HideQuickChat() {
	if w := h.factory.get(models.RoleQuickChat); w != nil {
		w.Hide()
	}
}

func (h *FrameHost) FocusMain() {
	if w := h.factory.get(models.RoleMain); w != nil {
		w.Show()
		w.Focus()
	}
}

// Frames snapshots the main window's frame tree: the page itself plus
// every iframe src, queried through the bridge.
func (h *FrameHost) Frames() []inject.Frame {
	w := h.factory.get(models.RoleMain)
	if w == nil {
		return nil
	}

	raw, err := h.eval(w, `JSON.stringify([document.location.href].concat(
		Array.from(document.querySelectorAll('iframe')).map(function(f) { return f.src; })))`)
	if err != nil {
		h.log.Warn("frame enumeration failed", zap.Error(err))
		return nil
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		h.log.Warn("frame enumeration returned junk", zap.String("raw", raw))
		return nil
	}

	frames := make([]inject.Frame, 0, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		frames = append(frames, &wailsFrame{host: h, win: w, url: url})
	}
	return frames
}

// eval runs an expression in the main window's page context and waits
// for its result to come back over the bridge.
func (h *FrameHost) eval(w *wailsWindow, expr string) (string, error) {
	id := uuid.NewString()
	ch := make(chan string, 1)

	h.mu.Lock()
	h.waiters[id] = ch
	h.mu.Unlock()

	script := fmt.Sprintf(`(function() {
  var result;
  try { result = %s; } catch (e) { result = JSON.stringify({success: false, error: String(e)}); }
  wails.Event.Emit({name: %q, data: {id: %q, result: String(result)}});
})()`, expr, bridgeEvent, id)
	w.win.ExecJS(script)

	select {
	case result := <-ch:
		return result, nil
	case <-time.After(bridgeTimeout):
		h.mu.Lock()
		delete(h.waiters, id)
		h.mu.Unlock()
		return "", fmt.Errorf("no script result within %s", bridgeTimeout)
	}
}

// wailsFrame targets one frame by URL. Scripts run from the page
// context and reach into the matching iframe; the page frame itself is
// addressed directly.
type wailsFrame struct {
	host *FrameHost
	win  *wailsWindow
	url  string
}

func (f *wailsFrame) URL() string { return f.url }

func (f *wailsFrame) ExecuteScript(script string) (string, error) {
	urlJSON, _ := json.Marshal(f.url)
	scriptJSON, _ := json.Marshal(script)

	// Same-origin access to the iframe document is guaranteed by the
	// webview configuration; the embedded app and its chat frame share
	// the trusted origin set.
	expr := fmt.Sprintf(`(function() {
  var target = null;
  if (document.location.href === %[1]s) {
    target = window;
  } else {
    var iframes = document.querySelectorAll('iframe');
    for (var i = 0; i < iframes.length; i++) {
      if (iframes[i].src === %[1]s) { target = iframes[i].contentWindow; break; }
    }
  }
  if (!target) {
    return JSON.stringify({success: false, error: "frame gone"});
  }
  return target.eval(%[2]s);
})()`, string(urlJSON), string(scriptJSON))

	return f.host.eval(f.win, expr)
}
