package hotkey

import (
	"fmt"
	"strings"
)

// Accel is a parsed, platform-neutral accelerator. Backends convert it to
// their own representation.
type Accel struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	// Meta is the Cmd key on macOS and the Super/Win key elsewhere.
	Meta bool
	// CmdOrCtrl resolves to Cmd on macOS and Ctrl everywhere else.
	CmdOrCtrl bool
	// Key is the normalized key name: a single upper-case letter or digit,
	// or one of "Space", "Tab", "Escape", "Enter", "F1".."F12".
	Key string
}

// ParseAccelerator parses an Electron-style accelerator string such as
// "CmdOrCtrl+Shift+Space". The last token is the key; everything before it
// must be a modifier.
func ParseAccelerator(s string) (Accel, error) {
	var a Accel

	tokens := strings.Split(s, "+")
	if len(tokens) == 0 || strings.TrimSpace(s) == "" {
		return a, fmt.Errorf("empty accelerator")
	}

	for i, raw := range tokens {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return a, fmt.Errorf("accelerator %q has an empty token", s)
		}
		last := i == len(tokens)-1

		switch normalized := normalizeModifier(tok); normalized {
		case "ctrl":
			a.Ctrl = true
		case "shift":
			a.Shift = true
		case "alt":
			a.Alt = true
		case "meta":
			a.Meta = true
		case "cmdorctrl":
			a.CmdOrCtrl = true
		default:
			if !last {
				return a, fmt.Errorf("accelerator %q: unknown modifier %q", s, tok)
			}
			key, err := normalizeKey(tok)
			if err != nil {
				return a, fmt.Errorf("accelerator %q: %w", s, err)
			}
			a.Key = key
		}
	}

	if a.Key == "" {
		return a, fmt.Errorf("accelerator %q has no key", s)
	}
	if !a.Ctrl && !a.Shift && !a.Alt && !a.Meta && !a.CmdOrCtrl {
		return a, fmt.Errorf("accelerator %q has no modifier; global shortcuts require at least one", s)
	}
	return a, nil
}

func normalizeModifier(tok string) string {
	switch strings.ToLower(tok) {
	case "ctrl", "control":
		return "ctrl"
	case "shift":
		return "shift"
	case "alt", "option":
		return "alt"
	case "meta", "super", "cmd", "command", "win":
		return "meta"
	case "cmdorctrl", "commandorcontrol":
		return "cmdorctrl"
	}
	return tok
}

func normalizeKey(tok string) (string, error) {
	switch lower := strings.ToLower(tok); lower {
	case "space":
		return "Space", nil
	case "tab":
		return "Tab", nil
	case "escape", "esc":
		return "Escape", nil
	case "enter", "return":
		return "Enter", nil
	}

	if len(tok) == 1 {
		c := tok[0]
		switch {
		case c >= 'a' && c <= 'z':
			return strings.ToUpper(tok), nil
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return tok, nil
		}
		return "", fmt.Errorf("unsupported key %q", tok)
	}

	upper := strings.ToUpper(tok)
	if len(upper) >= 2 && upper[0] == 'F' {
		switch upper {
		case "F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12":
			return upper, nil
		}
	}
	return "", fmt.Errorf("unsupported key %q", tok)
}

// PortalTrigger renders the accelerator as an XDG shortcuts trigger
// description (e.g. "CTRL+SHIFT+space") for the portal's
// preferred_trigger hint.
func (a Accel) PortalTrigger() string {
	var parts []string
	if a.Ctrl || a.CmdOrCtrl {
		parts = append(parts, "CTRL")
	}
	if a.Shift {
		parts = append(parts, "SHIFT")
	}
	if a.Alt {
		parts = append(parts, "ALT")
	}
	if a.Meta {
		parts = append(parts, "LOGO")
	}
	parts = append(parts, strings.ToLower(a.Key))
	return strings.Join(parts, "+")
}

func (a Accel) String() string {
	var parts []string
	if a.CmdOrCtrl {
		parts = append(parts, "CmdOrCtrl")
	}
	if a.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if a.Shift {
		parts = append(parts, "Shift")
	}
	if a.Alt {
		parts = append(parts, "Alt")
	}
	if a.Meta {
		parts = append(parts, "Meta")
	}
	parts = append(parts, a.Key)
	return strings.Join(parts, "+")
}
