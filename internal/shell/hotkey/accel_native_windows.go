//go:build windows

package hotkey

import (
	"fmt"

	hk "golang.design/x/hotkey"
)

// nativeModifiers maps the neutral accelerator to Win32 modifiers.
// CmdOrCtrl resolves to Ctrl here.
func nativeModifiers(a Accel) []hk.Modifier {
	var mods []hk.Modifier
	if a.Ctrl || a.CmdOrCtrl {
		mods = append(mods, hk.ModCtrl)
	}
	if a.Shift {
		mods = append(mods, hk.ModShift)
	}
	if a.Alt {
		mods = append(mods, hk.ModAlt)
	}
	if a.Meta {
		mods = append(mods, hk.ModWin)
	}
	return mods
}

var nativeKeys = map[string]hk.Key{
	"A": hk.KeyA, "B": hk.KeyB, "C": hk.KeyC, "D": hk.KeyD, "E": hk.KeyE,
	"F": hk.KeyF, "G": hk.KeyG, "H": hk.KeyH, "I": hk.KeyI, "J": hk.KeyJ,
	"K": hk.KeyK, "L": hk.KeyL, "M": hk.KeyM, "N": hk.KeyN, "O": hk.KeyO,
	"P": hk.KeyP, "Q": hk.KeyQ, "R": hk.KeyR, "S": hk.KeyS, "T": hk.KeyT,
	"U": hk.KeyU, "V": hk.KeyV, "W": hk.KeyW, "X": hk.KeyX, "Y": hk.KeyY,
	"Z": hk.KeyZ,
	"0": hk.Key0, "1": hk.Key1, "2": hk.Key2, "3": hk.Key3, "4": hk.Key4,
	"5": hk.Key5, "6": hk.Key6, "7": hk.Key7, "8": hk.Key8, "9": hk.Key9,
	"Space":  hk.KeySpace,
	"Tab":    hk.KeyTab,
	"Escape": hk.KeyEscape,
	"Enter":  hk.KeyReturn,
	"F1":     hk.KeyF1, "F2": hk.KeyF2, "F3": hk.KeyF3, "F4": hk.KeyF4,
	"F5": hk.KeyF5, "F6": hk.KeyF6, "F7": hk.KeyF7, "F8": hk.KeyF8,
	"F9": hk.KeyF9, "F10": hk.KeyF10, "F11": hk.KeyF11, "F12": hk.KeyF12,
}

func nativeKey(a Accel) (hk.Key, error) {
	if k, ok := nativeKeys[a.Key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("key %q has no native mapping", a.Key)
}
