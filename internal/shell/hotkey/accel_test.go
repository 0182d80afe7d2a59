package hotkey

import "testing"

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Accel
		wantErr bool
	}{
		{
			name:  "cmdorctrl shift space",
			input: "CmdOrCtrl+Shift+Space",
			want:  Accel{CmdOrCtrl: true, Shift: true, Key: "Space"},
		},
		{
			name:  "lowercase letter normalized",
			input: "Ctrl+Shift+h",
			want:  Accel{Ctrl: true, Shift: true, Key: "H"},
		},
		{
			name:  "alt alias option",
			input: "Option+Z",
			want:  Accel{Alt: true, Key: "Z"},
		},
		{
			name:  "super maps to meta",
			input: "Super+F5",
			want:  Accel{Meta: true, Key: "F5"},
		},
		{
			name:  "commandorcontrol long form",
			input: "CommandOrControl+T",
			want:  Accel{CmdOrCtrl: true, Key: "T"},
		},
		{
			name:  "digit key",
			input: "Ctrl+Alt+1",
			want:  Accel{Ctrl: true, Alt: true, Key: "1"},
		},
		{
			name:  "return aliases enter",
			input: "Ctrl+Return",
			want:  Accel{Ctrl: true, Key: "Enter"},
		},
		{
			name:    "no modifier rejected",
			input:   "Space",
			wantErr: true,
		},
		{
			name:    "modifier only rejected",
			input:   "Ctrl+Shift",
			wantErr: true,
		},
		{
			name:    "empty string rejected",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unknown modifier rejected",
			input:   "Hyper+A",
			wantErr: true,
		},
		{
			name:    "unsupported key rejected",
			input:   "Ctrl+PageDown",
			wantErr: true,
		},
		{
			name:    "empty token rejected",
			input:   "Ctrl++A",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccelerator(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAccelerator(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAccelerator(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAccelerator(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPortalTrigger(t *testing.T) {
	tests := []struct {
		name  string
		accel Accel
		want  string
	}{
		{
			name:  "cmdorctrl renders as ctrl",
			accel: Accel{CmdOrCtrl: true, Shift: true, Key: "Space"},
			want:  "CTRL+SHIFT+space",
		},
		{
			name:  "meta renders as logo",
			accel: Accel{Meta: true, Key: "H"},
			want:  "LOGO+h",
		},
		{
			name:  "all modifiers",
			accel: Accel{Ctrl: true, Shift: true, Alt: true, Key: "F2"},
			want:  "CTRL+SHIFT+ALT+f2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.accel.PortalTrigger(); got != tt.want {
				t.Errorf("PortalTrigger() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccelString(t *testing.T) {
	a := Accel{CmdOrCtrl: true, Shift: true, Key: "Space"}
	if got := a.String(); got != "CmdOrCtrl+Shift+Space" {
		t.Errorf("String() = %q", got)
	}
}
