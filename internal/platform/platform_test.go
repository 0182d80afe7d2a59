package platform

import "testing"

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		env      map[string]string
		expected Variant
	}{
		{
			name:     "darwin",
			goos:     "darwin",
			env:      map[string]string{},
			expected: MacOS,
		},
		{
			name:     "windows",
			goos:     "windows",
			env:      map[string]string{},
			expected: Windows,
		},
		{
			name:     "linux x11 session",
			goos:     "linux",
			env:      map[string]string{"XDG_SESSION_TYPE": "x11"},
			expected: LinuxX11,
		},
		{
			name:     "linux wayland session",
			goos:     "linux",
			env:      map[string]string{"XDG_SESSION_TYPE": "wayland"},
			expected: LinuxWayland,
		},
		{
			name:     "linux wayland via display var only",
			goos:     "linux",
			env:      map[string]string{"WAYLAND_DISPLAY": "wayland-0"},
			expected: LinuxWayland,
		},
		{
			name:     "linux no session info defaults to x11",
			goos:     "linux",
			env:      map[string]string{},
			expected: LinuxX11,
		},
		{
			name:     "x11 session wins over stale wayland display",
			goos:     "linux",
			env:      map[string]string{"XDG_SESSION_TYPE": "x11", "WAYLAND_DISPLAY": "wayland-0"},
			expected: LinuxX11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect(tt.goos, env(tt.env)); got != tt.expected {
				t.Errorf("detect(%s) = %v, want %v", tt.goos, got, tt.expected)
			}
		})
	}
}

func TestDetectDesktopEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected DesktopEnv
	}{
		{
			name:     "plasma 5",
			env:      map[string]string{"XDG_CURRENT_DESKTOP": "KDE", "KDE_SESSION_VERSION": "5.27"},
			expected: DesktopEnv{Name: "kde", MajorVersion: 5, MinorVersion: 27},
		},
		{
			name:     "plasma 6",
			env:      map[string]string{"XDG_CURRENT_DESKTOP": "KDE", "KDE_SESSION_VERSION": "6"},
			expected: DesktopEnv{Name: "kde", MajorVersion: 6},
		},
		{
			name:     "gnome",
			env:      map[string]string{"XDG_CURRENT_DESKTOP": "ubuntu:GNOME"},
			expected: DesktopEnv{Name: "gnome"},
		},
		{
			name:     "unknown",
			env:      map[string]string{"XDG_CURRENT_DESKTOP": "sway"},
			expected: DesktopEnv{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectDesktopEnv(env(tt.env)); got != tt.expected {
				t.Errorf("detectDesktopEnv() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSupportsPortalShortcuts(t *testing.T) {
	tests := []struct {
		name     string
		env      DesktopEnv
		expected bool
	}{
		{"kde 5.26 too old", DesktopEnv{Name: "kde", MajorVersion: 5, MinorVersion: 26}, false},
		{"kde 5.27 minimum", DesktopEnv{Name: "kde", MajorVersion: 5, MinorVersion: 27}, true},
		{"kde 6", DesktopEnv{Name: "kde", MajorVersion: 6}, true},
		{"gnome assumed current", DesktopEnv{Name: "gnome"}, true},
		{"unknown desktop", DesktopEnv{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.SupportsPortalShortcuts(); got != tt.expected {
				t.Errorf("SupportsPortalShortcuts() = %v, want %v", got, tt.expected)
			}
		})
	}
}
