//go:build darwin || windows

package host

import (
	"github.com/wailsapp/wails/v3/pkg/services/badge"

	"github.com/palefire-io/palefire/internal/shell/notify"
)

// Badge returns the dock/taskbar badge renderer for this platform.
func Badge() notify.BadgeRenderer {
	return &wailsBadge{svc: badge.New()}
}

type wailsBadge struct {
	svc *badge.Service
}

func (b *wailsBadge) SetBadge(label string) error {
	return b.svc.SetBadge(label)
}

func (b *wailsBadge) ClearBadge() error {
	return b.svc.RemoveBadge()
}
