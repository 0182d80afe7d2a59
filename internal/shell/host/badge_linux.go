//go:build linux

package host

import "github.com/palefire-io/palefire/internal/shell/notify"

// Badge returns a no-op renderer: Linux has no portable app badge.
func Badge() notify.BadgeRenderer {
	return notify.NopBadge{}
}
