package notify

import "github.com/gen2brain/beeep"

// BeeepNotifier delivers notifications through the platform facilities
// beeep wraps: NSUserNotification, toast notifications, or libnotify.
type BeeepNotifier struct {
	icon string
}

// NewBeeepNotifier returns the default OS notifier. icon may be empty.
func NewBeeepNotifier(icon string) *BeeepNotifier {
	beeep.AppName = "Palefire"
	return &BeeepNotifier{icon: icon}
}

func (n *BeeepNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, n.icon)
}

// Supported is always true: beeep covers every platform we ship on,
// and a delivery failure surfaces from Notify instead.
func (n *BeeepNotifier) Supported() bool { return true }

// NopBadge is the badge renderer for platforms without an app badge.
type NopBadge struct{}

func (NopBadge) SetBadge(string) error { return nil }
func (NopBadge) ClearBadge() error     { return nil }
