package notify

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/models"
)

type fakeNotifier struct {
	mu        sync.Mutex
	supported bool
	sent      []string
}

func (n *fakeNotifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, message)
	return nil
}

func (n *fakeNotifier) Supported() bool { return n.supported }

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeBadge struct {
	mu      sync.Mutex
	sets    int
	clears  int
	current string
}

func (b *fakeBadge) SetBadge(label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sets++
	b.current = label
	return nil
}

func (b *fakeBadge) ClearBadge() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clears++
	b.current = ""
	return nil
}

func newTestCoordinator(focused *bool, settings *models.Settings) (*Coordinator, *fakeNotifier, *fakeBadge) {
	notifier := &fakeNotifier{supported: true}
	badge := &fakeBadge{}
	c := NewCoordinator(config.NewMemoryStore(settings), notifier, badge,
		func() bool { return *focused }, zap.NewNop())
	return c, notifier, badge
}

func TestResponseCompleteWhileFocusedIsSilent(t *testing.T) {
	focused := true
	c, notifier, badge := newTestCoordinator(&focused, models.NewSettings())

	c.OnResponseComplete()

	if notifier.count() != 0 {
		t.Error("notification sent while window focused")
	}
	if badge.sets != 0 {
		t.Error("badge set while window focused")
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestResponseCompleteWhileUnfocusedNotifies(t *testing.T) {
	focused := false
	c, notifier, badge := newTestCoordinator(&focused, models.NewSettings())

	c.OnResponseComplete()

	if notifier.count() != 1 {
		t.Errorf("notifications sent = %d, want 1", notifier.count())
	}
	if badge.sets != 1 {
		t.Errorf("badge sets = %d, want 1", badge.sets)
	}
	if c.State() != StateNotified {
		t.Errorf("state = %v, want notified", c.State())
	}
}

func TestNotificationsDisabledInSettings(t *testing.T) {
	settings := models.NewSettings()
	settings.Notifications.Enabled = false
	focused := false
	c, notifier, badge := newTestCoordinator(&focused, settings)

	c.OnResponseComplete()

	if notifier.count() != 0 {
		t.Error("notification sent with setting disabled")
	}
	if badge.sets != 0 {
		t.Error("badge set with setting disabled")
	}
}

func TestSecondResponseDoesNotRenotify(t *testing.T) {
	focused := false
	c, notifier, _ := newTestCoordinator(&focused, models.NewSettings())

	c.OnResponseComplete()
	c.OnResponseComplete()

	if notifier.count() != 1 {
		t.Errorf("notifications sent = %d, want 1 for an unseen batch", notifier.count())
	}
}

func TestFocusClearsBadgeAndResetsState(t *testing.T) {
	focused := false
	c, _, badge := newTestCoordinator(&focused, models.NewSettings())

	c.OnResponseComplete()
	c.OnMainFocus()

	if badge.current != "" {
		t.Errorf("badge still rendered as %q after focus", badge.current)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}

	// A second notification after focus is a fresh batch.
	c.OnResponseComplete()
	if c.State() != StateNotified {
		t.Errorf("state = %v, want notified after new response", c.State())
	}
}

func TestFocusInIdleStateStillClearsBadge(t *testing.T) {
	focused := false
	c, _, badge := newTestCoordinator(&focused, models.NewSettings())

	c.OnMainFocus()

	if badge.clears != 1 {
		t.Errorf("badge clears = %d, want 1 even from idle", badge.clears)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestUnsupportedNotifierStillBadges(t *testing.T) {
	focused := false
	c, notifier, badge := newTestCoordinator(&focused, models.NewSettings())
	notifier.supported = false

	c.OnResponseComplete()

	if notifier.count() != 0 {
		t.Error("notification sent despite unsupported notifier")
	}
	if badge.sets != 1 {
		t.Error("badge skipped despite working renderer")
	}
}
