package daemon

import (
	"context"
	"fmt"
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/veil/internal/dbus"
	"github.com/jmylchreest/veil/internal/mainloop"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

type desktop struct{ attached int }

func (d *desktop) Bounds() overlay.Rect { return overlay.Rect{Width: 1920, Height: 1080} }
func (d *desktop) Attach(*overlay.Overlay) { d.attached++ }
func (d *desktop) Detach(*overlay.Overlay) { d.attached-- }

// builder remembers the last alert so tests can press its buttons.
type builder struct {
	alert popup.AlertConfig
	press func(ctx context.Context, a popup.AlertAction)
}

func (b *builder) BuildToast(popup.ToastConfig) overlay.Surface {
	return overlay.NewBox(overlay.Rect{Width: 200, Height: 60})
}

func (b *builder) BuildAlert(cfg popup.AlertConfig, onAction func(context.Context, popup.AlertAction)) overlay.Surface {
	b.alert, b.press = cfg, onAction
	return overlay.NewBox(overlay.Rect{Width: 400, Height: 200})
}

type sink struct{ events []string }

func (s *sink) CloseWithReason(id uint32, reason dbus.CloseReason) error {
	s.events = append(s.events, fmt.Sprintf("closed %d %s", id, reason))
	return nil
}

func (s *sink) EmitActionInvoked(id uint32, key string) error {
	s.events = append(s.events, fmt.Sprintf("action %d %s", id, key))
	return nil
}

type bridgeFixture struct {
	sched     *mainloop.Manual
	host      *desktop
	builder   *builder
	sink      *sink
	presenter *popup.Presenter
	bridge    *Bridge
}

func newBridgeFixture(t *testing.T) *bridgeFixture {
	t.Helper()
	f := &bridgeFixture{
		sched:   mainloop.NewManual(),
		host:    &desktop{},
		builder: &builder{},
		sink:    &sink{},
	}
	ctrl := overlay.NewController(f.sched,
		overlay.WithStrategy(overlay.InstantStrategy{}),
		overlay.WithClock(f.sched.Now),
	)
	f.presenter = popup.New(ctrl, f.host, f.builder, popup.WithQueue(popup.NewLoadingQueue(nil)))
	f.bridge = NewBridge(context.Background(), f.presenter, f.sink, nil)
	require.NoError(t, f.presenter.Subscribe(context.Background(), f.bridge.OnDismissed, nil))
	return f
}

func (f *bridgeFixture) pressButton(t *testing.T, a *popup.AlertAction) {
	t.Helper()
	require.NotNil(t, a)
	require.NoError(t, f.sched.Do(context.Background(), func(ctx context.Context) {
		f.builder.press(ctx, *a)
	}))
}

func TestBridge_TimedNotificationIsToast(t *testing.T) {
	f := newBridgeFixture(t)

	err := f.bridge.Show(&dbus.DBusNotification{
		Summary:       "Build finished",
		Body:          "veil",
		AppIcon:       "emblem-ok-symbolic",
		ExpireTimeout: 1500,
	}, 7)
	require.NoError(t, err)

	s, ok := f.bridge.States().ByNotification(7)
	require.True(t, ok)
	assert.Equal(t, popup.KindToast, s.Kind)
	assert.Equal(t, 1, f.host.attached)

	f.sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, 0, f.host.attached)
	assert.Equal(t, []string{"closed 7 expired"}, f.sink.events)
	assert.Zero(t, f.bridge.States().Count())
}

func TestBridge_ActionsBecomeAlertButtons(t *testing.T) {
	f := newBridgeFixture(t)

	err := f.bridge.Show(&dbus.DBusNotification{
		Summary:       "Update available",
		Actions:       []string{"install", "Install", "later", "Later"},
		ExpireTimeout: -1,
	}, 3)
	require.NoError(t, err)

	require.NotNil(t, f.builder.alert.Confirm)
	assert.Equal(t, "install", f.builder.alert.Confirm.Key)
	assert.Equal(t, "Install", f.builder.alert.Confirm.Title)
	require.NotNil(t, f.builder.alert.Cancel)
	assert.Equal(t, "Later", f.builder.alert.Cancel.Title)

	f.pressButton(t, f.builder.alert.Confirm)
	assert.Equal(t, []string{"action 3 install", "closed 3 dismissed"}, f.sink.events)
	assert.Zero(t, f.bridge.States().Count())
}

func TestBridge_PersistentWithoutActions(t *testing.T) {
	f := newBridgeFixture(t)

	require.NoError(t, f.bridge.Show(&dbus.DBusNotification{Summary: "Battery low"}, 4))
	assert.Nil(t, f.builder.alert.Confirm)
	require.NotNil(t, f.builder.alert.Cancel)
	assert.Equal(t, closeLabel, f.builder.alert.Cancel.Title)

	f.pressButton(t, f.builder.alert.Cancel)
	assert.Equal(t, []string{"closed 4 dismissed"}, f.sink.events)
}

func TestBridge_CriticalIsAlert(t *testing.T) {
	f := newBridgeFixture(t)

	n := &dbus.DBusNotification{Summary: "Disk full", ExpireTimeout: 2000}
	n.Hints = map[string]godbus.Variant{"urgency": godbus.MakeVariant(byte(dbus.UrgencyCritical))}
	require.NoError(t, f.bridge.Show(n, 5))

	s, _ := f.bridge.States().ByNotification(5)
	assert.Equal(t, popup.KindAlert, s.Kind)

	f.sched.Advance(5 * time.Second)
	assert.Equal(t, 1, f.host.attached, "alerts don't expire")
}

func TestBridge_CloseNotification(t *testing.T) {
	f := newBridgeFixture(t)

	require.NoError(t, f.bridge.Show(&dbus.DBusNotification{Summary: "Syncing", ExpireTimeout: 10000}, 9))
	f.bridge.Close(9)
	f.bridge.Close(42)

	assert.Equal(t, 0, f.host.attached)
	assert.Equal(t, []string{"closed 9 closed"}, f.sink.events)
}

func TestBridge_ReplacesID(t *testing.T) {
	f := newBridgeFixture(t)

	require.NoError(t, f.bridge.Show(&dbus.DBusNotification{Summary: "Copying 1/3", ExpireTimeout: 10000}, 2))
	first, _ := f.bridge.States().ByNotification(2)
	require.NoError(t, f.bridge.Show(&dbus.DBusNotification{ReplacesID: 2, Summary: "Copying 2/3", ExpireTimeout: 10000}, 2))
	second, _ := f.bridge.States().ByNotification(2)

	assert.NotEqual(t, first.OverlayID, second.OverlayID)
	assert.Equal(t, 1, f.host.attached)
	assert.Empty(t, f.sink.events, "a replaced notification is not reported closed")
}

func TestBridge_RefusedWhileLoading(t *testing.T) {
	f := newBridgeFixture(t)

	_, err := f.presenter.Loading(context.Background(), "Working", nil)
	require.NoError(t, err)

	err = f.bridge.Show(&dbus.DBusNotification{Summary: "Hello", ExpireTimeout: 1000}, 1)
	assert.ErrorIs(t, err, overlay.ErrQueueOccupied)
	assert.Zero(t, f.bridge.States().Count())
}

func TestIconFor(t *testing.T) {
	tests := []struct {
		name string
		want popup.Icon
	}{
		{"dialog-error", popup.IconFail},
		{"dialog-warning-symbolic", popup.IconFail},
		{"emblem-ok-symbolic", popup.IconSuccess},
		{"firefox", popup.IconNone},
		{"", popup.IconNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, iconFor(tt.name), tt.name)
	}
}
