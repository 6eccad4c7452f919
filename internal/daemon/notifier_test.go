package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/veil/internal/dbus"
)

func TestInternalNotifier_RateLimit(t *testing.T) {
	n := NewInternalNotifier(nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	var got []*dbus.DBusNotification
	n.SetNotifyHandler(func(note *dbus.DBusNotification) (uint32, error) {
		got = append(got, note)
		return uint32(len(got)), nil
	})

	assert.True(t, n.NotifyConfigReloaded())
	assert.False(t, n.NotifyConfigReloaded(), "same key inside the interval")
	assert.True(t, n.NotifyConfigError(errors.New("bad fps")), "different key")

	now = now.Add(DefaultNoticeInterval)
	assert.True(t, n.NotifyConfigReloaded())

	require.Len(t, got, 3)
	assert.Equal(t, "veild", got[0].AppName)
	assert.Equal(t, dbus.UrgencyLow, got[0].Urgency())
	assert.Equal(t, "dialog-information", got[0].AppIcon)
	assert.Equal(t, "bad fps", got[1].Body)
	assert.Equal(t, dbus.UrgencyNormal, got[1].Urgency())
	d, ok := got[1].Timeout()
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)
}

func TestInternalNotifier_DisabledAndUnwired(t *testing.T) {
	n := NewInternalNotifier(nil)
	assert.False(t, n.NotifyStartup("1.0.0"), "no handler")

	calls := 0
	n.SetNotifyHandler(func(*dbus.DBusNotification) (uint32, error) {
		calls++
		return 0, errors.New("queue occupied")
	})
	assert.False(t, n.NotifyStartup("1.0.0"), "handler refused")

	n.SetEnabled(false)
	n.SetMinInterval(0)
	assert.False(t, n.NotifyThemeError(errors.New("missing")))
	assert.Equal(t, 1, calls)
}
