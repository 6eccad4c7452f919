package dbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationServer_NotifyAssignsIDs(t *testing.T) {
	s := NewNotificationServer(nil)
	var shown []uint32
	s.SetNotifyHandler(func(_ *DBusNotification, id uint32) error {
		shown = append(shown, id)
		return nil
	})

	first, derr := s.Notify("app", 0, "", "one", "", nil, nil, -1)
	require.Nil(t, derr)
	second, derr := s.Notify("app", 0, "", "two", "", nil, nil, -1)
	require.Nil(t, derr)
	replaced, derr := s.Notify("app", first, "", "one again", "", nil, nil, -1)
	require.Nil(t, derr)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, replaced)
	assert.Equal(t, []uint32{first, second, first}, shown)
	assert.True(t, s.IsActive(first))
	assert.True(t, s.IsActive(second))
}

func TestNotificationServer_HandlerError(t *testing.T) {
	s := NewNotificationServer(nil)
	s.SetNotifyHandler(func(*DBusNotification, uint32) error {
		return errors.New("busy")
	})

	id, derr := s.Notify("app", 0, "", "one", "", nil, nil, -1)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorFailed, derr.Name)
	assert.Zero(t, id)
}

func TestNotificationServer_Close(t *testing.T) {
	s := NewNotificationServer(nil)
	var closed []uint32
	s.SetCloseHandler(func(id uint32) { closed = append(closed, id) })

	id, err := s.NotifyInternal(&DBusNotification{Summary: "reloaded"})
	require.NoError(t, err)

	assert.Nil(t, s.CloseNotification(id+100), "unknown ids are ignored")
	assert.Nil(t, s.CloseNotification(id))
	assert.Equal(t, []uint32{id}, closed)

	// Not connected, so the signal fails, but only once.
	assert.Error(t, s.CloseWithReason(id, CloseReasonClosed))
	assert.NoError(t, s.CloseWithReason(id, CloseReasonClosed))
	assert.False(t, s.IsActive(id))
}

func TestNotificationServer_Info(t *testing.T) {
	s := NewNotificationServer(nil)
	caps, derr := s.GetCapabilities()
	require.Nil(t, derr)
	assert.Equal(t, ServerCapabilities, caps)

	name, vendor, _, spec, derr := s.GetServerInformation()
	require.Nil(t, derr)
	assert.Equal(t, "veild", name)
	assert.Equal(t, "veil", vendor)
	assert.Equal(t, "1.2", spec)
}
