package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayStateManager(t *testing.T) {
	m := NewDisplayStateManager()

	m.Register(1, "overlay-a", "toast")
	m.Register(2, "overlay-b", "alert")
	assert.Equal(t, 2, m.Count())

	s, ok := m.ByNotification(2)
	require.True(t, ok)
	assert.Equal(t, "overlay-b", s.OverlayID)
	assert.Equal(t, "alert", s.Kind)
	assert.False(t, s.CreatedAt.IsZero())

	id, ok := m.NotificationFor("overlay-a")
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)

	// Replacing drops the old overlay's reverse entry.
	m.Register(1, "overlay-c", "toast")
	_, ok = m.NotificationFor("overlay-a")
	assert.False(t, ok)
	id, _ = m.NotificationFor("overlay-c")
	assert.Equal(t, uint32(1), id)

	id, ok = m.RemoveByOverlay("overlay-c")
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)
	_, ok = m.ByNotification(1)
	assert.False(t, ok)

	_, ok = m.Remove(2)
	assert.True(t, ok)
	_, ok = m.Remove(2)
	assert.False(t, ok)
	assert.Zero(t, m.Count())
}
