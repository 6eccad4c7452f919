package daemon

import (
	"sync"
	"time"
)

// DisplayState links a freedesktop notification to the overlay showing it.
type DisplayState struct {
	NotificationID uint32    // D-Bus notification ID
	OverlayID      string    // overlay ULID
	Kind           string    // overlay kind, toast or alert
	CreatedAt      time.Time // when the overlay was shown
}

// DisplayStateManager maps notification IDs to overlay IDs and back.
type DisplayStateManager struct {
	mu  sync.RWMutex
	now func() time.Time

	byNotification map[uint32]*DisplayState
	byOverlay      map[string]uint32
}

// NewDisplayStateManager creates a new DisplayStateManager.
func NewDisplayStateManager() *DisplayStateManager {
	return &DisplayStateManager{
		now:            time.Now,
		byNotification: make(map[uint32]*DisplayState),
		byOverlay:      make(map[string]uint32),
	}
}

// Register records that notification id is shown by overlay overlayID. An
// existing mapping for id is replaced.
func (m *DisplayStateManager) Register(id uint32, overlayID, kind string) *DisplayState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byNotification[id]; ok {
		delete(m.byOverlay, old.OverlayID)
	}
	state := &DisplayState{
		NotificationID: id,
		OverlayID:      overlayID,
		Kind:           kind,
		CreatedAt:      m.now(),
	}
	m.byNotification[id] = state
	m.byOverlay[overlayID] = id
	return state
}

// ByNotification returns the state for a notification ID.
func (m *DisplayStateManager) ByNotification(id uint32) (*DisplayState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byNotification[id]
	return s, ok
}

// NotificationFor returns the notification shown by an overlay.
func (m *DisplayStateManager) NotificationFor(overlayID string) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byOverlay[overlayID]
	return id, ok
}

// Remove drops the mapping for a notification ID and returns it.
func (m *DisplayStateManager) Remove(id uint32) (*DisplayState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byNotification[id]
	if !ok {
		return nil, false
	}
	delete(m.byNotification, id)
	delete(m.byOverlay, s.OverlayID)
	return s, true
}

// RemoveByOverlay drops the mapping for an overlay and returns the
// notification ID it showed.
func (m *DisplayStateManager) RemoveByOverlay(overlayID string) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byOverlay[overlayID]
	if !ok {
		return 0, false
	}
	delete(m.byOverlay, overlayID)
	delete(m.byNotification, id)
	return id, true
}

// Count returns the number of tracked notifications.
func (m *DisplayStateManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byNotification)
}
