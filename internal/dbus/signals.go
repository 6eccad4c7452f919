package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

// EmitDismissed emits the Dismissed signal with the overlay's reason.
func (s *Server) EmitDismissed(id string, reason overlay.DismissReason) error {
	conn := s.Connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := conn.Emit(VeilPath, VeilInterface+".Dismissed", id, uint32(reason))
	if err != nil {
		return fmt.Errorf("failed to emit Dismissed signal: %w", err)
	}

	s.logger.Debug("emitted Dismissed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *Server) EmitActionInvoked(id, actionKey string) error {
	conn := s.Connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := conn.Emit(VeilPath, VeilInterface+".ActionInvoked", id, actionKey)
	if err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}

// OnDismissed is an overlay.DismissFunc that emits Dismissed. Emission
// failures are logged only; a presenter without a bus keeps working.
func (s *Server) OnDismissed(o *overlay.Overlay, reason overlay.DismissReason) {
	if s.Connection() == nil {
		return
	}
	if err := s.EmitDismissed(o.ID(), reason); err != nil {
		s.logger.Warn("failed to emit Dismissed", "id", o.ID(), "error", err)
	}
}

// OnAction is a popup.ActionFunc that emits ActionInvoked.
func (s *Server) OnAction(o *overlay.Overlay, a popup.AlertAction) {
	if s.Connection() == nil {
		return
	}
	if err := s.EmitActionInvoked(o.ID(), a.Key); err != nil {
		s.logger.Warn("failed to emit ActionInvoked", "id", o.ID(), "error", err)
	}
}

// Connection returns the underlying D-Bus connection, nil until started.
func (s *Server) Connection() *dbus.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *NotificationServer) EmitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := conn.Emit(NotificationsPath, NotificationsInterface+".NotificationClosed", id, uint32(reason))
	if err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *NotificationServer) EmitActionInvoked(id uint32, actionKey string) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := conn.Emit(NotificationsPath, NotificationsInterface+".ActionInvoked", id, actionKey)
	if err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}

// CloseWithReason stops tracking id and emits NotificationClosed. Unknown
// IDs are ignored so a notification is reported closed at most once.
func (s *NotificationServer) CloseWithReason(id uint32, reason CloseReason) error {
	if !s.MarkClosed(id) {
		return nil
	}
	return s.EmitNotificationClosed(id, reason)
}
