package daemon

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jmylchreest/veil/internal/dbus"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

// bridgeTimeout bounds each presenter call made for a D-Bus request.
const bridgeTimeout = 5 * time.Second

// closeLabel is the button of persistent notifications without actions.
const closeLabel = "Close"

// Presenter is what the bridge needs from popup.Presenter.
type Presenter interface {
	Toast(ctx context.Context, message string, opts ...popup.ToastOption) (*overlay.Overlay, error)
	Alert(ctx context.Context, opts ...popup.AlertOption) (*overlay.Overlay, error)
	Dismiss(ctx context.Context, id string) bool
}

// NotificationSink reports back to freedesktop clients.
type NotificationSink interface {
	CloseWithReason(id uint32, reason dbus.CloseReason) error
	EmitActionInvoked(id uint32, actionKey string) error
}

// Bridge shows freedesktop notifications as overlays. Timed notifications
// without actions become toasts; those with actions, no timeout, or critical
// urgency become alerts whose buttons are the notification's first two
// actions.
type Bridge struct {
	ctx       context.Context
	presenter Presenter
	sink      NotificationSink
	states    *DisplayStateManager
	logger    *slog.Logger
}

// NewBridge creates a bridge. ctx bounds presenter calls.
func NewBridge(ctx context.Context, p Presenter, sink NotificationSink, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		ctx:       ctx,
		presenter: p,
		sink:      sink,
		states:    NewDisplayStateManager(),
		logger:    logger.With("component", "bridge"),
	}
}

// States returns the notification to overlay mapping.
func (b *Bridge) States() *DisplayStateManager { return b.states }

// Show is a dbus.NotificationHandler.
func (b *Bridge) Show(n *dbus.DBusNotification, id uint32) error {
	ctx, cancel := context.WithTimeout(b.ctx, bridgeTimeout)
	defer cancel()

	if old, ok := b.states.Remove(id); ok {
		// Replaced notifications are not reported closed.
		b.presenter.Dismiss(ctx, old.OverlayID)
	}

	var (
		o   *overlay.Overlay
		err error
	)
	timeout, timed := n.Timeout()
	if len(n.Actions) > 0 || !timed || n.Urgency() == dbus.UrgencyCritical {
		o, err = b.presenter.Alert(ctx, b.alertOptions(n, id)...)
	} else {
		opts := []popup.ToastOption{popup.WithIcon(iconFor(n.AppIcon))}
		if timeout > 0 {
			opts = append(opts, popup.WithDelay(timeout))
		}
		o, err = b.presenter.Toast(ctx, n.Text(), opts...)
	}
	if err != nil {
		return err
	}

	b.states.Register(id, o.ID(), o.Kind())
	b.logger.Debug("notification shown", "id", id, "overlay", o.ID(), "kind", o.Kind())
	return nil
}

func (b *Bridge) alertOptions(n *dbus.DBusNotification, id uint32) []popup.AlertOption {
	opts := []popup.AlertOption{popup.WithTitle(n.Summary), popup.WithSubtitle(n.Body)}
	actions := n.ParsedActions()
	if len(actions) > 0 {
		opts = append(opts, popup.WithAction(actions[0].Key, actions[0].Label, b.invoke(id, actions[0].Key)))
	}
	if len(actions) > 1 {
		opts = append(opts, popup.WithCancel(actions[1].Label, b.invoke(id, actions[1].Key)))
	} else {
		opts = append(opts, popup.WithCancel(closeLabel, b.invoke(id, "")))
	}
	return opts
}

// invoke runs after the alert was dismissed by a button, so the action is
// reported before the close.
func (b *Bridge) invoke(id uint32, key string) func() {
	return func() {
		if key != "" {
			if err := b.sink.EmitActionInvoked(id, key); err != nil {
				b.logger.Warn("failed to report action", "id", id, "action", key, "error", err)
			}
		}
		if err := b.sink.CloseWithReason(id, dbus.CloseReasonDismissed); err != nil {
			b.logger.Warn("failed to report close", "id", id, "error", err)
		}
	}
}

// Close is a dbus.CloseHandler.
func (b *Bridge) Close(id uint32) {
	s, ok := b.states.ByNotification(id)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, bridgeTimeout)
	defer cancel()
	b.presenter.Dismiss(ctx, s.OverlayID)
}

// OnDismissed is an overlay.DismissFunc for the presenter. Button presses
// are reported by the button itself.
func (b *Bridge) OnDismissed(o *overlay.Overlay, reason overlay.DismissReason) {
	id, ok := b.states.RemoveByOverlay(o.ID())
	if !ok || reason == overlay.ReasonAction {
		return
	}
	if err := b.sink.CloseWithReason(id, dbus.CloseReasonFor(reason)); err != nil {
		b.logger.Warn("failed to report close", "id", id, "error", err)
	}
}

// iconFor maps common freedesktop icon names onto the toast icons.
func iconFor(appIcon string) popup.Icon {
	switch strings.TrimSuffix(appIcon, "-symbolic") {
	case "dialog-error", "dialog-warning", "process-stop", "emblem-important":
		return popup.IconFail
	case "emblem-ok", "object-select", "dialog-ok", "emblem-default":
		return popup.IconSuccess
	}
	return popup.IconNone
}
