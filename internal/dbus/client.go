package dbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/veil/internal/overlay"
)

// Client calls a running presenter over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect opens a private session bus connection so signal matches don't
// leak into other users of the shared one.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{conn: conn, obj: conn.Object(VeilBusName, VeilPath)}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, out []any, args ...any) error {
	call := c.obj.CallWithContext(ctx, VeilInterface+"."+method, 0, args...)
	if call.Err != nil {
		return fromDBusError(method, call.Err)
	}
	if len(out) == 0 {
		return nil
	}
	if err := call.Store(out...); err != nil {
		return fmt.Errorf("%s: decoding reply: %w", method, err)
	}
	return nil
}

// Toast shows a toast and returns its ID.
func (c *Client) Toast(ctx context.Context, message, icon string, delay time.Duration) (string, error) {
	var id string
	err := c.call(ctx, "Toast", []any{&id}, message, icon, uint32(delay.Milliseconds()))
	return id, err
}

// Loading shows the loading indicator and returns its ID.
func (c *Client) Loading(ctx context.Context, message string) (string, error) {
	var id string
	err := c.call(ctx, "Loading", []any{&id}, message)
	return id, err
}

// HideLoading hides the loading indicator.
func (c *Client) HideLoading(ctx context.Context) (bool, error) {
	var hidden bool
	err := c.call(ctx, "HideLoading", []any{&hidden})
	return hidden, err
}

// Alert shows an alert and returns its ID.
func (c *Client) Alert(ctx context.Context, title, subtitle, confirm string, showCancel bool) (string, error) {
	var id string
	err := c.call(ctx, "Alert", []any{&id}, title, subtitle, confirm, showCancel)
	return id, err
}

// Dismiss dismisses an overlay.
func (c *Client) Dismiss(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := c.call(ctx, "Dismiss", []any{&ok}, id)
	return ok, err
}

// List returns the live overlays.
func (c *Client) List(ctx context.Context) ([]OverlayInfo, error) {
	var out []OverlayInfo
	err := c.call(ctx, "List", []any{&out})
	return out, err
}

// Outcome is how an overlay ended, as seen through the presenter's signals.
type Outcome struct {
	Reason overlay.DismissReason
	Action string // alert button key, empty unless one was pressed

	dismissed bool
}

// Wait blocks until the overlay with the given ID is dismissed. The match is
// installed before returning, so callers should call Wait right after the
// overlay was shown.
func (c *Client) Wait(ctx context.Context, id string) (Outcome, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(VeilPath),
		dbus.WithMatchInterface(VeilInterface),
		dbus.WithMatchArg(0, id),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return Outcome{}, fmt.Errorf("failed to add signal match: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(opts...) }()

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	var out Outcome
	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return out, errors.New("connection closed")
			}
			done, err := out.apply(sig, id)
			if err != nil {
				return out, err
			}
			if done {
				return out, nil
			}
		}
	}
}

// apply folds one signal into the outcome and reports whether it is
// complete. A button press dismisses the alert before the action is
// reported, so a dismissal by action waits for its ActionInvoked.
func (o *Outcome) apply(sig *dbus.Signal, id string) (bool, error) {
	if len(sig.Body) != 2 {
		return false, nil
	}
	if sigID, _ := sig.Body[0].(string); sigID != id {
		return false, nil
	}
	switch sig.Name {
	case VeilInterface + ".ActionInvoked":
		key, ok := sig.Body[1].(string)
		if !ok {
			return false, fmt.Errorf("malformed ActionInvoked signal")
		}
		o.Action = key
		return o.dismissed, nil
	case VeilInterface + ".Dismissed":
		reason, ok := sig.Body[1].(uint32)
		if !ok {
			return false, fmt.Errorf("malformed Dismissed signal")
		}
		o.Reason = overlay.DismissReason(reason)
		o.dismissed = true
		return o.Reason != overlay.ReasonAction || o.Action != "", nil
	}
	return false, nil
}

// fromDBusError turns a named D-Bus error back into the overlay sentinel it
// came from.
func fromDBusError(method string, err error) error {
	var (
		derr  dbus.Error
		pderr *dbus.Error
		name  string
	)
	switch {
	case errors.As(err, &derr):
		name = derr.Name
	case errors.As(err, &pderr):
		name = pderr.Name
	}
	var sentinel error
	switch name {
	case ErrorInvalidConfiguration:
		sentinel = overlay.ErrInvalidConfiguration
	case ErrorQueueOccupied:
		sentinel = overlay.ErrQueueOccupied
	case ErrorNoHost:
		sentinel = overlay.ErrNoHost
	default:
		return fmt.Errorf("%s: %w", method, err)
	}
	return &overlay.Error{Op: method, Err: fmt.Errorf("%w: %s", sentinel, err.Error())}
}
