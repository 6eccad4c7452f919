package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

const (
	// VeilInterface is the presenter interface name.
	VeilInterface = "io.github.jmylchreest.Veil1"
	// VeilPath is the presenter object path.
	VeilPath = "/io/github/jmylchreest/Veil"
	// VeilBusName is the bus name to claim.
	VeilBusName = "io.github.jmylchreest.Veil"
)

// Error names returned to callers.
const (
	ErrorInvalidConfiguration = VeilInterface + ".Error.InvalidConfiguration"
	ErrorQueueOccupied        = VeilInterface + ".Error.QueueOccupied"
	ErrorNoHost               = VeilInterface + ".Error.NoHost"
	ErrorFailed               = VeilInterface + ".Error.Failed"
)

// callTimeout bounds how long a method call waits for the owner loop.
const callTimeout = 5 * time.Second

// Presenter is the request surface the server forwards to.
type Presenter interface {
	Toast(ctx context.Context, message string, opts ...popup.ToastOption) (*overlay.Overlay, error)
	Loading(ctx context.Context, message string, host overlay.Host) (*overlay.Overlay, error)
	HideLoading(ctx context.Context) bool
	Alert(ctx context.Context, opts ...popup.AlertOption) (*overlay.Overlay, error)
	Dismiss(ctx context.Context, id string) bool
	Active(ctx context.Context) []popup.Info
}

// Server implements the io.github.jmylchreest.Veil1 D-Bus interface.
type Server struct {
	conn      *dbus.Conn
	logger    *slog.Logger
	presenter Presenter

	mu      sync.RWMutex
	ctx     context.Context
	running bool
}

// NewServer creates a server forwarding to p.
func NewServer(p Presenter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		presenter: p,
		logger:    logger.With("component", "dbus"),
		ctx:       context.Background(),
	}
}

// Start connects to the session bus and exports the presenter. Method calls
// use ctx as their parent.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if err := s.export(conn); err != nil {
		return err
	}

	reply, err := conn.RequestName(VeilBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", VeilBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.ctx = ctx
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus presenter started", "interface", VeilInterface, "path", VeilPath)
	return nil
}

func (s *Server) export(conn *dbus.Conn) error {
	if err := conn.Export(s, VeilPath, VeilInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}
	node := &introspect.Node{
		Name: VeilPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    VeilInterface,
				Methods: veilMethods(),
				Signals: veilSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), VeilPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(VeilBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}
	s.logger.Info("D-Bus presenter stopped")
	return nil
}

// Serve starts the server and blocks until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

func (s *Server) callContext() (context.Context, context.CancelFunc) {
	s.mu.RLock()
	parent := s.ctx
	s.mu.RUnlock()
	return context.WithTimeout(parent, callTimeout)
}

// Toast shows a toast. An empty icon shows none; a zero delay uses the
// configured default.
// D-Bus method: Toast(ssu) -> s
func (s *Server) Toast(message, icon string, delayMs uint32) (string, *dbus.Error) {
	ctx, cancel := s.callContext()
	defer cancel()

	ic, err := ParseIcon(icon)
	if err != nil {
		return "", toDBusError(err)
	}
	opts := []popup.ToastOption{popup.WithIcon(ic)}
	if delayMs > 0 {
		opts = append(opts, popup.WithDelay(time.Duration(delayMs)*time.Millisecond))
	}

	s.logger.Debug("Toast called", "message", message, "icon", icon, "delay_ms", delayMs)
	o, err := s.presenter.Toast(ctx, message, opts...)
	if err != nil {
		return "", toDBusError(err)
	}
	return o.ID(), nil
}

// Loading shows the loading indicator.
// D-Bus method: Loading(s) -> s
func (s *Server) Loading(message string) (string, *dbus.Error) {
	ctx, cancel := s.callContext()
	defer cancel()

	s.logger.Debug("Loading called", "message", message)
	o, err := s.presenter.Loading(ctx, message, nil)
	if err != nil {
		return "", toDBusError(err)
	}
	return o.ID(), nil
}

// HideLoading hides the loading indicator.
// D-Bus method: HideLoading() -> b
func (s *Server) HideLoading() (bool, *dbus.Error) {
	ctx, cancel := s.callContext()
	defer cancel()
	return s.presenter.HideLoading(ctx), nil
}

// Alert shows an alert. An empty confirm label leaves out the confirm
// button.
// D-Bus method: Alert(sssb) -> s
func (s *Server) Alert(title, subtitle, confirm string, showCancel bool) (string, *dbus.Error) {
	ctx, cancel := s.callContext()
	defer cancel()

	opts := []popup.AlertOption{popup.WithTitle(title), popup.WithSubtitle(subtitle)}
	if confirm != "" {
		opts = append(opts, popup.WithConfirm(confirm, nil))
	}
	if !showCancel {
		opts = append(opts, popup.WithoutCancel())
	}

	s.logger.Debug("Alert called", "title", title, "confirm", confirm)
	o, err := s.presenter.Alert(ctx, opts...)
	if err != nil {
		return "", toDBusError(err)
	}
	return o.ID(), nil
}

// Dismiss dismisses an overlay by ID.
// D-Bus method: Dismiss(s) -> b
func (s *Server) Dismiss(id string) (bool, *dbus.Error) {
	ctx, cancel := s.callContext()
	defer cancel()
	return s.presenter.Dismiss(ctx, id), nil
}

// List returns the live overlays.
// D-Bus method: List() -> a(sssx)
func (s *Server) List() ([]OverlayInfo, *dbus.Error) {
	ctx, cancel := s.callContext()
	defer cancel()

	active := s.presenter.Active(ctx)
	out := make([]OverlayInfo, 0, len(active))
	for _, info := range active {
		out = append(out, OverlayInfo{
			ID:      info.ID,
			Kind:    info.Kind,
			Title:   info.Title,
			Created: info.CreatedAt.UnixMilli(),
		})
	}
	return out, nil
}

// ParseIcon maps an icon name to a toast icon.
func ParseIcon(name string) (popup.Icon, error) {
	switch icon := popup.Icon(name); icon {
	case popup.IconNone, popup.IconSuccess, popup.IconFail, popup.IconLoading:
		return icon, nil
	}
	return popup.IconNone, fmt.Errorf("%w: unknown icon %q", overlay.ErrInvalidConfiguration, name)
}

func toDBusError(err error) *dbus.Error {
	name := ErrorFailed
	switch {
	case errors.Is(err, overlay.ErrInvalidConfiguration):
		name = ErrorInvalidConfiguration
	case errors.Is(err, overlay.ErrQueueOccupied):
		name = ErrorQueueOccupied
	case errors.Is(err, overlay.ErrNoHost):
		name = ErrorNoHost
	}
	return dbus.NewError(name, []any{err.Error()})
}

// veilMethods returns the D-Bus method introspection data.
func veilMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Toast",
			Args: []introspect.Arg{
				{Name: "message", Type: "s", Direction: "in"},
				{Name: "icon", Type: "s", Direction: "in"},
				{Name: "delay_ms", Type: "u", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Loading",
			Args: []introspect.Arg{
				{Name: "message", Type: "s", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "HideLoading",
			Args: []introspect.Arg{
				{Name: "hidden", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "Alert",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "subtitle", Type: "s", Direction: "in"},
				{Name: "confirm", Type: "s", Direction: "in"},
				{Name: "show_cancel", Type: "b", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Dismiss",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
				{Name: "dismissed", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "List",
			Args: []introspect.Arg{
				{Name: "overlays", Type: "a(sssx)", Direction: "out"},
			},
		},
	}
}

// veilSignals returns the D-Bus signal introspection data.
func veilSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Dismissed",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
