// Package popup is the request surface callers use: present, dismiss,
// toast, loading, hideLoading and alert. Every entry point marshals onto the
// owner thread before touching overlay or queue state.
package popup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jmylchreest/veil/internal/mainloop"
	"github.com/jmylchreest/veil/internal/overlay"
)

// Overlay kinds set by the presenter.
const (
	KindCustom  = "custom"
	KindToast   = "toast"
	KindLoading = "loading"
	KindAlert   = "alert"
)

// Announcer is told about every overlay that appears, e.g. to play a sound.
type Announcer interface {
	Announce(kind string)
}

// ActionFunc observes alert button presses.
type ActionFunc func(o *overlay.Overlay, a AlertAction)

// Defaults are presenter-wide settings applied to new overlays.
type Defaults struct {
	ToastPosition    overlay.ToastPosition
	ToastDelay       time.Duration
	VelocityEpsilon  float64
	WithoutAnimation bool // toasts and alerts show and hide instantly
}

// DefaultDefaults matches the overlay package defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		ToastPosition: overlay.ToastCenter,
		ToastDelay:    overlay.DefaultAutoDismissDelay,
	}
}

// Info is a snapshot of a live overlay.
type Info struct {
	ID        string
	Kind      string
	Title     string
	Style     overlay.Style
	State     overlay.State
	CreatedAt time.Time
}

type tracked struct {
	o     *overlay.Overlay
	title string
}

// Presenter implements the public request surface on top of a Controller.
type Presenter struct {
	ctrl     *overlay.Controller
	sched    mainloop.Scheduler
	host     overlay.Host
	builder  ContentBuilder
	queue    *LoadingQueue
	logger   *slog.Logger
	defaults Defaults

	announcer Announcer
	onDismiss []overlay.DismissFunc
	onAction  []ActionFunc

	// owner thread only
	active map[string]*tracked
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithQueue replaces the process-wide loading queue.
func WithQueue(q *LoadingQueue) Option {
	return func(p *Presenter) { p.queue = q }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) { p.logger = l }
}

// WithDefaults sets presenter-wide defaults.
func WithDefaults(d Defaults) Option {
	return func(p *Presenter) { p.defaults = d }
}

// WithAnnouncer sets the announcer.
func WithAnnouncer(a Announcer) Option {
	return func(p *Presenter) { p.announcer = a }
}

// OnDismissed registers an observer for every overlay the presenter opens.
func OnDismissed(fn overlay.DismissFunc) Option {
	return func(p *Presenter) { p.onDismiss = append(p.onDismiss, fn) }
}

// OnAction registers an observer for alert button presses.
func OnAction(fn ActionFunc) Option {
	return func(p *Presenter) { p.onAction = append(p.onAction, fn) }
}

// New creates a presenter. host is the default host ("the key window"); it
// may be nil, in which case requests without an explicit host fail with
// overlay.ErrNoHost.
func New(ctrl *overlay.Controller, host overlay.Host, builder ContentBuilder, opts ...Option) *Presenter {
	p := &Presenter{
		ctrl:     ctrl,
		sched:    ctrl.Scheduler(),
		host:     host,
		builder:  builder,
		defaults: DefaultDefaults(),
		active:   make(map[string]*tracked),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "popup")
	if p.queue == nil {
		p.queue = DefaultLoadingQueue()
	}
	return p
}

// Queue returns the loading queue in use.
func (p *Presenter) Queue() *LoadingQueue { return p.queue }

// SetDefaults replaces the defaults, e.g. after a config reload.
func (p *Presenter) SetDefaults(ctx context.Context, d Defaults) error {
	return p.sched.Do(ctx, func(context.Context) { p.defaults = d })
}

// Subscribe adds observers after construction, for collaborators that need
// the presenter to exist first. Either function may be nil.
func (p *Presenter) Subscribe(ctx context.Context, onDismiss overlay.DismissFunc, onAction ActionFunc) error {
	return p.sched.Do(ctx, func(context.Context) {
		if onDismiss != nil {
			p.onDismiss = append(p.onDismiss, onDismiss)
		}
		if onAction != nil {
			p.onAction = append(p.onAction, onAction)
		}
	})
}

// Present shows custom content. A nil host means the default host.
func (p *Presenter) Present(ctx context.Context, host overlay.Host, cfg overlay.Config, provider overlay.ContentProvider) (*overlay.Overlay, error) {
	var (
		o   *overlay.Overlay
		err error
	)
	if derr := p.sched.Do(ctx, func(ctx context.Context) {
		if host == nil {
			host = p.host
		}
		if cfg.VelocityEpsilon == 0 {
			cfg.VelocityEpsilon = p.defaults.VelocityEpsilon
		}
		o, err = p.present(ctx, host, cfg, provider, KindCustom, "")
	}); derr != nil {
		return nil, &overlay.Error{Op: "present", Err: derr}
	}
	return o, err
}

// Dismiss dismisses the overlay with the given ID. Unknown or already
// dismissed IDs are a no-op.
func (p *Presenter) Dismiss(ctx context.Context, id string) bool {
	var started bool
	_ = p.sched.Do(ctx, func(ctx context.Context) {
		t, ok := p.active[id]
		if !ok {
			return
		}
		started = t.o.Dismiss(ctx, nil)
	})
	return started
}

// DismissAll dismisses every live overlay.
func (p *Presenter) DismissAll(ctx context.Context) int {
	var n int
	_ = p.sched.Do(ctx, func(ctx context.Context) {
		for _, t := range p.snapshot() {
			if t.o.Dismiss(ctx, nil) {
				n++
			}
		}
	})
	return n
}

// Lookup returns the live overlay with the given ID.
func (p *Presenter) Lookup(ctx context.Context, id string) (*overlay.Overlay, bool) {
	var (
		o  *overlay.Overlay
		ok bool
	)
	_ = p.sched.Do(ctx, func(context.Context) {
		var t *tracked
		if t, ok = p.active[id]; ok {
			o = t.o
		}
	})
	return o, ok
}

// Active lists live overlays, oldest first.
func (p *Presenter) Active(ctx context.Context) []Info {
	var out []Info
	_ = p.sched.Do(ctx, func(context.Context) {
		for _, t := range p.snapshot() {
			out = append(out, Info{
				ID:        t.o.ID(),
				Kind:      t.o.Kind(),
				Title:     t.title,
				Style:     t.o.Config().Style,
				State:     t.o.State(),
				CreatedAt: t.o.CreatedAt(),
			})
		}
	})
	return out
}

// Toast shows a short message. It is refused while a loading overlay is up.
func (p *Presenter) Toast(ctx context.Context, message string, opts ...ToastOption) (*overlay.Overlay, error) {
	return p.showToast(ctx, "toast", KindToast, message, opts)
}

// Loading shows a spinner that stays until HideLoading. The explicit host is
// ignored when toasts go to the dynamic region.
func (p *Presenter) Loading(ctx context.Context, message string, host overlay.Host) (*overlay.Overlay, error) {
	opts := loadingOptions(message)
	if host != nil {
		opts = append(opts, WithHost(host))
	}
	return p.showToast(ctx, "loading", KindLoading, message, opts)
}

// HideLoading dismisses the oldest loading overlay. It is a no-op when none
// is active.
func (p *Presenter) HideLoading(ctx context.Context) bool {
	var hidden bool
	if err := p.sched.Do(ctx, func(ctx context.Context) {
		hidden = p.queue.DequeueAndDismissFirst(ctx)
	}); err != nil {
		p.logger.Warn("hide loading not delivered", "error", err)
	}
	return hidden
}

// Alert shows a dialog with up to two buttons. Pressing a button dismisses
// the alert and then runs the button's handler.
func (p *Presenter) Alert(ctx context.Context, opts ...AlertOption) (*overlay.Overlay, error) {
	ac := AlertConfig{ShowCancel: true}
	if p.defaults.WithoutAnimation {
		opts = append([]AlertOption{AlertWithoutAnimation()}, opts...)
	}
	for _, opt := range opts {
		opt(&ac)
	}
	if ac.Title == "" && ac.Subtitle == "" {
		return nil, &overlay.Error{
			Op:  "alert",
			Err: fmt.Errorf("%w: alert needs a title or a subtitle", overlay.ErrInvalidConfiguration),
		}
	}
	if ac.Cancel == nil {
		ac.Cancel = DefaultCancelAction()
	}

	cfg := overlay.DialogConfig()
	cfg.UserInteraction = true
	cfg.AutoDismiss = false
	cfg.Dismissible = false
	cfg.WithoutAnimation = ac.WithoutAnimation

	provider := overlay.ContentFunc(func(o *overlay.Overlay) overlay.Surface {
		return p.builder.BuildAlert(ac, func(ctx context.Context, a AlertAction) {
			p.pressed(ctx, o, a)
		})
	})

	var (
		o   *overlay.Overlay
		err error
	)
	if derr := p.sched.Do(ctx, func(ctx context.Context) {
		title := ac.Title
		if title == "" {
			title = ac.Subtitle
		}
		o, err = p.present(ctx, p.host, cfg, provider, KindAlert, title)
	}); derr != nil {
		return nil, &overlay.Error{Op: "alert", Err: derr}
	}
	return o, err
}

func (p *Presenter) pressed(ctx context.Context, o *overlay.Overlay, a AlertAction) {
	if !o.DismissWithReason(ctx, overlay.ReasonAction, nil) {
		return
	}
	p.logger.Debug("alert action", "id", o.ID(), "action", a.Key)
	for _, fn := range p.onAction {
		fn(o, a)
	}
	if a.Handler != nil {
		a.Handler()
	}
}

func (p *Presenter) showToast(ctx context.Context, op, kind, message string, opts []ToastOption) (*overlay.Overlay, error) {
	var (
		o   *overlay.Overlay
		err error
	)
	if derr := p.sched.Do(ctx, func(ctx context.Context) {
		req := toastRequest{
			cfg:   ToastBaseConfig(),
			toast: DefaultToastConfig(),
			kind:  kind,
		}
		req.toast.Title = message
		for _, opt := range append(p.toastDefaults(), opts...) {
			opt(&req)
		}
		o, err = p.toast(ctx, op, req)
	}); derr != nil {
		return nil, &overlay.Error{Op: op, Err: derr}
	}
	return o, err
}

func (p *Presenter) toast(ctx context.Context, op string, req toastRequest) (*overlay.Overlay, error) {
	if req.toast.Title == "" && req.toast.Icon == IconNone {
		return nil, &overlay.Error{
			Op:  op,
			Err: fmt.Errorf("%w: toast needs a title or an icon", overlay.ErrInvalidConfiguration),
		}
	}
	if p.queue.Occupied() {
		p.logger.Info("refusing toast while a loading overlay is active", "kind", req.kind)
		return nil, &overlay.Error{Op: op, Err: overlay.ErrQueueOccupied}
	}

	host := req.host
	if host == nil || req.cfg.ToastPosition == overlay.ToastDynamicRegion {
		host = p.host
	}
	tc := req.toast
	provider := overlay.ContentFunc(func(*overlay.Overlay) overlay.Surface {
		return p.builder.BuildToast(tc)
	})

	o, err := p.present(ctx, host, req.cfg, provider, req.kind, tc.Title)
	if err != nil {
		return nil, err
	}
	if !req.cfg.AutoDismiss {
		entry := &LoadingEntry{Config: req.cfg, Toast: tc, Host: host, Overlay: o}
		if !p.queue.Enqueue(entry) {
			o.Dismiss(ctx, nil)
			return nil, &overlay.Error{Op: op, Err: overlay.ErrQueueOccupied}
		}
	}
	return o, nil
}

// toastDefaults are applied before the caller's options.
func (p *Presenter) toastDefaults() []ToastOption {
	opts := []ToastOption{WithPosition(p.defaults.ToastPosition)}
	if p.defaults.ToastDelay > 0 {
		opts = append(opts, WithDelay(p.defaults.ToastDelay))
	}
	if p.defaults.WithoutAnimation {
		opts = append(opts, WithoutAnimation())
	}
	return opts
}

// present runs on the owner thread.
func (p *Presenter) present(ctx context.Context, host overlay.Host, cfg overlay.Config, provider overlay.ContentProvider, kind, title string) (*overlay.Overlay, error) {
	o, err := p.ctrl.Present(ctx, host, cfg, provider,
		overlay.WithKind(kind),
		overlay.OnDismiss(p.forget),
	)
	if err != nil {
		p.logger.Debug("present failed", "kind", kind, "error", err)
		return nil, err
	}
	if o.State() != overlay.StateDismissed {
		p.active[o.ID()] = &tracked{o: o, title: title}
	}
	if p.announcer != nil {
		p.announcer.Announce(kind)
	}
	p.logger.Debug("overlay shown", "id", o.ID(), "kind", kind)
	return o, nil
}

func (p *Presenter) forget(o *overlay.Overlay, reason overlay.DismissReason) {
	delete(p.active, o.ID())
	p.queue.Remove(o)
	for _, fn := range p.onDismiss {
		fn(o, reason)
	}
}

func (p *Presenter) snapshot() []*tracked {
	out := make([]*tracked, 0, len(p.active))
	for _, t := range p.active {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].o.ID() < out[j].o.ID()
	})
	return out
}
