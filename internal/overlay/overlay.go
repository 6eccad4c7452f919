package overlay

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/veil/internal/mainloop"
)

// State is where an overlay is in its lifecycle.
type State int

const (
	StatePresenting State = iota
	StatePresented
	StateDismissing
	StateDismissed
)

func (s State) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StatePresented:
		return "presented"
	case StateDismissing:
		return "dismissing"
	case StateDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// DismissReason records which path dismissed an overlay.
type DismissReason int

const (
	ReasonProgrammatic DismissReason = iota
	ReasonTap
	ReasonDrag
	ReasonExpired
	ReasonAction
)

func (r DismissReason) String() string {
	switch r {
	case ReasonProgrammatic:
		return "programmatic"
	case ReasonTap:
		return "tap"
	case ReasonDrag:
		return "drag"
	case ReasonExpired:
		return "expired"
	case ReasonAction:
		return "action"
	default:
		return "unknown"
	}
}

// DismissFunc observes a completed dismissal.
type DismissFunc func(o *Overlay, reason DismissReason)

// Controller presents overlays and owns their lifecycle. All overlay state is
// touched only on the scheduler's owner thread.
type Controller struct {
	sched    mainloop.Scheduler
	strategy AnimationStrategy
	logger   *slog.Logger
	now      func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithStrategy sets the default animation strategy.
func WithStrategy(s AnimationStrategy) ControllerOption {
	return func(c *Controller) { c.strategy = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller. Without WithStrategy it animates with a
// SpringStrategy on sched.
func NewController(sched mainloop.Scheduler, opts ...ControllerOption) *Controller {
	c := &Controller{sched: sched, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "overlay")
	if c.strategy == nil {
		c.strategy = NewSpringStrategy(sched, DefaultSpringOptions())
	}
	return c
}

// Scheduler returns the owner-thread scheduler.
func (c *Controller) Scheduler() mainloop.Scheduler { return c.sched }

// PresentOption configures a single present call.
type PresentOption func(*presentOptions)

type presentOptions struct {
	strategy AnimationStrategy
	kind     string
	observer []DismissFunc
}

// WithAnimation overrides the strategy for one overlay.
func WithAnimation(s AnimationStrategy) PresentOption {
	return func(p *presentOptions) { p.strategy = s }
}

// WithKind labels the overlay ("toast", "alert", ...) for hosts and audio.
func WithKind(kind string) PresentOption {
	return func(p *presentOptions) { p.kind = kind }
}

// OnDismiss registers an observer before the overlay becomes visible.
func OnDismiss(fn DismissFunc) PresentOption {
	return func(p *presentOptions) { p.observer = append(p.observer, fn) }
}

// Present builds content with provider, attaches it to host and runs the
// present transition. The auto-dismiss timer is armed once the transition
// completes.
func (c *Controller) Present(ctx context.Context, host Host, cfg Config, provider ContentProvider, opts ...PresentOption) (*Overlay, error) {
	var (
		o   *Overlay
		err error
	)
	if derr := c.sched.Do(ctx, func(ctx context.Context) {
		o, err = c.present(ctx, host, cfg, provider, opts)
	}); derr != nil {
		return nil, &Error{Op: "present", Err: derr}
	}
	return o, err
}

// Push presents an overlay on top of a stack.
func (c *Controller) Push(ctx context.Context, stack *Stack, cfg Config, provider ContentProvider, opts ...PresentOption) (*Overlay, error) {
	if stack == nil {
		return nil, &Error{Op: "push", Err: ErrNoHost}
	}
	return c.Present(ctx, stack, cfg, provider, opts...)
}

func (c *Controller) present(ctx context.Context, host Host, cfg Config, provider ContentProvider, opts []PresentOption) (*Overlay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Op: "present", Err: err}
	}
	if host == nil || host.Bounds().Empty() {
		return nil, &Error{Op: "present", Err: ErrNoHost}
	}

	var po presentOptions
	for _, opt := range opts {
		opt(&po)
	}
	strategy := po.strategy
	if strategy == nil {
		strategy = c.strategy
	}

	now := c.now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, &Error{Op: "present", Err: err}
	}

	o := &Overlay{
		id:        id.String(),
		ctrl:      c,
		cfg:       cfg,
		kind:      po.kind,
		host:      host,
		strategy:  strategy,
		provider:  provider,
		region:    host.Bounds(),
		createdAt: now,
		state:     StatePresenting,
		observers: po.observer,
	}
	o.logger = c.logger.With("id", o.id)

	var sf Surface
	if provider != nil {
		sf = provider.ProduceSurface(o)
	}
	if sf == nil {
		sf = NewBox(Rect{})
	}
	o.surface = sf
	o.rest = Place(cfg, o.region, sf.Frame())
	sf.SetFrame(o.rest)

	host.Attach(o)
	o.logger.Debug("presenting overlay", "kind", o.kind, "style", cfg.Style, "frame", o.rest)

	strategy.Present(ctx, o.transition(), func(finished bool) {
		o.presented(finished)
	})
	return o, nil
}

// Overlay is one presented surface and its lifecycle. Accessors are safe on
// the owner thread; other goroutines go through the controller's scheduler.
type Overlay struct {
	id        string
	ctrl      *Controller
	logger    *slog.Logger
	cfg       Config
	kind      string
	host      Host
	surface   Surface
	strategy  AnimationStrategy
	provider  ContentProvider
	region    Rect
	rest      Rect
	createdAt time.Time

	state     State
	reason    DismissReason
	bridge    Bridge
	timer     mainloop.Timer
	snapping  bool
	pending   []func(bool)
	observers []DismissFunc
}

func (o *Overlay) ID() string { return o.id }
func (o *Overlay) Kind() string { return o.kind }
func (o *Overlay) Config() Config { return o.cfg }
func (o *Overlay) Surface() Surface { return o.surface }
func (o *Overlay) Host() Host { return o.host }
func (o *Overlay) Strategy() AnimationStrategy { return o.strategy }
func (o *Overlay) Provider() ContentProvider { return o.provider }
func (o *Overlay) Region() Rect { return o.region }
func (o *Overlay) Rest() Rect { return o.rest }
func (o *Overlay) CreatedAt() time.Time { return o.createdAt }
func (o *Overlay) State() State { return o.state }
func (o *Overlay) Reason() DismissReason { return o.reason }
func (o *Overlay) DragState() BridgeState { return o.bridge.State() }

// Frame returns the surface's current frame.
func (o *Overlay) Frame() Rect { return o.surface.Frame() }

// Live reports whether the overlay has not started dismissing.
func (o *Overlay) Live() bool {
	return o.state == StatePresenting || o.state == StatePresented
}

// OnDismissed registers an observer run after the surface is detached.
func (o *Overlay) OnDismissed(fn DismissFunc) {
	o.observers = append(o.observers, fn)
}

// Dismiss dismisses programmatically. See DismissWithReason.
func (o *Overlay) Dismiss(ctx context.Context, completion func(finished bool)) bool {
	return o.DismissWithReason(ctx, ReasonProgrammatic, completion)
}

// DismissWithReason starts the dismiss transition and reports whether this
// call started it. Dismissing an already dismissed overlay is a no-op and
// completion is not invoked. While a dismissal is in flight, completion is
// queued and runs when it finishes.
func (o *Overlay) DismissWithReason(ctx context.Context, reason DismissReason, completion func(finished bool)) bool {
	var started bool
	if err := o.ctrl.sched.Do(ctx, func(ctx context.Context) {
		started = o.dismiss(ctx, reason, completion)
	}); err != nil {
		o.logger.Warn("dismiss not delivered", "error", err)
	}
	return started
}

// HandleTap routes a tap from the host. Taps inside the content go to
// Interactive content; taps outside run the background-tap path. An overlay
// without user interaction lets every tap through. It reports whether the
// overlay consumed the tap.
func (o *Overlay) HandleTap(ctx context.Context, p Point) bool {
	var consumed bool
	_ = o.ctrl.sched.Do(ctx, func(ctx context.Context) {
		consumed = o.handleTap(ctx, p)
	})
	return consumed
}

// HandleDrag routes one drag sample from the host through the bridge and
// reports whether the overlay is tracking the gesture.
func (o *Overlay) HandleDrag(ctx context.Context, s DragSample) bool {
	var consumed bool
	_ = o.ctrl.sched.Do(ctx, func(ctx context.Context) {
		consumed = o.handleDrag(ctx, s)
	})
	return consumed
}

func (o *Overlay) handleTap(ctx context.Context, p Point) bool {
	if !o.Live() {
		return false
	}
	if !o.cfg.UserInteraction {
		return false
	}
	if o.surface.Frame().Contains(p) {
		if in, ok := o.surface.(Interactive); ok {
			in.HandleTap(ctx, p)
		}
		return true
	}
	o.backgroundTap(ctx)
	return true
}

// backgroundTap dismisses only dismissible overlays.
func (o *Overlay) backgroundTap(ctx context.Context) {
	if !o.cfg.Dismissible {
		return
	}
	o.dismiss(ctx, ReasonTap, nil)
}

func (o *Overlay) handleDrag(ctx context.Context, s DragSample) bool {
	if o.state != StatePresented {
		return false
	}
	if s.Phase == DragBegan {
		if !ShouldBegin(GestureDrag, s.Location, o.surface.Frame(), o.cfg) {
			return false
		}
		o.stopSnapBack(ctx)
	} else if o.bridge.State() != BridgeTracking {
		return false
	}

	out := o.bridge.Handle(o.cfg, s, o.surface.Frame())
	switch out.Action {
	case ActionFollow:
		o.surface.SetFrame(out.Frame)
	case ActionCommit:
		o.surface.SetFrame(out.Frame)
		o.logger.Debug("drag committed dismissal", "velocity", s.Velocity)
		o.dismiss(ctx, ReasonDrag, nil)
	case ActionSnapBack:
		o.surface.SetFrame(out.Frame)
		o.snapBack(ctx, out.Restore)
	case ActionTap:
		o.backgroundTap(ctx)
	}
	return true
}

func (o *Overlay) snapBack(ctx context.Context, to Rect) {
	fa, ok := o.strategy.(FrameAnimator)
	if !ok {
		o.surface.SetFrame(to)
		return
	}
	o.snapping = true
	fa.AnimateFrame(ctx, o.surface, to, SnapBackDuration, func(bool) {
		o.snapping = false
	})
}

// stopSnapBack ends an in-flight snap-back at its target so a new gesture
// always begins from the resting frame.
func (o *Overlay) stopSnapBack(ctx context.Context) {
	if !o.snapping {
		return
	}
	if fa, ok := o.strategy.(FrameAnimator); ok {
		fa.AnimateFrame(ctx, o.surface, o.rest, 0, func(bool) {})
	}
	o.surface.SetFrame(o.rest)
	o.snapping = false
}

func (o *Overlay) presented(finished bool) {
	if o.state != StatePresenting {
		return
	}
	o.state = StatePresented
	o.logger.Debug("overlay presented", "finished", finished)
	o.armAutoDismiss()
}

func (o *Overlay) armAutoDismiss() {
	if !o.cfg.AutoDismiss {
		return
	}
	o.timer = o.ctrl.sched.AfterFunc(o.cfg.AutoDismissDelay, func(ctx context.Context) {
		o.timer = nil
		if !o.Live() {
			o.logger.Debug("auto-dismiss fired after teardown")
			return
		}
		o.dismiss(ctx, ReasonExpired, nil)
	})
}

func (o *Overlay) stopTimer() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Overlay) dismiss(ctx context.Context, reason DismissReason, completion func(bool)) bool {
	switch o.state {
	case StateDismissed:
		o.logger.Debug("ignoring redundant dismiss")
		return false
	case StateDismissing:
		if completion != nil {
			o.pending = append(o.pending, completion)
		}
		return false
	}

	if st, ok := o.host.(*Stack); ok {
		st.dismissAbove(ctx, o)
	}

	o.stopTimer()
	o.state = StateDismissing
	o.reason = reason
	o.bridge.Reset()
	o.snapping = false
	if completion != nil {
		o.pending = append(o.pending, completion)
	}
	o.logger.Debug("dismissing overlay", "reason", reason)

	o.strategy.Dismiss(ctx, o.transition(), func(finished bool) {
		o.finish(finished)
	})
	return true
}

func (o *Overlay) finish(finished bool) {
	if o.state == StateDismissed {
		return
	}
	o.state = StateDismissed
	o.host.Detach(o)

	pending := o.pending
	o.pending = nil
	for _, fn := range pending {
		fn(finished)
	}
	for _, fn := range o.observers {
		fn(o, o.reason)
	}
	o.logger.Debug("overlay dismissed", "reason", o.reason, "finished", finished)
}

func (o *Overlay) transition() Transition {
	return Transition{
		Surface: o.surface,
		Config:  o.cfg,
		Region:  o.region,
		Rest:    o.rest,
	}
}
