package overlay

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/jmylchreest/veil/internal/mainloop"
)

// Transition is everything a strategy needs to animate one overlay.
type Transition struct {
	Surface Surface
	Config  Config
	Region  Rect // host bounds
	Rest    Rect // resting frame inside Region
}

// AnimationStrategy performs present and dismiss transitions. Each call
// invokes done exactly once on the owner thread; finished is false when the
// transition was interrupted by another one on the same surface.
type AnimationStrategy interface {
	Present(ctx context.Context, t Transition, done func(finished bool))
	Dismiss(ctx context.Context, t Transition, done func(finished bool))
}

// FrameAnimator moves a surface to a frame over a fixed duration. The
// controller uses it for drag snap-back when the strategy provides it.
type FrameAnimator interface {
	AnimateFrame(ctx context.Context, s Surface, to Rect, d time.Duration, done func(finished bool))
}

// InstantStrategy completes every transition immediately.
type InstantStrategy struct{}

func (InstantStrategy) Present(_ context.Context, t Transition, done func(bool)) {
	t.Surface.SetFrame(t.Rest)
	if f, ok := t.Surface.(Fader); ok {
		f.SetOpacity(1)
	}
	done(true)
}

func (InstantStrategy) Dismiss(_ context.Context, _ Transition, done func(bool)) {
	done(true)
}

// SpringOptions tunes SpringStrategy.
type SpringOptions struct {
	FPS       int
	Frequency float64 // angular frequency of the spring
	Damping   float64 // 1 is critically damped
}

// DefaultSpringOptions returns a critically damped spring at 60fps.
func DefaultSpringOptions() SpringOptions {
	return SpringOptions{FPS: 60, Frequency: 8, Damping: 1}
}

type springRun struct {
	timer mainloop.Timer
	done  func(bool)
}

// SpringStrategy animates overlays with a harmonica spring stepped by
// scheduler timers. Dialogs fade, sheets rise from the bottom edge and
// drawers slide in from their side.
type SpringStrategy struct {
	sched  mainloop.Scheduler
	spring harmonica.Spring
	frame  time.Duration
	limit  int

	// owner thread only
	runs map[Surface]*springRun
}

// NewSpringStrategy creates a strategy driven by sched.
func NewSpringStrategy(sched mainloop.Scheduler, opts SpringOptions) *SpringStrategy {
	def := DefaultSpringOptions()
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.Frequency <= 0 {
		opts.Frequency = def.Frequency
	}
	if opts.Damping <= 0 {
		opts.Damping = def.Damping
	}
	return &SpringStrategy{
		sched:  sched,
		spring: harmonica.NewSpring(harmonica.FPS(opts.FPS), opts.Frequency, opts.Damping),
		frame:  time.Second / time.Duration(opts.FPS),
		limit:  opts.FPS * 3,
		runs:   make(map[Surface]*springRun),
	}
}

// Present animates the surface into its resting frame.
func (s *SpringStrategy) Present(ctx context.Context, t Transition, done func(bool)) {
	s.interrupt(t.Surface)
	if t.Config.WithoutAnimation || t.Rest.Empty() {
		InstantStrategy{}.Present(ctx, t, done)
		return
	}

	sf := t.Surface
	rest := t.Rest
	sf.SetFrame(rest)

	switch t.Config.Style {
	case StyleBottomSheet:
		s.animate(sf, t.Region.MaxY(), rest.Y, func(y float64) { sf.SetFrame(rest.Offset(rest.X, y)) }, done)
	case StyleDrawer:
		s.animate(sf, offscreenX(t), rest.X, func(x float64) { sf.SetFrame(rest.Offset(x, rest.Y)) }, done)
	default:
		f, ok := sf.(Fader)
		if !ok {
			done(true)
			return
		}
		s.animate(sf, 0, 1, f.SetOpacity, done)
	}
}

// Dismiss animates the surface out of the region from wherever it is now.
func (s *SpringStrategy) Dismiss(ctx context.Context, t Transition, done func(bool)) {
	s.interrupt(t.Surface)
	sf := t.Surface
	cur := sf.Frame()
	if t.Config.WithoutAnimation || cur.Empty() {
		done(true)
		return
	}

	switch t.Config.Style {
	case StyleBottomSheet:
		s.animate(sf, cur.Y, t.Region.MaxY(), func(y float64) { sf.SetFrame(cur.Offset(cur.X, y)) }, done)
	case StyleDrawer:
		s.animate(sf, cur.X, offscreenX(t), func(x float64) { sf.SetFrame(cur.Offset(x, cur.Y)) }, done)
	default:
		f, ok := sf.(Fader)
		if !ok {
			done(true)
			return
		}
		s.animate(sf, 1, 0, f.SetOpacity, done)
	}
}

// AnimateFrame eases the surface to the given frame over d.
func (s *SpringStrategy) AnimateFrame(_ context.Context, sf Surface, to Rect, d time.Duration, done func(bool)) {
	s.interrupt(sf)
	from := sf.Frame()
	steps := int(d / s.frame)
	if steps < 1 {
		sf.SetFrame(to)
		done(true)
		return
	}

	r := &springRun{done: done}
	s.runs[sf] = r
	n := 0
	var step func(ctx context.Context)
	step = func(ctx context.Context) {
		if s.runs[sf] != r {
			return
		}
		n++
		if n >= steps {
			sf.SetFrame(to)
			delete(s.runs, sf)
			done(true)
			return
		}
		p := easeOutCubic(float64(n) / float64(steps))
		sf.SetFrame(Rect{
			X:      lerp(from.X, to.X, p),
			Y:      lerp(from.Y, to.Y, p),
			Width:  lerp(from.Width, to.Width, p),
			Height: lerp(from.Height, to.Height, p),
		})
		r.timer = s.sched.AfterFunc(s.frame, step)
	}
	r.timer = s.sched.AfterFunc(s.frame, step)
}

// Active reports whether sf has a transition in flight.
func (s *SpringStrategy) Active(sf Surface) bool {
	_, ok := s.runs[sf]
	return ok
}

func (s *SpringStrategy) animate(sf Surface, from, to float64, apply func(float64), done func(bool)) {
	r := &springRun{done: done}
	s.runs[sf] = r

	settle := math.Max(math.Abs(to-from)*0.002, 1e-3)
	pos, vel := from, 0.0
	frames := 0
	apply(pos)

	var step func(ctx context.Context)
	step = func(ctx context.Context) {
		if s.runs[sf] != r {
			return
		}
		frames++
		pos, vel = s.spring.Update(pos, vel, to)
		if (math.Abs(pos-to) < settle && math.Abs(vel) < settle) || frames >= s.limit {
			apply(to)
			delete(s.runs, sf)
			done(true)
			return
		}
		apply(pos)
		r.timer = s.sched.AfterFunc(s.frame, step)
	}
	r.timer = s.sched.AfterFunc(s.frame, step)
}

func (s *SpringStrategy) interrupt(sf Surface) {
	r, ok := s.runs[sf]
	if !ok {
		return
	}
	delete(s.runs, sf)
	if r.timer != nil {
		r.timer.Stop()
	}
	r.done(false)
}

func offscreenX(t Transition) float64 {
	if t.Config.Direction == DirectionRight {
		return t.Region.MaxX()
	}
	return t.Region.X - t.Rest.Width
}

func lerp(a, b, p float64) float64 { return a + (b-a)*p }

func easeOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}
