package overlay

import (
	"context"
	"math"
	"time"
)

// Pointer follows one press until release and turns it into a tap or a drag
// on the overlay that was on top when the press began. Hosts feed it raw
// pointer positions; it is not safe for concurrent use.
type Pointer struct {
	// Slop is how far a press may wander and still count as a tap.
	Slop float64

	pressed bool
	moved   bool
	start   Point
	last    Point
	target  *Overlay
	tracker VelocityTracker
}

// Pressed reports whether a press is being followed.
func (p *Pointer) Pressed() bool { return p.pressed }

// Target returns the overlay the current press is routed to, if any.
func (p *Pointer) Target() *Overlay { return p.target }

// Press starts following a press at pt. target may be nil, in which case the
// press is followed but nothing receives it.
func (p *Pointer) Press(at time.Time, pt Point, target *Overlay) {
	p.Reset()
	p.pressed = true
	p.start, p.last = pt, pt
	p.target = target
	p.tracker.Add(at, pt)
}

// Move feeds a pointer position and reports whether it went to the target as
// part of a drag.
func (p *Pointer) Move(ctx context.Context, at time.Time, pt Point) bool {
	if !p.pressed || p.target == nil {
		return false
	}
	p.tracker.Add(at, pt)
	p.last = pt
	if !p.moved {
		if math.Hypot(pt.X-p.start.X, pt.Y-p.start.Y) <= p.Slop {
			return false
		}
		p.moved = true
		p.target.HandleDrag(ctx, DragSample{Phase: DragBegan, Location: p.start})
	}
	p.target.HandleDrag(ctx, DragSample{
		Phase:    DragChanged,
		Location: pt,
		Velocity: p.tracker.Velocity(),
	})
	return true
}

// Release ends the press at pt. A press that never left the slop is a tap.
// It reports whether the target consumed the release; a tap that passed
// through returns false.
func (p *Pointer) Release(ctx context.Context, at time.Time, pt Point) bool {
	if !p.pressed {
		return false
	}
	target, moved := p.target, p.moved
	p.tracker.Add(at, pt)
	velocity := p.tracker.Velocity()
	p.Reset()

	switch {
	case target == nil:
		return false
	case moved:
		target.HandleDrag(ctx, DragSample{Phase: DragEnded, Location: pt, Velocity: velocity})
		return true
	}
	return target.HandleTap(ctx, pt)
}

// Cancel abandons the press. A drag in progress is cancelled so the target
// snaps back.
func (p *Pointer) Cancel(ctx context.Context) {
	if p.pressed && p.moved && p.target != nil {
		p.target.HandleDrag(ctx, DragSample{Phase: DragCancelled, Location: p.last})
	}
	p.Reset()
}

// Reset forgets the current press without telling the target.
func (p *Pointer) Reset() {
	p.pressed, p.moved, p.target = false, false, nil
	p.tracker.Reset()
}
