package overlay

import (
	"context"

	"github.com/jmylchreest/veil/internal/mainloop"
)

// Stack hosts overlays modally: each push covers the ones below it, only
// the top live overlay receives input, and dismissing an overlay first
// dismisses everything pushed after it.
type Stack struct {
	sched   mainloop.Scheduler
	host    Host
	entries []*Overlay
}

// NewStack wraps host. Input routed through the stack is marshalled onto
// sched.
func NewStack(sched mainloop.Scheduler, host Host) *Stack {
	return &Stack{sched: sched, host: host}
}

func (s *Stack) Bounds() Rect {
	if s.host == nil {
		return Rect{}
	}
	return s.host.Bounds()
}

func (s *Stack) Attach(o *Overlay) {
	s.entries = append(s.entries, o)
	s.host.Attach(o)
}

func (s *Stack) Detach(o *Overlay) {
	for i, e := range s.entries {
		if e == o {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.host.Detach(o)
}

// Len returns the number of attached overlays, including ones still
// animating out.
func (s *Stack) Len() int { return len(s.entries) }

// Overlays returns the attached overlays, bottom first.
func (s *Stack) Overlays() []*Overlay {
	out := make([]*Overlay, len(s.entries))
	copy(out, s.entries)
	return out
}

// Top returns the topmost overlay that has not started dismissing.
func (s *Stack) Top() *Overlay {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Live() {
			return s.entries[i]
		}
	}
	return nil
}

// HandleTap routes a tap to the top overlay.
func (s *Stack) HandleTap(ctx context.Context, p Point) bool {
	var consumed bool
	_ = s.sched.Do(ctx, func(ctx context.Context) {
		if top := s.Top(); top != nil {
			consumed = top.handleTap(ctx, p)
		}
	})
	return consumed
}

// HandleDrag routes a drag sample to the top overlay.
func (s *Stack) HandleDrag(ctx context.Context, sample DragSample) bool {
	var consumed bool
	_ = s.sched.Do(ctx, func(ctx context.Context) {
		if top := s.Top(); top != nil {
			consumed = top.handleDrag(ctx, sample)
		}
	})
	return consumed
}

// dismissAbove dismisses overlays pushed after o, newest first.
func (s *Stack) dismissAbove(ctx context.Context, o *Overlay) {
	idx := -1
	for i, e := range s.entries {
		if e == o {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	above := make([]*Overlay, len(s.entries)-idx-1)
	copy(above, s.entries[idx+1:])
	for i := len(above) - 1; i >= 0; i-- {
		above[i].dismiss(ctx, ReasonProgrammatic, nil)
	}
}
