package gtkhost

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/veil/internal/mainloop"
)

// Scheduler runs overlay work on the GLib main loop.
type Scheduler struct {
	owner   context.Context
	stopped atomic.Bool
}

var _ mainloop.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler for the default main context.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.owner = mainloop.WithOwner(context.Background(), s)
	return s
}

// Context returns a context marked as running on the main loop. GTK signal
// handlers use it so their calls into overlays run inline instead of waiting
// on an idle callback that can never run.
func (s *Scheduler) Context() context.Context { return s.owner }

// Stop makes later Do calls fail with mainloop.ErrStopped. Work already
// queued still runs.
func (s *Scheduler) Stop() { s.stopped.Store(true) }

// Do runs fn on the main loop and waits for it. If ctx is done before fn
// starts, fn is skipped.
func (s *Scheduler) Do(ctx context.Context, fn func(ctx context.Context)) error {
	if mainloop.IsOwner(ctx, s) {
		fn(ctx)
		return nil
	}
	if s.stopped.Load() {
		return mainloop.ErrStopped
	}

	const (
		pending int32 = iota
		running
		abandoned
	)
	var state atomic.Int32
	done := make(chan struct{})
	glib.IdleAdd(func() {
		if !state.CompareAndSwap(pending, running) {
			return
		}
		defer close(done)
		fn(mainloop.WithOwner(ctx, s))
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(pending, abandoned) {
			return ctx.Err()
		}
		<-done
		return nil
	}
}

// AfterFunc runs fn on the main loop once d has passed.
func (s *Scheduler) AfterFunc(d time.Duration, fn func(ctx context.Context)) mainloop.Timer {
	t := &timer{}
	glib.TimeoutAdd(uint(max(d.Milliseconds(), 0)), func() {
		if t.fired.CompareAndSwap(false, true) {
			fn(s.owner)
		}
	})
	return t
}

// timer leaves the GLib source in place when stopped; the callback becomes a
// no-op. Removing it would race with a source that already dispatched.
type timer struct {
	fired atomic.Bool
}

func (t *timer) Stop() bool {
	return t.fired.CompareAndSwap(false, true)
}
