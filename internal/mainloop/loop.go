package mainloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned when work is marshalled onto a loop that is not running.
var ErrStopped = errors.New("main loop stopped")

// Scheduler is the contract overlay code relies on for thread affinity.
// Do blocks until fn has run on the owner thread. AfterFunc runs fn on the
// owner thread after d unless the returned Timer is stopped first.
type Scheduler interface {
	Do(ctx context.Context, fn func(ctx context.Context)) error
	AfterFunc(d time.Duration, fn func(ctx context.Context)) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

type loopKey struct{}

// WithOwner marks ctx as executing on the owner thread of s.
// Schedulers pass marked contexts to every callback they run.
func WithOwner(ctx context.Context, s any) context.Context {
	return context.WithValue(ctx, loopKey{}, s)
}

// IsOwner reports whether ctx was produced by s for a callback running on its
// owner thread.
func IsOwner(ctx context.Context, s any) bool {
	if ctx == nil {
		return false
	}
	return ctx.Value(loopKey{}) == s
}

// Loop is a Scheduler backed by one goroutine draining a mailbox.
type Loop struct {
	logger *slog.Logger
	tasks  chan func(ctx context.Context)

	mu      sync.Mutex
	running bool
	base    context.Context
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a loop. Call Start before scheduling work.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger.With("component", "mainloop"),
		tasks:  make(chan func(ctx context.Context), 64),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the owner goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.base = WithOwner(context.Background(), l)
	go l.run()
}

// Stop terminates the loop and waits for the task in progress to finish.
// Queued work that has not started is dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	l.mu.Unlock()
	<-l.doneCh
}

func (l *Loop) run() {
	defer close(l.doneCh)
	for {
		select {
		case <-l.stopCh:
			return
		case fn := <-l.tasks:
			l.invoke(l.base, fn)
		}
	}
}

func (l *Loop) invoke(ctx context.Context, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in main loop task", "panic", r)
		}
	}()
	fn(ctx)
}

// Do runs fn on the loop and waits for it to return. Calls made from a
// callback already running on the loop execute inline.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context)) error {
	if IsOwner(ctx, l) {
		fn(ctx)
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	done := make(chan struct{})
	task := func(lctx context.Context) {
		defer close(done)
		fn(WithOwner(ctx, l))
	}

	select {
	case l.tasks <- task:
	case <-l.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-l.doneCh:
		// The loop may have finished the task right before exiting.
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Post queues fn without waiting. It reports false when the loop is stopped.
func (l *Loop) Post(fn func(ctx context.Context)) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopCh:
		return false
	}
}

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

type loopTimer struct {
	t     *time.Timer
	state atomic.Int32
}

func (lt *loopTimer) Stop() bool {
	if lt.state.CompareAndSwap(timerPending, timerStopped) {
		lt.t.Stop()
		return true
	}
	return false
}

// AfterFunc runs fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func(ctx context.Context)) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func(ctx context.Context) {
			if lt.state.CompareAndSwap(timerPending, timerFired) {
				fn(ctx)
			}
		})
	})
	return lt
}
