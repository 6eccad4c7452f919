package popup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/veil/internal/overlay"
)

// LoadingEntry is an overlay the caller must close explicitly.
type LoadingEntry struct {
	Config  overlay.Config
	Toast   ToastConfig
	Host    overlay.Host
	Overlay *overlay.Overlay
}

// LoadingQueue holds the overlays opened through the loading/toast path with
// auto-dismiss off. Only one may be active at a time.
type LoadingQueue struct {
	mu      sync.Mutex
	entries []*LoadingEntry
	logger  *slog.Logger
}

var (
	defaultQueue     *LoadingQueue
	defaultQueueOnce sync.Once
)

// DefaultLoadingQueue returns the process-wide queue.
func DefaultLoadingQueue() *LoadingQueue {
	defaultQueueOnce.Do(func() {
		defaultQueue = NewLoadingQueue(nil)
	})
	return defaultQueue
}

// NewLoadingQueue creates an independent queue.
func NewLoadingQueue(logger *slog.Logger) *LoadingQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadingQueue{logger: logger.With("component", "loading-queue")}
}

// Enqueue adds e unless an entry is already held.
func (q *LoadingQueue) Enqueue(e *LoadingEntry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) > 0 {
		q.logger.Info("only one loading overlay may be shown at a time")
		return false
	}
	q.entries = append(q.entries, e)
	return true
}

// Occupied reports whether an entry is held.
func (q *LoadingQueue) Occupied() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) > 0
}

// Len returns the number of entries.
func (q *LoadingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// First returns the oldest entry without removing it.
func (q *LoadingQueue) First() *LoadingEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0]
}

// DequeueFirst removes and returns the oldest entry, or nil.
func (q *LoadingQueue) DequeueFirst() *LoadingEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

// DequeueAndDismissFirst removes the oldest entry and dismisses its overlay.
// It is a no-op on an empty queue and reports whether an entry was removed.
func (q *LoadingQueue) DequeueAndDismissFirst(ctx context.Context) bool {
	e := q.DequeueFirst()
	if e == nil {
		return false
	}
	if e.Overlay != nil {
		e.Overlay.Dismiss(ctx, nil)
	}
	return true
}

// Remove drops the entry holding o, used when o was dismissed some other way.
func (q *LoadingQueue) Remove(o *overlay.Overlay) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.Overlay == o {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}
