package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// FileWatcher calls a function when a single file is written or replaced.
type FileWatcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	path     string
	debounce time.Duration
	onChange func()

	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	running bool
}

// NewFileWatcher creates a watcher for path. onChange runs on the watcher's
// goroutine.
func NewFileWatcher(path string, onChange func(), logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		logger:   logger.With("component", "watcher"),
		path:     path,
		debounce: DefaultDebounce,
		onChange: onChange,
	}
}

// SetDebounce sets how long to wait for events to settle.
func (fw *FileWatcher) SetDebounce(d time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.debounce = d
}

// Start begins watching. The parent directory is watched rather than the
// file so atomic replaces (write temp, rename) are seen.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(fw.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fw.watcher = w
	fw.done = make(chan struct{})
	fw.running = true
	go fw.watch(ctx, w, fw.done)

	fw.logger.Debug("watching file", "path", fw.path)
	return nil
}

func (fw *FileWatcher) watch(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	filename := filepath.Base(fw.path)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)

		case <-ctx.Done():
			_ = fw.Stop()
			return

		case <-done:
			return
		}
	}
}

func (fw *FileWatcher) schedule() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.running {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.mu.Lock()
	running := fw.running
	fw.mu.Unlock()
	if !running {
		return
	}
	fw.logger.Debug("file changed", "path", fw.path)
	if fw.onChange != nil {
		fw.onChange()
	}
}

// Stop stops watching. A pending change is dropped.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.running {
		return nil
	}
	fw.running = false
	if fw.timer != nil {
		fw.timer.Stop()
	}
	close(fw.done)
	return fw.watcher.Close()
}
