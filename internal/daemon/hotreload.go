package daemon

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/veil/internal/config"
)

// ConfigWatcher reloads the config file when it changes. A file that fails
// to load or validate is reported and the previous config stays current.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	path   string
	file   *FileWatcher

	current *config.Config

	onReload func(cfg *config.Config)
	onError  func(err error)
}

// NewConfigWatcher creates a watcher for the config at path; empty means the
// default location.
func NewConfigWatcher(path string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = config.ConfigPath()
	}
	w := &ConfigWatcher{
		logger: logger.With("component", "hotreload"),
		path:   path,
	}
	w.file = NewFileWatcher(path, w.reload, logger)
	return w
}

// SetReloadCallback sets the callback invoked with each valid new config.
func (w *ConfigWatcher) SetReloadCallback(callback func(cfg *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed file is rejected.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// FileWatcher exposes the underlying watcher, e.g. to tune debouncing.
func (w *ConfigWatcher) FileWatcher() *FileWatcher { return w.file }

// Start begins watching with initial as the current config.
func (w *ConfigWatcher) Start(ctx context.Context, initial *config.Config) error {
	w.mu.Lock()
	w.current = initial
	w.mu.Unlock()
	return w.file.Start(ctx)
}

// Stop stops watching.
func (w *ConfigWatcher) Stop() error {
	return w.file.Stop()
}

// Current returns the last valid config.
func (w *ConfigWatcher) Current() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) reload() {
	cfg, err := config.LoadConfig(w.path)

	w.mu.Lock()
	onReload, onError := w.onReload, w.onError
	if err == nil {
		w.current = cfg
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("config file changed but validation failed", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(cfg)
	}
}
