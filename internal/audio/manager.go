package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/veil/internal/config"
	"github.com/jmylchreest/veil/internal/popup"
)

// kinds are the overlay kinds a sound can be configured for.
var kinds = []string{popup.KindToast, popup.KindLoading, popup.KindAlert, popup.KindCustom}

// Manager plays the configured sound for each overlay the presenter shows.
// It implements popup.Announcer.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher

	enabled bool
	sounds  map[string]string // overlay kind -> file
	onError func(err error)

	// async is false in tests so Announce plays inline.
	async bool
}

// NewManager creates a manager from the [audio] section of cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audio")
	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		sounds:  make(map[string]string),
		async:   true,
	}
	m.apply(cfg)
	return m
}

// SetErrorHandler sets the function told about playback failures.
func (m *Manager) SetErrorHandler(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

func (m *Manager) apply(cfg *config.Config) {
	sounds := make(map[string]string, len(kinds))
	for _, kind := range kinds {
		path := cfg.GetSoundForKind(kind)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "kind", kind, "path", path)
			continue
		}
		sounds[kind] = path
	}

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100)
	m.logger.Debug("sounds configured", "enabled", cfg.Audio.Enabled, "sounds", len(sounds))
}

// Start preloads the sounds and watches them for changes.
func (m *Manager) Start(ctx context.Context) error {
	m.prepare()
	if err := m.watcher.Start(ctx); err != nil {
		return err
	}
	m.logger.Info("audio manager started", "sounds", len(m.snapshot()))
	return nil
}

func (m *Manager) prepare() {
	for _, path := range m.snapshot() {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
}

func (m *Manager) snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.sounds)
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
}

// Announce plays the sound for kind without blocking the caller.
func (m *Manager) Announce(kind string) {
	if !m.async {
		m.announce(kind)
		return
	}
	go m.announce(kind)
}

func (m *Manager) announce(kind string) {
	err := m.Play(kind)
	if err == nil {
		return
	}
	m.logger.Warn("failed to play sound", "kind", kind, "error", err)
	m.mu.RLock()
	onError := m.onError
	m.mu.RUnlock()
	if onError != nil {
		onError(err)
	}
}

// Play plays the sound for kind. Kinds without a sound are a no-op.
func (m *Manager) Play(kind string) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[kind]
	m.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig applies a reloaded config.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.watcher.Reset()
	m.player.ClearCache()
	m.apply(cfg)
	m.prepare()
	m.logger.Debug("audio manager reloaded")
}
