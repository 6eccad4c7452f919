package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "#000000", cfg.Overlay.Background)
	assert.Equal(t, 0.4, cfg.Overlay.Opacity)
	assert.True(t, cfg.Overlay.Dismissible)
	assert.True(t, cfg.Overlay.DragEnabled)
	assert.Equal(t, "center", cfg.Toast.Position)
	assert.Equal(t, 2*time.Second, cfg.Toast.Delay.Duration())
	assert.Equal(t, 60, cfg.Animation.FPS)
	assert.True(t, cfg.DBus.Enabled)
	assert.False(t, cfg.DBus.ClaimNotifications)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
log_level = "debug"

[overlay]
background = "#102030"
opacity = 0.6
without_animation = true
dismissible = false

[gesture]
velocity_epsilon = 25.0

[toast]
position = "top"
delay = "1500"

[animation]
fps = 30

[audio]
enabled = true
volume = 50

[audio.sounds]
alert = "~/sounds/alert.wav"

[dbus]
claim_notifications = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "#102030", cfg.Overlay.Background)
	assert.True(t, cfg.Overlay.WithoutAnimation)
	assert.False(t, cfg.Overlay.Dismissible)
	assert.True(t, cfg.Overlay.DragEnabled, "unset fields keep defaults")
	assert.Equal(t, 25.0, cfg.Gesture.VelocityEpsilon)
	assert.Equal(t, "top", cfg.Toast.Position)
	assert.Equal(t, 1500*time.Millisecond, cfg.Toast.Delay.Duration())
	assert.Equal(t, 30, cfg.Animation.FPS)
	assert.Equal(t, 8.0, cfg.Animation.Frequency)
	assert.Equal(t, 50, cfg.Audio.Volume)
	assert.True(t, cfg.DBus.ClaimNotifications)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sounds/alert.wav"), cfg.GetSoundForKind(popup.KindAlert))
	assert.Empty(t, cfg.GetSoundForKind(popup.KindToast))
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"bad color", func(c *Config) { c.Overlay.Background = "black" }},
		{"opacity above one", func(c *Config) { c.Overlay.Opacity = 1.5 }},
		{"negative epsilon", func(c *Config) { c.Gesture.VelocityEpsilon = -1 }},
		{"bad toast position", func(c *Config) { c.Toast.Position = "left" }},
		{"zero toast delay", func(c *Config) { c.Toast.Delay = 0 }},
		{"zero fps", func(c *Config) { c.Animation.FPS = 0 }},
		{"volume too high", func(c *Config) { c.Audio.Volume = 101 }},
		{"bad color scheme", func(c *Config) { c.Theme.ColorScheme = "sepia" }},
		{"negative monitor", func(c *Config) { c.Display.Monitor = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Toast.Position = "bottom"
	cfg.Toast.Delay = Duration(3 * time.Second)
	cfg.Audio.Sounds.Loading = "/tmp/spin.ogg"

	require.NoError(t, cfg.Save(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_Apply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlay.Background = "#ff0000"
	cfg.Overlay.Opacity = 0.5
	cfg.Overlay.DragEnabled = false
	cfg.Gesture.VelocityEpsilon = 12

	sheet := cfg.Apply(overlay.BottomSheetConfig())
	assert.Equal(t, overlay.Color{R: 1, A: 0.5}, sheet.Background)
	assert.False(t, sheet.DragEnabled)
	assert.Equal(t, 12.0, sheet.VelocityEpsilon)
	assert.Equal(t, overlay.StyleBottomSheet, sheet.Style)

	cfg.Overlay.DragEnabled = true
	dialog := cfg.Apply(overlay.DialogConfig())
	assert.False(t, dialog.DragEnabled, "dialogs keep drag off")

	d := cfg.PresenterDefaults()
	assert.Equal(t, overlay.ToastCenter, d.ToastPosition)
	assert.Equal(t, 2*time.Second, d.ToastDelay)
	assert.False(t, d.WithoutAnimation)

	cfg.Overlay.WithoutAnimation = true
	assert.True(t, cfg.PresenterDefaults().WithoutAnimation)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, overlay.Color{R: 1, G: 1, B: 1, A: 1}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("#gggggg")
	assert.Error(t, err)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"2s", 2 * time.Second, false},
		{"250ms", 250 * time.Millisecond, false},
		{"1500", 1500 * time.Millisecond, false},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/veil/config.toml", ConfigPath())
}

func TestLogPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/veil/veil.log", LogPath())
}
