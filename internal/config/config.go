// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

// Default configuration values.
const (
	DefaultBackground   = "#000000"
	DefaultOpacity      = 0.4
	DefaultToastDelay   = 2 * time.Second
	DefaultFPS          = 60
	DefaultFrequency    = 8.0
	DefaultDamping      = 1.0
	DefaultVolume       = 80
	DefaultLogLevel     = "info"
	DefaultLoadingLabel = "Loading"
)

// Config represents the veil configuration.
// Loaded from ~/.config/veil/config.toml
type Config struct {
	LogLevel  string          `toml:"log_level" yaml:"log_level"`
	Overlay   OverlayConfig   `toml:"overlay" yaml:"overlay"`
	Gesture   GestureConfig   `toml:"gesture" yaml:"gesture"`
	Toast     ToastConfig     `toml:"toast" yaml:"toast"`
	Loading   LoadingConfig   `toml:"loading" yaml:"loading"`
	Animation AnimationConfig `toml:"animation" yaml:"animation"`
	Audio     AudioConfig     `toml:"audio" yaml:"audio"`
	Theme     ThemeConfig     `toml:"theme" yaml:"theme"`
	Display   DisplayConfig   `toml:"display" yaml:"display"`
	DBus      DBusConfig      `toml:"dbus" yaml:"dbus"`
}

// OverlayConfig holds the defaults every overlay starts from.
type OverlayConfig struct {
	Background       string  `toml:"background" yaml:"background"`               // "#rrggbb"
	Opacity          float64 `toml:"opacity" yaml:"opacity"`                     // tint alpha, 0.0-1.0
	WithoutAnimation bool    `toml:"without_animation" yaml:"without_animation"` // present and dismiss instantly
	Dismissible      bool    `toml:"dismissible" yaml:"dismissible"`             // background tap and drag may dismiss
	DragEnabled      bool    `toml:"drag_enabled" yaml:"drag_enabled"`           // sheets and drawers follow drags
	UserInteraction  bool    `toml:"user_interaction" yaml:"user_interaction"`   // block input underneath
}

// GestureConfig tunes drag-to-dismiss.
type GestureConfig struct {
	VelocityEpsilon float64 `toml:"velocity_epsilon" yaml:"velocity_epsilon"` // release velocity deadzone, units/s
}

// ToastConfig holds toast defaults.
type ToastConfig struct {
	Position string   `toml:"position" yaml:"position"` // "center", "top", "bottom", "dynamic-region"
	Delay    Duration `toml:"delay" yaml:"delay"`       // e.g. "2s", "1500"
}

// LoadingConfig holds loading indicator defaults.
type LoadingConfig struct {
	Message string `toml:"message" yaml:"message"` // label used when none is given
}

// AnimationConfig tunes the spring used for transitions.
type AnimationConfig struct {
	FPS       int     `toml:"fps" yaml:"fps"`
	Frequency float64 `toml:"frequency" yaml:"frequency"`
	Damping   float64 `toml:"damping" yaml:"damping"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled" yaml:"enabled"`
	Volume  int         `toml:"volume" yaml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds" yaml:"sounds"`
}

// SoundConfig contains per-kind sound file paths.
type SoundConfig struct {
	Toast   string `toml:"toast" yaml:"toast"`
	Loading string `toml:"loading" yaml:"loading"`
	Alert   string `toml:"alert" yaml:"alert"`
	Custom  string `toml:"custom" yaml:"custom"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	CSS         string `toml:"css" yaml:"css"`                   // bundled theme name or stylesheet path, for veild
	ColorScheme string `toml:"color_scheme" yaml:"color_scheme"` // "system", "light", or "dark"
}

// DisplayConfig selects where veild shows overlays.
type DisplayConfig struct {
	Monitor int `toml:"monitor" yaml:"monitor"` // 0 = first monitor, 1+ = specific monitor
}

// DBusConfig contains D-Bus service settings.
type DBusConfig struct {
	Enabled            bool `toml:"enabled" yaml:"enabled"`
	ClaimNotifications bool `toml:"claim_notifications" yaml:"claim_notifications"` // also serve org.freedesktop.Notifications
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Overlay: OverlayConfig{
			Background:      DefaultBackground,
			Opacity:         DefaultOpacity,
			Dismissible:     true,
			DragEnabled:     true,
			UserInteraction: true,
		},
		Toast: ToastConfig{
			Position: string(overlay.ToastCenter),
			Delay:    Duration(DefaultToastDelay),
		},
		Loading: LoadingConfig{
			Message: DefaultLoadingLabel,
		},
		Animation: AnimationConfig{
			FPS:       DefaultFPS,
			Frequency: DefaultFrequency,
			Damping:   DefaultDamping,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		Theme: ThemeConfig{
			ColorScheme: string(ColorSchemeSystem),
		},
		DBus: DBusConfig{
			Enabled: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "veil", "config.toml")
}

// StatePath returns the state directory, used for logs.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state.
func StatePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "veil")
}

// LogPath returns the log file used while the terminal UI owns the screen.
func LogPath() string {
	return filepath.Join(StatePath(), "veil.log")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if _, err := ParseColor(c.Overlay.Background); err != nil {
		return err
	}
	if c.Overlay.Opacity < 0 || c.Overlay.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %g", c.Overlay.Opacity)
	}

	if c.Gesture.VelocityEpsilon < 0 {
		return fmt.Errorf("velocity_epsilon must not be negative, got %g", c.Gesture.VelocityEpsilon)
	}

	validPos := false
	for _, p := range overlay.ValidToastPositions() {
		if c.Toast.Position == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return fmt.Errorf("invalid toast position %q, must be one of: %v", c.Toast.Position, overlay.ValidToastPositions())
	}
	if c.Toast.Delay.Duration() <= 0 {
		return fmt.Errorf("toast delay must be positive, got %s", c.Toast.Delay.Duration())
	}

	if c.Animation.FPS < 1 || c.Animation.FPS > 240 {
		return fmt.Errorf("fps must be between 1 and 240, got %d", c.Animation.FPS)
	}
	if c.Animation.Frequency <= 0 || c.Animation.Damping <= 0 {
		return fmt.Errorf("spring frequency and damping must be positive")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if c.Display.Monitor < 0 {
		return fmt.Errorf("monitor must not be negative, got %d", c.Display.Monitor)
	}

	return nil
}

// Apply copies the configured defaults onto an overlay preset, leaving style
// and direction alone.
func (c *Config) Apply(base overlay.Config) overlay.Config {
	if col, err := ParseColor(c.Overlay.Background); err == nil {
		col.A = c.Overlay.Opacity
		base.Background = col
	}
	base.WithoutAnimation = c.Overlay.WithoutAnimation
	base.Dismissible = c.Overlay.Dismissible
	base.UserInteraction = c.Overlay.UserInteraction
	if base.Style != overlay.StyleDialog {
		base.DragEnabled = c.Overlay.DragEnabled
	}
	base.VelocityEpsilon = c.Gesture.VelocityEpsilon
	return base
}

// SpringOptions returns the transition spring settings.
func (c *Config) SpringOptions() overlay.SpringOptions {
	return overlay.SpringOptions{
		FPS:       c.Animation.FPS,
		Frequency: c.Animation.Frequency,
		Damping:   c.Animation.Damping,
	}
}

// PresenterDefaults returns the presenter-wide defaults.
func (c *Config) PresenterDefaults() popup.Defaults {
	return popup.Defaults{
		ToastPosition:    overlay.ToastPosition(c.Toast.Position),
		ToastDelay:       c.Toast.Delay.Duration(),
		VelocityEpsilon:  c.Gesture.VelocityEpsilon,
		WithoutAnimation: c.Overlay.WithoutAnimation,
	}
}

// GetSoundForKind returns the sound file path for an overlay kind.
// Expands ~ to home directory.
func (c *Config) GetSoundForKind(kind string) string {
	var path string
	switch kind {
	case popup.KindToast:
		path = c.Audio.Sounds.Toast
	case popup.KindLoading:
		path = c.Audio.Sounds.Loading
	case popup.KindAlert:
		path = c.Audio.Sounds.Alert
	default:
		path = c.Audio.Sounds.Custom
	}
	return expandPath(path)
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return lvl, nil
}

// ParseColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseColor(s string) (overlay.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return overlay.Color{}, fmt.Errorf("invalid color %q, must be like '#000000'", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return overlay.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return overlay.Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
		A: 1,
	}, nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
