package gtkhost

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/veil/internal/theme"
)

// Stylesheet applies a theme to the default display. Load and Apply must be
// called on the GLib main loop.
type Stylesheet struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	provider *gtk.CSSProvider
	value    string
	theme    *theme.Theme
}

// NewStylesheet creates an empty stylesheet.
func NewStylesheet(logger *slog.Logger) *Stylesheet {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stylesheet{
		logger:   logger.With("component", "theme"),
		provider: gtk.NewCSSProvider(),
	}
}

// Load resolves the [theme] css value and loads it. On error the current
// stylesheet stays in place.
func (s *Stylesheet) Load(value string) error {
	t, err := theme.Resolve(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider.LoadFromString(t.CSS)
	s.value, s.theme = value, t
	s.logger.Info("loaded theme", "name", t.Name, "path", t.Path, "bundled", t.Bundled)
	return nil
}

// Reload loads the current value again, picking up edits to theme files.
func (s *Stylesheet) Reload() error {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()
	return s.Load(value)
}

// Path returns the file the theme came from, empty for bundled themes.
func (s *Stylesheet) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.theme == nil {
		return ""
	}
	return s.theme.Path
}

// Apply installs the stylesheet on display, or the default display when nil.
func (s *Stylesheet) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		s.logger.Warn("no display available, cannot apply theme")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, s.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}
