package gtkhost

import (
	"github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/jmylchreest/veil/internal/config"
)

// SetColorScheme tags the overlay window "light" or "dark" so themes can
// switch palettes. "system" follows libadwaita's preference.
func (h *Host) SetColorScheme(scheme string) {
	class := schemeClass(config.ColorScheme(scheme), func() bool {
		return adw.StyleManagerGetDefault().Dark()
	})
	for _, c := range []string{"light", "dark"} {
		if c == class {
			h.window.AddCSSClass(c)
		} else {
			h.window.RemoveCSSClass(c)
		}
	}
}

// ApplyColorScheme forces libadwaita's own widgets to the configured scheme.
func ApplyColorScheme(scheme string) {
	sm := adw.StyleManagerGetDefault()
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeLight:
		sm.SetColorScheme(adw.ColorSchemeForceLight)
	case config.ColorSchemeDark:
		sm.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		sm.SetColorScheme(adw.ColorSchemeDefault)
	}
}

func schemeClass(scheme config.ColorScheme, systemDark func() bool) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	}
	if systemDark() {
		return "dark"
	}
	return "light"
}
