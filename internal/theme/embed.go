package theme

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// EmbeddedThemes holds the stylesheets compiled into veild. default follows
// the Adwaita palette, minimal hides toast icons and catppuccin brings its
// own palette with a .dark variant. All of them import _base.css, the
// layout partial for the layer window, toasts, alerts, sheets and drawers.
//
//go:embed themes/*.css
var EmbeddedThemes embed.FS

const embeddedDir = "themes"

// DefaultThemeName is used when the config names no theme or the named one
// cannot be loaded.
const DefaultThemeName = "default"

// BundledThemes are the selectable embedded themes. Partials are not listed.
var BundledThemes = []string{DefaultThemeName, "minimal", "catppuccin"}

func readEmbedded(file string) (string, bool) {
	data, err := EmbeddedThemes.ReadFile(path.Join(embeddedDir, file))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func isPartial(name string) bool { return strings.HasPrefix(name, "_") }

// GetEmbeddedTheme returns the raw CSS of a selectable theme. Its @import
// lines are left for ProcessImports.
func GetEmbeddedTheme(name string) (string, bool) {
	if name == "" || isPartial(name) {
		return "", false
	}
	return readEmbedded(name + ".css")
}

// GetEmbeddedPartial returns a partial. "base", "_base" and "_base.css" all
// name the same file.
func GetEmbeddedPartial(name string) (string, bool) {
	name = strings.TrimSuffix(strings.TrimPrefix(name, "_"), ".css")
	return readEmbedded("_" + name + ".css")
}

// ListEmbeddedThemes names the selectable themes found in the embedded
// directory, falling back to BundledThemes.
func ListEmbeddedThemes() []string {
	files, err := fs.Glob(EmbeddedThemes, embeddedDir+"/*.css")
	if err != nil || len(files) == 0 {
		return slices.Clone(BundledThemes)
	}

	var names []string
	for _, f := range files {
		if name := strings.TrimSuffix(path.Base(f), ".css"); !isPartial(name) {
			names = append(names, name)
		}
	}
	return names
}

// IsEmbeddedTheme reports whether name is a selectable embedded theme.
func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}
