package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmylchreest/veil/internal/config"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved stylesheet.
type Theme struct {
	Name    string // theme name, without .css
	Path    string // file the theme was read from, empty when bundled
	CSS     string // stylesheet with imports inlined
	Bundled bool
}

// NewTheme loads a theme file and inlines its imports.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name: name,
		Path: path,
		CSS:  ProcessImports(string(css), filepath.Dir(path), nil),
	}, nil
}

// Bundled returns an embedded theme with its imports inlined.
func Bundled(name string) (*Theme, bool) {
	css, found := GetEmbeddedTheme(name)
	if !found {
		return nil, false
	}
	return &Theme{Name: name, CSS: ProcessImports(css, "", nil), Bundled: true}, true
}

// Resolve finds the theme for the [theme] css setting. An empty value is the
// default theme. A value with a path separator or a .css suffix is a file;
// anything else is a theme name, looked up in the user themes directory and
// then among the bundled themes.
func Resolve(value string) (*Theme, error) {
	if value == "" {
		t, _ := Bundled(DefaultThemeName)
		return t, nil
	}

	if strings.ContainsRune(value, os.PathSeparator) || strings.HasSuffix(value, ".css") {
		path := expandPath(value)
		name := strings.TrimSuffix(filepath.Base(path), ".css")
		t, err := NewTheme(name, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load theme %s: %w", value, err)
		}
		return t, nil
	}

	if dir := ThemesDir(); dir != "" {
		path := filepath.Join(dir, value+".css")
		if _, err := os.Stat(path); err == nil {
			return NewTheme(value, path)
		}
	}
	if t, ok := Bundled(value); ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown theme %q, bundled themes are: %v", value, ListEmbeddedThemes())
}

// ThemesDir returns the user themes directory next to the config file.
func ThemesDir() string {
	path := config.ConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "themes")
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir, falling back to the bundled
// partials and themes. The seen map prevents circular imports.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}
		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		importedCSS, err := os.ReadFile(fullPath)
		if err != nil {
			baseName := filepath.Base(importPath)
			if strings.HasPrefix(baseName, "_") {
				if embedded, found := GetEmbeddedPartial(baseName); found {
					return "/* imported (embedded): " + importPath + " */\n" + embedded
				}
			}
			if embedded, found := GetEmbeddedTheme(strings.TrimSuffix(baseName, ".css")); found {
				return "/* imported (embedded): " + importPath + " */\n" + ProcessImports(embedded, "", seen)
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		processed := ProcessImports(string(importedCSS), filepath.Dir(fullPath), seen)
		return "/* imported: " + importPath + " */\n" + processed
	})
}

// ThemeInfo describes an available theme for listing.
type ThemeInfo struct {
	Name    string
	Path    string
	Bundled bool
}

// ListAvailableThemes lists bundled themes followed by user themes. A user
// theme with a bundled name overrides it and is listed once, with its path.
func ListAvailableThemes() ([]ThemeInfo, error) {
	var themes []ThemeInfo
	index := make(map[string]int)
	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{Name: name, Bundled: true})
	}

	dir := ThemesDir()
	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		info := ThemeInfo{Name: strings.TrimSuffix(name, ".css"), Path: filepath.Join(dir, name)}
		if i, ok := index[info.Name]; ok {
			themes[i] = info
			continue
		}
		index[info.Name] = len(themes)
		themes = append(themes, info)
	}
	return themes, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
