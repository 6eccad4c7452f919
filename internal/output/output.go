// Package output formats the live overlay list for `veil list`.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Entry is one live overlay as reported by the presenter.
type Entry struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Title   string    `json:"title,omitempty"`
	Created time.Time `json:"created"`
}

// Formatter formats overlay entries for output.
type Formatter interface {
	Format(w io.Writer, entries []Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns all format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatDmenu, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter(), nil
	}
	return nil, fmt.Errorf("unknown format %q, must be one of: %v", format, ValidFormats())
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // custom template for dmenu/plain format
	ShowIndex bool   // show 1-based index prefix
	ShowAge   bool   // show how long ago the overlay appeared
	TitleMax  int    // maximum title length (0 = unlimited)
	Separator string // field separator for dmenu format

	// Now is the reference for ages; zero means time.Now.
	Now time.Time
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex: true,
		ShowAge:   true,
		TitleMax:  60,
		Separator: " | ",
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// templateData is what custom templates see.
type templateData struct {
	Index int
	Entry Entry
	Age   string
}

func parseTemplate(name, text string, now time.Time) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	tmpl, err := template.New(name).Funcs(templateFuncs(now)).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return tmpl, nil
}

func templateFuncs(now time.Time) template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"age": func(t time.Time) string {
			return age(t, now)
		},
		"upper": strings.ToUpper,
	}
}

// age renders how long ago t was, e.g. "3 minutes ago".
func age(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// truncate shortens s to maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// singleLine collapses whitespace so a title fits on one line.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
