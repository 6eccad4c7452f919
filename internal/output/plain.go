package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// PlainFormatter writes one readable line per overlay.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	tmpl, err := parseTemplate("plain", opts.Template, opts.now())
	if err != nil {
		return nil, err
	}
	return &PlainFormatter{opts: opts, template: tmpl}, nil
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []Entry) error {
	now := f.opts.now()
	for i, e := range entries {
		if f.template != nil {
			if err := f.template.Execute(w, templateData{Index: i + 1, Entry: e, Age: age(e.Created, now)}); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			continue
		}

		var sb strings.Builder
		if f.opts.ShowIndex {
			fmt.Fprintf(&sb, "[%d] ", i+1)
		}
		fmt.Fprintf(&sb, "<%s> %s", e.Kind, e.ID)
		if e.Title != "" {
			sb.WriteString(" " + truncate(singleLine(e.Title), f.opts.TitleMax))
		}
		if f.opts.ShowAge {
			fmt.Fprintf(&sb, " (%s)", age(e.Created, now))
		}
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatField returns one field of an entry.
func FormatField(e Entry, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return e.ID
	case "kind":
		return e.Kind
	case "created":
		return e.Created.Format("2006-01-02T15:04:05Z07:00")
	default:
		return e.Title
	}
}
