package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
)

// DmenuFormatter writes one separator-joined line per overlay, for
// dmenu/rofi/fuzzel pickers.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) (*DmenuFormatter, error) {
	tmpl, err := parseTemplate("dmenu", opts.Template, opts.now())
	if err != nil {
		return nil, err
	}
	return &DmenuFormatter{opts: opts, template: tmpl}, nil
}

// Format writes entries in dmenu format.
func (f *DmenuFormatter) Format(w io.Writer, entries []Entry) error {
	for i, e := range entries {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, e)); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, e Entry) string {
	now := f.opts.now()
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, templateData{Index: index, Entry: e, Age: age(e.Created, now)}); err == nil {
			return buf.String()
		}
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}
	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(index))
	}
	if f.opts.ShowAge {
		parts = append(parts, age(e.Created, now))
	}
	parts = append(parts, e.Kind, e.ID)
	if e.Title != "" {
		parts = append(parts, truncate(singleLine(e.Title), f.opts.TitleMax))
	}
	return strings.Join(parts, sep)
}
