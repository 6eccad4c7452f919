package output

import (
	"fmt"
	"io"
)

// IDsFormatter outputs just the overlay IDs, one per line, for piping into
// `veil dismiss`.
type IDsFormatter struct{}

// NewIDsFormatter creates an IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

func (f *IDsFormatter) Format(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
