package overlay

import (
	"errors"

	"github.com/jmylchreest/veil/internal/mainloop"
)

var (
	// ErrInvalidConfiguration means the request was refused before any
	// overlay was built.
	ErrInvalidConfiguration = errors.New("invalid overlay configuration")

	// ErrQueueOccupied means a loading overlay is already active.
	ErrQueueOccupied = errors.New("loading overlay already active")

	// ErrNoHost means there is no surface to attach the overlay to.
	ErrNoHost = errors.New("no host surface available")

	// ErrLoopStopped means the owner thread is gone.
	ErrLoopStopped = mainloop.ErrStopped
)

// Error describes a failed overlay operation.
type Error struct {
	Op  string // "present", "toast", "loading", ...
	ID  string // overlay ID when one exists
	Err error
}

func (e *Error) Error() string {
	msg := "overlay " + e.Op
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
