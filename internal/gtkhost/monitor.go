package gtkhost

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/veil/internal/overlay"
)

// pickMonitor returns the monitor to show overlays on. n is 1-indexed; 0 or
// an unavailable monitor falls back to the first one.
func pickMonitor(display *gdk.Display, n int, logger *slog.Logger) *gdk.Monitor {
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors available")
		return nil
	}

	index := uint(0)
	if n > 0 {
		index = uint(n - 1)
	}
	if index >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first",
			"configured", n,
			"available", monitors.NItems(),
		)
		index = 0
	}
	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor casts a list item to a gdk.Monitor; gotk4 does not export its
// own wrapper.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// monitorBounds returns the monitor size in logical pixels.
func monitorBounds(m *gdk.Monitor) overlay.Rect {
	if m == nil {
		return overlay.Rect{}
	}
	g := m.Geometry()
	return overlay.Rect{Width: float64(g.Width()), Height: float64(g.Height())}
}
