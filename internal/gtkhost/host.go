package gtkhost

import (
	"log/slog"
	"slices"
	"time"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/veil/internal/overlay"
)

// dragSlop is how far a press may move before it becomes a drag.
const dragSlop = 8

type attached struct {
	o     *overlay.Overlay
	sf    *Widget
	scrim *gtk.DrawingArea
}

// Host is an overlay.Host on a full-screen layer-shell window. Every method
// must be called on the GLib main loop.
type Host struct {
	logger *slog.Logger
	sched  *Scheduler
	now    func() time.Time

	window *gtk.Window
	fixed  *gtk.Fixed
	bounds overlay.Rect

	entries []attached
	pointer overlay.Pointer
}

// NewHost creates the overlay window for app on the given monitor (1-indexed,
// 0 for the first). The window stays hidden until an overlay is attached.
func NewHost(app *gtk.Application, sched *Scheduler, monitor int, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		logger:  logger.With("component", "gtkhost"),
		sched:   sched,
		now:     time.Now,
		pointer: overlay.Pointer{Slop: dragSlop},
	}

	h.window = gtk.NewWindow()
	h.window.SetApplication(app)
	h.window.SetDecorated(false)
	h.window.AddCSSClass("veil-layer")

	layershell.InitForWindow(h.window)
	layershell.SetLayer(h.window, layershell.LayerShellLayerOverlay)
	layershell.SetNamespace(h.window, "veil-overlay")
	for _, edge := range []layershell.LayerShellEdge{
		layershell.LayerShellEdgeTop,
		layershell.LayerShellEdgeBottom,
		layershell.LayerShellEdgeLeft,
		layershell.LayerShellEdgeRight,
	} {
		layershell.SetAnchor(h.window, edge, true)
	}
	layershell.SetExclusiveZone(h.window, -1)
	layershell.SetKeyboardMode(h.window, layershell.LayerShellKeyboardModeOnDemand)

	h.fixed = gtk.NewFixed()
	h.window.SetChild(h.fixed)

	h.SetMonitor(monitor)
	h.connectInput()
	return h
}

// SetMonitor moves the window to another monitor. Overlays already attached
// keep their frames.
func (h *Host) SetMonitor(n int) {
	m := pickMonitor(gdk.DisplayGetDefault(), n, h.logger)
	if m == nil {
		return
	}
	layershell.SetMonitor(h.window, m)
	h.bounds = monitorBounds(m)
	h.logger.Debug("using monitor", "monitor", n, "width", h.bounds.Width, "height", h.bounds.Height)
}

// Bounds is the mapped window size, or the monitor size while hidden.
func (h *Host) Bounds() overlay.Rect {
	if w, ht := h.window.Width(), h.window.Height(); w > 0 && ht > 0 {
		return overlay.Rect{Width: float64(w), Height: float64(ht)}
	}
	return h.bounds
}

func (h *Host) Attach(o *overlay.Overlay) {
	e := attached{o: o}
	if bg := o.Config().Background; bg.A > 0 {
		e.scrim = newScrim(bg)
		b := h.Bounds()
		e.scrim.SetSizeRequest(pixels(b.Width), pixels(b.Height))
		h.fixed.Put(e.scrim, 0, 0)
	}
	if sf, ok := o.Surface().(*Widget); ok {
		e.sf = sf
		sf.attach(h.fixed, e.scrim)
	} else {
		h.logger.Debug("overlay has no widget", "id", o.ID(), "kind", o.Kind())
	}
	h.entries = append(h.entries, e)

	if len(h.entries) == 1 {
		h.window.Present()
	}
}

func (h *Host) Detach(o *overlay.Overlay) {
	i := slices.IndexFunc(h.entries, func(e attached) bool { return e.o == o })
	if i < 0 {
		return
	}
	e := h.entries[i]
	if e.sf != nil {
		e.sf.detach()
	}
	if e.scrim != nil {
		h.fixed.Remove(e.scrim)
	}
	h.entries = slices.Delete(h.entries, i, i+1)

	if len(h.entries) == 0 {
		h.pointer.Reset()
		h.window.SetVisible(false)
	}
}

// Len returns the number of attached overlays, including dismissing ones.
func (h *Host) Len() int { return len(h.entries) }

// Top returns the newest overlay that is still live.
func (h *Host) Top() *overlay.Overlay {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].o.Live() {
			return h.entries[i].o
		}
	}
	return nil
}

// connectInput routes presses and drags on the window to the top overlay.
// Buttons inside content claim their own clicks before they get here.
func (h *Host) connectInput() {
	ctx := h.sched.Context()
	var origin overlay.Point

	drag := gtk.NewGestureDrag()
	drag.SetButton(1)
	drag.ConnectDragBegin(func(x, y float64) {
		origin = overlay.Point{X: x, Y: y}
		h.pointer.Press(h.now(), origin, h.Top())
	})
	drag.ConnectDragUpdate(func(dx, dy float64) {
		h.pointer.Move(ctx, h.now(), overlay.Point{X: origin.X + dx, Y: origin.Y + dy})
	})
	drag.ConnectDragEnd(func(dx, dy float64) {
		p := overlay.Point{X: origin.X + dx, Y: origin.Y + dy}
		if !h.pointer.Release(ctx, h.now(), p) {
			h.logger.Debug("tap passed through", "x", p.X, "y", p.Y)
		}
	})
	drag.ConnectCancel(func(*gdk.EventSequence) {
		h.pointer.Cancel(ctx)
	})
	h.window.AddController(drag)

	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, _ uint, _ gdk.ModifierType) bool {
		if keyval != gdk.KEY_Escape {
			return false
		}
		top := h.Top()
		if top == nil {
			return false
		}
		// A point outside every frame is a background tap.
		return top.HandleTap(ctx, overlay.Point{X: -1, Y: -1})
	})
	h.window.AddController(keys)
}

// newScrim paints the overlay tint across the whole window.
func newScrim(c overlay.Color) *gtk.DrawingArea {
	area := gtk.NewDrawingArea()
	area.AddCSSClass("veil-scrim")
	area.SetCanTarget(false)
	area.SetDrawFunc(func(_ *gtk.DrawingArea, cr *cairo.Context, _, _ int) {
		cr.SetSourceRGBA(c.R, c.G, c.B, c.A)
		cr.Paint()
	})
	return area
}
