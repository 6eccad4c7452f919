package gtkhost

import (
	"math"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/veil/internal/overlay"
)

// Widget is a surface backed by a GTK widget. Frame changes move and resize
// the widget once the host has placed it.
type Widget struct {
	*overlay.Box

	widget gtk.Widgetter
	base   *gtk.Widget
	scrim  *gtk.DrawingArea
	fixed  *gtk.Fixed
}

// NewWidget wraps w, sized to its natural size.
func NewWidget(w gtk.Widgetter) *Widget {
	base := gtk.BaseWidget(w)
	_, natW, _, _ := base.Measure(gtk.OrientationHorizontal, -1)
	_, natH, _, _ := base.Measure(gtk.OrientationVertical, natW)
	return &Widget{
		Box:    overlay.NewBox(overlay.Rect{Width: float64(natW), Height: float64(natH)}),
		widget: w,
		base:   base,
	}
}

// GTK returns the wrapped widget.
func (w *Widget) GTK() gtk.Widgetter { return w.widget }

func (w *Widget) SetFrame(r overlay.Rect) {
	w.Box.SetFrame(r)
	w.sync()
}

// SetOpacity fades the widget and its scrim together.
func (w *Widget) SetOpacity(a float64) {
	w.Box.SetOpacity(a)
	w.base.SetOpacity(w.Opacity())
	if w.scrim != nil {
		w.scrim.SetOpacity(w.Opacity())
	}
}

func (w *Widget) attach(fixed *gtk.Fixed, scrim *gtk.DrawingArea) {
	w.fixed, w.scrim = fixed, scrim
	f := w.Frame()
	fixed.Put(w.widget, f.X, f.Y)
	w.SetOpacity(w.Opacity())
	w.sync()
}

func (w *Widget) detach() {
	if w.fixed == nil {
		return
	}
	w.fixed.Remove(w.widget)
	w.fixed, w.scrim = nil, nil
}

func (w *Widget) sync() {
	if w.fixed == nil {
		return
	}
	f := w.Frame()
	w.base.SetSizeRequest(pixels(f.Width), pixels(f.Height))
	w.fixed.Move(w.widget, f.X, f.Y)
}

// pixels rounds a logical length to a whole, non-negative pixel count.
func pixels(v float64) int {
	return max(int(math.Round(v)), 0)
}
