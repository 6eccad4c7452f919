package overlay

// Host is a display tree overlays attach to. All methods are called on the
// owner thread.
type Host interface {
	// Bounds is the region overlays are laid out in. An empty rect means the
	// host is not ready to show anything.
	Bounds() Rect
	Attach(o *Overlay)
	Detach(o *Overlay)
}

// toastMargin keeps top and bottom toasts off the region edge.
const toastMargin = 0.08

// Place returns the resting frame for content of the given size.
// Dialogs are centered or follow the toast position, sheets sit on the
// bottom edge and drawers span the full height on their side.
func Place(cfg Config, region Rect, size Rect) Rect {
	w, h := size.Width, size.Height
	switch cfg.Style {
	case StyleBottomSheet:
		if w <= 0 || w > region.Width {
			w = region.Width
		}
		return Rect{
			X:      region.X + (region.Width-w)/2,
			Y:      region.MaxY() - h,
			Width:  w,
			Height: h,
		}
	case StyleDrawer:
		h = region.Height
		x := region.X
		if cfg.Direction == DirectionRight {
			x = region.MaxX() - w
		}
		return Rect{X: x, Y: region.Y, Width: w, Height: h}
	}

	x := region.X + (region.Width-w)/2
	y := region.Y + (region.Height-h)/2
	switch cfg.ToastPosition {
	case ToastTop, ToastDynamicRegion:
		y = region.Y + region.Height*toastMargin
	case ToastBottom:
		y = region.MaxY() - h - region.Height*toastMargin
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}
