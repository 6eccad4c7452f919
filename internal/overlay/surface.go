package overlay

import "context"

// Surface is the displayable region produced by content. Implementations
// must be comparable (pointer types) because strategies track in-flight
// animations per surface.
type Surface interface {
	Frame() Rect
	SetFrame(r Rect)
}

// Fader is implemented by surfaces that support an opacity channel.
type Fader interface {
	SetOpacity(alpha float64)
}

// Interactive is implemented by surfaces whose content reacts to taps, such
// as alert buttons. HandleTap reports whether the tap hit something.
type Interactive interface {
	HandleTap(ctx context.Context, p Point) bool
}

// ContentProvider produces the surface for an overlay. It is called exactly
// once per present, on the owner thread. Returning nil yields an empty
// surface.
type ContentProvider interface {
	ProduceSurface(o *Overlay) Surface
}

// ContentFunc adapts a function to ContentProvider.
type ContentFunc func(o *Overlay) Surface

func (f ContentFunc) ProduceSurface(o *Overlay) Surface { return f(o) }

// Static returns a provider that always yields s.
func Static(s Surface) ContentProvider {
	return ContentFunc(func(*Overlay) Surface { return s })
}

// Box is a plain Surface holding a frame and an opacity. Hosts embed it in
// their own surface types.
type Box struct {
	frame   Rect
	opacity float64
}

// NewBox returns a fully opaque box with the given frame.
func NewBox(r Rect) *Box {
	return &Box{frame: r, opacity: 1}
}

func (b *Box) Frame() Rect { return b.frame }
func (b *Box) SetFrame(r Rect) { b.frame = r }
func (b *Box) Opacity() float64 { return b.opacity }
func (b *Box) SetOpacity(a float64) { b.opacity = clamp(a, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
