package overlay

// GestureKind distinguishes the two gestures an overlay intercepts.
type GestureKind int

const (
	GestureTap GestureKind = iota
	GestureDrag
)

// ShouldBegin is the admission filter shared by hosts and the controller.
// A tap inside the content never dismisses, it belongs to the content.
// A tap outside is admitted only for dismissible overlays, and a drag only
// when dragging and dismissal are both enabled.
func ShouldBegin(kind GestureKind, p Point, content Rect, cfg Config) bool {
	switch kind {
	case GestureTap:
		if content.Contains(p) {
			return false
		}
		return cfg.Dismissible
	case GestureDrag:
		return cfg.CanDrag()
	}
	return false
}
