package overlay

// DragPhase is the phase of a drag sample.
type DragPhase int

const (
	DragBegan DragPhase = iota
	DragChanged
	DragEnded
	DragCancelled
)

func (p DragPhase) String() string {
	switch p {
	case DragBegan:
		return "began"
	case DragChanged:
		return "changed"
	case DragEnded:
		return "ended"
	case DragCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DragSample is one input event of a drag gesture. Velocity is in host
// units per second and only matters on release.
type DragSample struct {
	Phase    DragPhase
	Location Point
	Velocity Point
}

// BridgeState is the state of the drag state machine.
type BridgeState int

const (
	BridgeIdle BridgeState = iota
	BridgeTracking
	BridgeCommitted
	BridgeCancelled
)

func (s BridgeState) String() string {
	switch s {
	case BridgeIdle:
		return "idle"
	case BridgeTracking:
		return "tracking"
	case BridgeCommitted:
		return "committed"
	case BridgeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Action is what the controller must do with a bridge outcome.
type Action int

const (
	// ActionNone leaves the overlay where it is.
	ActionNone Action = iota
	// ActionFollow moves the overlay to Frame without animation.
	ActionFollow
	// ActionCommit moves the overlay to Frame and dismisses it.
	ActionCommit
	// ActionSnapBack moves the overlay to Frame, then animates it to Restore.
	ActionSnapBack
	// ActionTap runs the background-tap path, which dismisses only when the
	// overlay is dismissible.
	ActionTap
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionFollow:
		return "follow"
	case ActionCommit:
		return "commit"
	case ActionSnapBack:
		return "snap-back"
	case ActionTap:
		return "tap"
	default:
		return "unknown"
	}
}

// Outcome is the bridge's decision for one sample.
type Outcome struct {
	Action  Action
	Frame   Rect
	Restore Rect
}

// Bridge turns the samples of a single drag gesture into overlay movement
// and a final commit or snap-back decision. It holds no references to the
// overlay; the zero value is ready to use.
type Bridge struct {
	state      BridgeState
	beginRect  Rect
	beginTouch Point
}

// State returns the current state.
func (b *Bridge) State() BridgeState { return b.state }

// Reset returns the bridge to Idle.
func (b *Bridge) Reset() { *b = Bridge{} }

// Handle feeds one sample. current is the overlay's frame right now.
func (b *Bridge) Handle(cfg Config, s DragSample, current Rect) Outcome {
	switch s.Phase {
	case DragBegan:
		b.state = BridgeTracking
		b.beginRect = current
		b.beginTouch = s.Location
		return Outcome{Action: ActionNone, Frame: current}

	case DragChanged:
		if b.state != BridgeTracking {
			return Outcome{Action: ActionNone, Frame: current}
		}
		if !cfg.DragEnabled {
			b.state = BridgeCancelled
			return Outcome{Action: ActionTap, Frame: current}
		}
		if cfg.Style == StyleDialog {
			return Outcome{Action: ActionNone, Frame: current}
		}
		return Outcome{Action: ActionFollow, Frame: b.follow(cfg, s.Location, current)}

	case DragEnded, DragCancelled:
		if b.state != BridgeTracking {
			return Outcome{Action: ActionNone, Frame: current}
		}
		if cfg.Style == StyleDialog || !cfg.DragEnabled {
			b.state = BridgeCancelled
			return Outcome{Action: ActionTap, Frame: current}
		}
		frame := b.follow(cfg, s.Location, current)
		if shouldCommit(cfg, s.Velocity) {
			b.state = BridgeCommitted
			return Outcome{Action: ActionCommit, Frame: frame}
		}
		b.state = BridgeCancelled
		return Outcome{Action: ActionSnapBack, Frame: frame, Restore: b.beginRect}
	}
	return Outcome{Action: ActionNone, Frame: current}
}

// follow keeps the touch at the same relative spot inside the overlay it had
// when the gesture began, clamped so the overlay never moves past its resting
// edge into the screen.
func (b *Bridge) follow(cfg Config, touch Point, current Rect) Rect {
	begin := b.beginRect
	switch cfg.Style {
	case StyleDrawer:
		x := touch.X - ratio(b.beginTouch.X-begin.X, begin.Width)*current.Width
		switch cfg.Direction {
		case DirectionLeft:
			if x > begin.X {
				x = begin.X
			}
		case DirectionRight:
			if x < begin.X {
				x = begin.X
			}
		}
		return current.Offset(x, begin.Y)

	case StyleBottomSheet:
		y := touch.Y - ratio(b.beginTouch.Y-begin.Y, begin.Height)*current.Height
		if y < begin.Y {
			y = begin.Y
		}
		return current.Offset(begin.X, y)
	}
	return current
}

func ratio(offset, length float64) float64 {
	if length == 0 {
		return 0
	}
	return offset / length
}

// shouldCommit decides on release velocity alone. Distance travelled plays no
// part.
func shouldCommit(cfg Config, v Point) bool {
	eps := cfg.VelocityEpsilon
	switch cfg.Style {
	case StyleDrawer:
		switch cfg.Direction {
		case DirectionLeft:
			return v.X < -eps
		case DirectionRight:
			return v.X > eps
		}
	case StyleBottomSheet:
		return v.Y > eps
	}
	return false
}
