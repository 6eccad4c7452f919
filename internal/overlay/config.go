package overlay

import (
	"fmt"
	"math"
	"time"
)

// Style selects how an overlay enters, leaves and reacts to drags.
type Style string

const (
	StyleDialog      Style = "dialog"
	StyleBottomSheet Style = "bottom-sheet"
	StyleDrawer      Style = "drawer"
)

// ValidStyles returns all valid style values.
func ValidStyles() []Style {
	return []Style{StyleDialog, StyleBottomSheet, StyleDrawer}
}

// Direction is the edge a drawer is anchored to.
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ToastPosition is where toasts and loading indicators are placed.
type ToastPosition string

const (
	ToastCenter        ToastPosition = "center"
	ToastTop           ToastPosition = "top"
	ToastBottom        ToastPosition = "bottom"
	ToastDynamicRegion ToastPosition = "dynamic-region"
)

// ValidToastPositions returns all valid toast positions.
func ValidToastPositions() []ToastPosition {
	return []ToastPosition{ToastCenter, ToastTop, ToastBottom, ToastDynamicRegion}
}

// Color is a non-premultiplied RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// Clear is the fully transparent color.
var Clear = Color{}

// DefaultBackground is the dimming tint drawn behind overlays.
var DefaultBackground = Color{A: 0.4}

// DefaultAutoDismissDelay is used when auto-dismiss is on and no delay is set.
const DefaultAutoDismissDelay = 2 * time.Second

// SnapBackDuration is how long a cancelled drag takes to return to rest.
const SnapBackDuration = 200 * time.Millisecond

// Config describes one overlay's behavior. It is copied into the overlay at
// present time and never shared afterwards.
type Config struct {
	Background       Color
	UserInteraction  bool // block input to the content underneath
	Style            Style
	WithoutAnimation bool
	Dismissible      bool
	DragEnabled      bool
	Direction        Direction // drawer only
	AutoDismiss      bool
	AutoDismissDelay time.Duration
	ToastPosition    ToastPosition

	// VelocityEpsilon is the release-velocity deadzone for drag commits.
	// Zero compares against the sign alone.
	VelocityEpsilon float64
}

// DefaultConfig returns the base configuration every preset starts from.
func DefaultConfig() Config {
	return Config{
		Background:       DefaultBackground,
		UserInteraction:  true,
		Style:            StyleDialog,
		Dismissible:      true,
		DragEnabled:      true,
		Direction:        DirectionNone,
		AutoDismissDelay: DefaultAutoDismissDelay,
		ToastPosition:    ToastCenter,
	}
}

// DialogConfig returns a centered dialog. Dialogs never follow drags.
func DialogConfig() Config {
	c := DefaultConfig()
	c.DragEnabled = false
	return c
}

// BottomSheetConfig returns a sheet that rises from the bottom edge.
func BottomSheetConfig() Config {
	c := DefaultConfig()
	c.Style = StyleBottomSheet
	return c
}

// DrawerConfig returns a drawer anchored to dir, left if dir is none.
func DrawerConfig(dir Direction) Config {
	c := DefaultConfig()
	c.Style = StyleDrawer
	if dir != DirectionLeft && dir != DirectionRight {
		dir = DirectionLeft
	}
	c.Direction = dir
	return c
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Style {
	case StyleDialog, StyleBottomSheet:
	case StyleDrawer:
		if c.Direction != DirectionLeft && c.Direction != DirectionRight {
			return fmt.Errorf("%w: drawer needs direction left or right, got %q", ErrInvalidConfiguration, c.Direction)
		}
	default:
		return fmt.Errorf("%w: invalid style %q, must be one of: %v", ErrInvalidConfiguration, c.Style, ValidStyles())
	}

	if c.AutoDismiss && c.AutoDismissDelay <= 0 {
		return fmt.Errorf("%w: auto-dismiss delay must be positive, got %s", ErrInvalidConfiguration, c.AutoDismissDelay)
	}
	if c.VelocityEpsilon < 0 {
		return fmt.Errorf("%w: velocity epsilon must not be negative, got %g", ErrInvalidConfiguration, c.VelocityEpsilon)
	}

	if c.ToastPosition != "" {
		valid := false
		for _, p := range ValidToastPositions() {
			if c.ToastPosition == p {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: invalid toast position %q", ErrInvalidConfiguration, c.ToastPosition)
		}
	}

	for _, v := range []float64{c.Background.R, c.Background.G, c.Background.B, c.Background.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: background components must be within [0,1]", ErrInvalidConfiguration)
		}
	}
	return nil
}

// CanDrag reports whether drag gestures may start at all.
func (c Config) CanDrag() bool {
	return c.DragEnabled && c.Dismissible
}
