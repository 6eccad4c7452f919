package overlay

import "fmt"

// Point is a position in host coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in host coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Offset returns r moved to the given origin.
func (r Rect) Offset(x, y float64) Rect {
	r.X, r.Y = x, y
	return r
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}
