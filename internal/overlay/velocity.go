package overlay

import "time"

// velocityWindow bounds how far back samples count toward release velocity.
const velocityWindow = 100 * time.Millisecond

type timedPoint struct {
	at time.Time
	p  Point
}

// VelocityTracker estimates release velocity from timestamped positions, for
// hosts whose input only reports where the pointer is.
type VelocityTracker struct {
	samples []timedPoint
}

// Add records a pointer position.
func (v *VelocityTracker) Add(at time.Time, p Point) {
	v.samples = append(v.samples, timedPoint{at: at, p: p})
	cutoff := at.Add(-velocityWindow)
	i := 0
	for i < len(v.samples)-2 && v.samples[i].at.Before(cutoff) {
		i++
	}
	v.samples = v.samples[i:]
}

// Velocity returns units per second over the recent window, or zero with
// fewer than two samples.
func (v *VelocityTracker) Velocity() Point {
	if len(v.samples) < 2 {
		return Point{}
	}
	first, last := v.samples[0], v.samples[len(v.samples)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 {
		return Point{}
	}
	return Point{
		X: (last.p.X - first.p.X) / dt,
		Y: (last.p.Y - first.p.Y) / dt,
	}
}

// Reset drops all samples.
func (v *VelocityTracker) Reset() { v.samples = v.samples[:0] }
