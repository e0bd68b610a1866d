// Package waypoint defines recorded poses and the binary codec used to
// persist them as trajectory files.
package waypoint

import (
	"errors"
	"fmt"
	"math"
)

// MaxWorldLen is the longest world name the codec can length-prefix.
const MaxWorldLen = math.MaxUint16

// DebounceDistance is the Manhattan distance a new sample must exceed,
// relative to the last accepted one, to be recorded.
const DebounceDistance = 0.01

// ErrNonFinite is returned by Validate when a coordinate or angle is NaN or
// infinite.
var ErrNonFinite = errors.New("non-finite value")

// Waypoint is a single sampled pose: world, position and orientation.
type Waypoint struct {
	World string  `json:"world" yaml:"world"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Z     float64 `json:"z" yaml:"z"`
	Yaw   float32 `json:"yaw" yaml:"yaw"`
	Pitch float32 `json:"pitch" yaml:"pitch"`
}

// Validate checks that the Waypoint can be recorded and encoded.
func (w Waypoint) Validate() error {
	if w.World == "" {
		return errors.New("world must be non-empty")
	}
	if len(w.World) > MaxWorldLen {
		return fmt.Errorf("world name is %d bytes, limit is %d", len(w.World), MaxWorldLen)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"x", w.X},
		{"y", w.Y},
		{"z", w.Z},
		{"yaw", float64(w.Yaw)},
		{"pitch", float64(w.Pitch)},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s: %w", f.name, ErrNonFinite)
		}
	}
	return nil
}

// Distance returns |dx|+|dy|+|dz| between two waypoints. World and
// orientation do not contribute.
func (w Waypoint) Distance(o Waypoint) float64 {
	return math.Abs(w.X-o.X) + math.Abs(w.Y-o.Y) + math.Abs(w.Z-o.Z)
}

// Trajectory is an ordered sequence of waypoints; index order is playback
// order.
type Trajectory []Waypoint

// Clone returns a copy that shares no backing array with t.
func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}

// Accepts reports whether w passes the debounce filter when appended to t:
// t is empty, or w moved more than DebounceDistance from the last waypoint.
func (t Trajectory) Accepts(w Waypoint) bool {
	if len(t) == 0 {
		return true
	}
	return t[len(t)-1].Distance(w) > DebounceDistance
}
