// Package actor defines how the recorder reaches live actors, and provides a
// scripted tracker that replays poses from a file.
package actor

import "github.com/npcpath/npcpath/internal/waypoint"

// Actor is a live, controllable entity whose pose can be sampled.
type Actor interface {
	// Pose returns the actor's current pose. An error is a transient read
	// failure; it does not mean the actor is gone.
	Pose() (waypoint.Waypoint, error)
}

// Tracker resolves actor IDs to live actors. Lookup reports false once the
// actor is no longer present. Callers should look the actor up again
// whenever they need it rather than holding the returned value.
type Tracker interface {
	Lookup(id string) (Actor, bool)
}
