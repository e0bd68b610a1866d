// Package actortest provides test doubles for the actor package.
package actortest

import (
	"errors"
	"sync"

	"github.com/npcpath/npcpath/internal/actor"
	"github.com/npcpath/npcpath/internal/waypoint"
)

// ErrPoseUnavailable is the default transient error returned by FakeActor.
var ErrPoseUnavailable = errors.New("pose unavailable")

// FakeTracker is a configurable Tracker. Actors are present from Add until
// Remove. It is safe for concurrent use.
type FakeTracker struct {
	mu      sync.Mutex
	actors  map[string]*FakeActor
	lookups map[string]int

	// LookupFunc overrides Lookup when set.
	LookupFunc func(id string) (actor.Actor, bool)
}

// NewFakeTracker returns an empty FakeTracker.
func NewFakeTracker() *FakeTracker {
	return &FakeTracker{
		actors:  make(map[string]*FakeActor),
		lookups: make(map[string]int),
	}
}

// Add registers an actor that produces poses in order.
func (f *FakeTracker) Add(id string, poses ...waypoint.Waypoint) *FakeActor {
	a := &FakeActor{poses: poses}
	f.mu.Lock()
	f.actors[id] = a
	f.mu.Unlock()
	return a
}

// Remove makes the actor absent from subsequent lookups.
func (f *FakeTracker) Remove(id string) {
	f.mu.Lock()
	delete(f.actors, id)
	f.mu.Unlock()
}

// Lookup implements actor.Tracker.
func (f *FakeTracker) Lookup(id string) (actor.Actor, bool) {
	f.mu.Lock()
	f.lookups[id]++
	fn := f.LookupFunc
	a, ok := f.actors[id]
	f.mu.Unlock()

	if fn != nil {
		return fn(id)
	}
	if !ok {
		return nil, false
	}
	return a, true
}

// LookupCount returns how many times id was looked up.
func (f *FakeTracker) LookupCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups[id]
}

// FakeActor returns scripted poses; after the last pose it keeps returning
// that pose. Positions listed in Failures return ErrPoseUnavailable instead.
type FakeActor struct {
	mu       sync.Mutex
	poses    []waypoint.Waypoint
	next     int
	calls    int
	failures map[int]bool

	// PoseFunc overrides Pose when set.
	PoseFunc func() (waypoint.Waypoint, error)
}

// FailAt makes the given zero-based Pose calls fail.
func (a *FakeActor) FailAt(calls ...int) *FakeActor {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures == nil {
		a.failures = make(map[int]bool)
	}
	for _, c := range calls {
		a.failures[c] = true
	}
	return a
}

// Pose implements actor.Actor.
func (a *FakeActor) Pose() (waypoint.Waypoint, error) {
	a.mu.Lock()
	call := a.calls
	a.calls++
	fn := a.PoseFunc
	fail := a.failures[call]
	var w waypoint.Waypoint
	if !fail && fn == nil && len(a.poses) > 0 {
		w = a.poses[a.next]
		if a.next < len(a.poses)-1 {
			a.next++
		}
	}
	a.mu.Unlock()

	if fn != nil {
		return fn()
	}
	if fail || len(a.poses) == 0 {
		return waypoint.Waypoint{}, ErrPoseUnavailable
	}
	return w, nil
}

// Calls returns how many times Pose was called.
func (a *FakeActor) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

var _ actor.Tracker = (*FakeTracker)(nil)
