// Package registry holds the process-wide table of named trajectories that
// playback consumers look up.
package registry

import (
	"sort"
	"sync"

	"github.com/npcpath/npcpath/internal/waypoint"
)

// Registry maps path names to trajectories. It is safe for concurrent use.
//
// Trajectories handed out by Get are never modified after publication; Put
// always installs a fresh copy, so a reader holding an older trajectory keeps
// a complete one even after the name is overwritten.
type Registry struct {
	mu    sync.RWMutex
	paths map[string]waypoint.Trajectory
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{paths: make(map[string]waypoint.Trajectory)}
}

// Get returns the trajectory registered under name. Callers must not modify
// the returned slice.
func (r *Registry) Get(name string) (waypoint.Trajectory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.paths[name]
	return t, ok
}

// Put registers a copy of t under name, replacing any previous entry.
// Empty trajectories are ignored and reported as false.
func (r *Registry) Put(name string, t waypoint.Trajectory) bool {
	if len(t) == 0 {
		return false
	}
	published := t.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[name] = published
	return true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.paths)
}

// Snapshot returns the waypoint count of every registered path.
func (r *Registry) Snapshot() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.paths))
	for name, t := range r.paths {
		out[name] = len(t)
	}
	return out
}
