package actor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/npcpath/npcpath/internal/waypoint"
	"gopkg.in/yaml.v3"
)

// Script is a set of actors with pre-recorded pose sequences, loaded from
// YAML:
//
//	actors:
//	  - id: steve
//	    hold: true
//	    poses:
//	      - {world: world, x: 0, y: 64, z: 0, yaw: 0, pitch: 0}
type Script struct {
	Actors []ScriptedActor `yaml:"actors"`
}

// ScriptedActor is one actor in a Script.
type ScriptedActor struct {
	ID string `yaml:"id"`
	// Hold keeps the actor present on its last pose after the script runs
	// out. Otherwise the actor disappears.
	Hold  bool                `yaml:"hold,omitempty"`
	Poses []waypoint.Waypoint `yaml:"poses"`
}

// Validate checks that the script is usable.
func (s *Script) Validate() error {
	if len(s.Actors) == 0 {
		return errors.New("actors must contain at least one actor")
	}
	seen := make(map[string]bool, len(s.Actors))
	for i, a := range s.Actors {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("actor %d: id must be non-empty", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("actor %d: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
		if len(a.Poses) == 0 {
			return fmt.Errorf("actor %q: poses must contain at least one pose", a.ID)
		}
	}
	return nil
}

// LoadScript parses a script with strict field checking.
func LoadScript(r io.Reader) (*Script, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var script Script
	if err := decoder.Decode(&script); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty script file")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &script, nil
}

// LoadScriptFile loads a script from path.
func LoadScriptFile(path string) (*Script, error) {
	f, err := os.Open(path) //nolint:gosec // script path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open script file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadScript(f)
}

// ScriptTracker is a Tracker backed by a Script. Each Pose call on an actor
// consumes the next scripted pose. It is safe for concurrent use.
type ScriptTracker struct {
	mu     sync.Mutex
	actors map[string]*scriptedActor
}

type scriptedActor struct {
	tracker *ScriptTracker
	id      string
	hold    bool
	poses   []waypoint.Waypoint
	next    int
	gone    bool
}

// NewScriptTracker returns a tracker that plays s. The script is copied.
func NewScriptTracker(s *Script) *ScriptTracker {
	t := &ScriptTracker{actors: make(map[string]*scriptedActor, len(s.Actors))}
	for _, a := range s.Actors {
		poses := make([]waypoint.Waypoint, len(a.Poses))
		copy(poses, a.Poses)
		t.actors[a.ID] = &scriptedActor{tracker: t, id: a.ID, hold: a.Hold, poses: poses}
	}
	return t
}

// Lookup implements Tracker.
func (t *ScriptTracker) Lookup(id string) (Actor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.actors[id]
	if !ok || a.gone {
		return nil, false
	}
	return a, true
}

// Disconnect removes the actor, as if it left the world.
func (t *ScriptTracker) Disconnect(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.actors[id]; ok {
		a.gone = true
	}
}

// Remaining returns how many scripted poses the actor has not yet produced.
func (t *ScriptTracker) Remaining(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.actors[id]
	if !ok {
		return 0
	}
	return len(a.poses) - a.next
}

func (a *scriptedActor) Pose() (waypoint.Waypoint, error) {
	a.tracker.mu.Lock()
	defer a.tracker.mu.Unlock()

	if a.gone {
		return waypoint.Waypoint{}, fmt.Errorf("actor %q is no longer present", a.id)
	}
	if a.next >= len(a.poses) {
		return a.poses[len(a.poses)-1], nil
	}
	w := a.poses[a.next]
	a.next++
	if a.next == len(a.poses) && !a.hold {
		a.gone = true
	}
	return w, nil
}
