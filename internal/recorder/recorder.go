// Package recorder samples a live actor's pose on a fixed cadence and turns
// the captured movement into a named, persisted and registered path.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/npcpath/npcpath/internal/actor"
	"github.com/npcpath/npcpath/internal/metrics"
	"github.com/npcpath/npcpath/internal/pathstore"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/npcpath/npcpath/internal/waypoint"
	"github.com/oklog/ulid/v2"
)

// Tick is one simulation tick, the default sampling interval.
const Tick = 50 * time.Millisecond

var (
	// ErrAlreadyRecording is returned by Start when the actor already has an
	// active session.
	ErrAlreadyRecording = errors.New("actor is already recording a path")
	// ErrActorNotFound is returned by Start when the tracker does not know
	// the actor.
	ErrActorNotFound = errors.New("actor not found")
	// ErrInvalidName is returned by Start for unusable path names.
	ErrInvalidName = pathstore.ErrInvalidName
	// ErrInvalidLimit is returned by Start when maxWaypoints is not positive.
	ErrInvalidLimit = errors.New("max waypoints must be positive")
	// ErrEmptyCapture is the error of a session that ended without any
	// accepted waypoint.
	ErrEmptyCapture = errors.New("no waypoints captured")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("recorder is closed")
)

// Store persists encoded paths. *pathstore.Store implements it.
type Store interface {
	Write(name string, data []byte) error
}

// Recorder runs recording sessions. It is safe for concurrent use.
type Recorder struct {
	tracker  actor.Tracker
	store    Store
	registry *registry.Registry

	tick    time.Duration
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu sync.Mutex
	// active holds each actor's in-progress session; an entry is the
	// actor's "recording" flag.
	active map[string]*Session
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithTick sets the sampling interval.
func WithTick(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(r *Recorder) {
		r.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMetrics records session activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// New returns a Recorder that samples actors from tracker, writes finished
// paths to store and publishes them in reg.
func New(tracker actor.Tracker, store Store, reg *registry.Registry, opts ...Option) *Recorder {
	r := &Recorder{
		tracker:  tracker,
		store:    store,
		registry: reg,
		tick:     Tick,
		clock:    realClock{},
		logger:   slog.Default(),
		active:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins recording actorID under name, keeping at most maxWaypoints
// waypoints. The returned session runs in its own goroutine. Start fails
// without touching any existing session if the actor is already recording.
func (r *Recorder) Start(actorID, name string, maxWaypoints int) (*Session, error) {
	if err := pathstore.ValidateName(name); err != nil {
		return nil, err
	}
	if maxWaypoints <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, maxWaypoints)
	}
	if _, ok := r.tracker.Lookup(actorID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, actorID)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if cur, busy := r.active[actorID]; busy {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s (path %q)", ErrAlreadyRecording, actorID, cur.Name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:           ulid.Make().String(),
		ActorID:      actorID,
		Name:         name,
		MaxWaypoints: maxWaypoints,
		StartedAt:    r.clock.Now(),
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	r.active[actorID] = s
	r.wg.Add(1)
	r.mu.Unlock()

	r.metrics.SessionStarted()
	r.logger.Info("path recording started",
		"session", s.ID,
		"actor", actorID,
		"path", name,
		"max_waypoints", maxWaypoints,
	)

	go r.run(ctx, s)
	return s, nil
}

// Cancel stops the actor's active session at its next check. It reports
// false if the actor is not recording.
func (r *Recorder) Cancel(actorID string) bool {
	r.mu.Lock()
	s, ok := r.active[actorID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Cancel()
	return true
}

// Active returns the actor's in-progress session.
func (r *Recorder) Active(actorID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.active[actorID]
	return s, ok
}

// Sessions returns all in-progress sessions.
func (r *Recorder) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.active))
	for _, s := range r.active {
		out = append(out, s)
	}
	return out
}

// Close cancels every session and waits for them to persist what they
// captured, or for ctx to end. Start fails after Close.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for _, s := range r.active {
		s.Cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run(ctx context.Context, s *Session) {
	defer r.wg.Done()

	reason := r.sample(ctx, s)
	r.finish(s, reason)
}

// sample runs one check-and-sample per tick until a stop condition holds.
func (r *Recorder) sample(ctx context.Context, s *Session) StopReason {
	ticker := r.clock.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return StopCancelled
		}
		// Look the actor up every tick; never keep it across iterations.
		a, ok := r.tracker.Lookup(s.ActorID)
		if !ok {
			return StopActorGone
		}
		if s.full() {
			return StopLimit
		}

		r.capture(s, a)

		select {
		case <-ctx.Done():
			return StopCancelled
		case <-ticker.C():
		}
	}
}

func (r *Recorder) capture(s *Session, a actor.Actor) {
	w, err := a.Pose()
	if err != nil {
		r.logger.Debug("pose read failed, skipping tick",
			"session", s.ID,
			"actor", s.ActorID,
			"error", err,
		)
		return
	}
	if err := w.Validate(); err != nil {
		r.logger.Debug("pose rejected",
			"session", s.ID,
			"actor", s.ActorID,
			"error", err,
		)
		return
	}
	if s.offer(w) {
		r.metrics.WaypointRecorded()
	}
}

// finish persists the captured path and releases the actor. The actor's
// recording flag is cleared on every path before Done is closed.
func (r *Recorder) finish(s *Session, reason StopReason) {
	t := s.stop(reason)

	var (
		status = StatusFinished
		result waypoint.Trajectory
		err    error
	)
	if len(t) == 0 {
		status = StatusAborted
		err = ErrEmptyCapture
		r.logger.Info("path recording aborted, nothing captured",
			"session", s.ID,
			"actor", s.ActorID,
			"path", s.Name,
			"reason", reason.String(),
		)
	} else if result, err = r.persist(s.Name, t); err != nil {
		status = StatusAborted
		r.logger.Error("path could not be saved",
			"session", s.ID,
			"actor", s.ActorID,
			"path", s.Name,
			"waypoints", len(t),
			"error", err,
		)
	} else {
		r.logger.Info("path recorded",
			"session", s.ID,
			"actor", s.ActorID,
			"path", s.Name,
			"waypoints", len(result),
			"reason", reason.String(),
		)
	}

	r.mu.Lock()
	if r.active[s.ActorID] == s {
		delete(r.active, s.ActorID)
	}
	r.mu.Unlock()

	r.metrics.SessionEnded(status.String())
	s.end(status, result, err, r.clock.Now())
}

// persist encodes and writes t, then registers what was written.
func (r *Recorder) persist(name string, t waypoint.Trajectory) (waypoint.Trajectory, error) {
	started := time.Now()
	defer func() { r.metrics.ObservePersist(time.Since(started)) }()

	data, err := waypoint.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode path: %w", err)
	}
	if err := r.store.Write(name, data); err != nil {
		return nil, fmt.Errorf("failed to write path: %w", err)
	}
	written, err := waypoint.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode written path: %w", err)
	}

	r.registry.Put(name, written)
	r.metrics.SetRegistered(r.registry.Len())
	return written, nil
}
