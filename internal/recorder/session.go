package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/npcpath/npcpath/internal/waypoint"
)

// Status is the lifecycle state of a Session.
type Status int

const (
	// StatusActive means the session is still sampling or persisting.
	StatusActive Status = iota
	// StatusFinished means the path was written and registered.
	StatusFinished
	// StatusAborted means nothing was registered: either no waypoints were
	// captured or the write failed.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StopReason records why a session's sampling loop ended.
type StopReason int

const (
	stopNone StopReason = iota
	// StopCancelled means Cancel was called or the recorder was closed.
	StopCancelled
	// StopActorGone means the tracker no longer knows the actor.
	StopActorGone
	// StopLimit means the session captured its maximum number of waypoints.
	StopLimit
)

func (r StopReason) String() string {
	switch r {
	case StopCancelled:
		return "cancelled"
	case StopActorGone:
		return "actor gone"
	case StopLimit:
		return "limit reached"
	default:
		return "running"
	}
}

// Session is one recording of one actor under one path name.
type Session struct {
	ID           string
	ActorID      string
	Name         string
	MaxWaypoints int
	StartedAt    time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	status  Status
	reason  StopReason
	buf     waypoint.Trajectory
	result  waypoint.Trajectory
	err     error
	endedAt time.Time
}

// Cancel asks the session to stop at its next check. It does not wait.
func (s *Session) Cancel() {
	s.cancel()
}

// Done is closed once the session has stopped and its outcome is final.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is done or ctx ends. It returns the
// session's error, or ctx's error if ctx ended first.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StopReason returns why sampling ended, once it has.
func (s *Session) StopReason() StopReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Len returns the number of waypoints captured so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusFinished {
		return len(s.result)
	}
	return len(s.buf)
}

// Err returns why the session aborted, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// EndedAt returns when the session ended, or the zero time while active.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Trajectory returns a copy of the captured waypoints. After a successful
// finish this is the trajectory that was registered.
func (s *Session) Trajectory() waypoint.Trajectory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusFinished {
		return s.result.Clone()
	}
	return s.buf.Clone()
}

// offer appends w if it passes the debounce filter and reports whether it
// was kept.
func (s *Session) offer(w waypoint.Waypoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buf.Accepts(w) {
		return false
	}
	s.buf = append(s.buf, w)
	return true
}

func (s *Session) full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf) >= s.MaxWaypoints
}

// stop records the stop reason and returns the captured waypoints. The
// buffer is no longer appended to after this.
func (s *Session) stop(reason StopReason) waypoint.Trajectory {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reason = reason
	return s.buf.Clone()
}

func (s *Session) end(status Status, result waypoint.Trajectory, err error, at time.Time) {
	s.mu.Lock()
	s.status = status
	s.buf = nil
	s.result = result
	s.err = err
	s.endedAt = at
	s.mu.Unlock()
	close(s.done)
}
