package recorder

import (
	"sync"
	"testing"
	"time"
)

// manualClock hands out tickers that only fire when a test calls Tick.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	created chan *manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{
		now:     time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		created: make(chan *manualTicker, 16),
	}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	t := &manualTicker{
		clock:   c,
		d:       d,
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
	c.created <- t
	return t
}

// ticker waits for the next ticker a session creates.
func (c *manualClock) ticker(t *testing.T) *manualTicker {
	t.Helper()
	select {
	case tk := <-c.created:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("no ticker created")
		return nil
	}
}

type manualTicker struct {
	clock    *manualClock
	d        time.Duration
	ch       chan time.Time
	stopOnce sync.Once
	stopped  chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stopped) })
}

// Tick advances the clock by one interval and blocks until the sampling
// loop has finished its current iteration and consumed the tick. It
// returns false if the loop stopped instead.
func (t *manualTicker) Tick() bool {
	t.clock.mu.Lock()
	t.clock.now = t.clock.now.Add(t.d)
	now := t.clock.now
	t.clock.mu.Unlock()

	select {
	case t.ch <- now:
		return true
	case <-t.stopped:
		return false
	}
}

func (t *manualTicker) TickN(n int) {
	for i := 0; i < n; i++ {
		t.Tick()
	}
}
