// Package timeutil paces simulation frames against a Clock that tests can
// replace.
package timeutil

import (
	"sync"
	"time"
)

// Clock is the subset of time operations the frame pacer needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses for the specified duration.
	Sleep(d time.Duration)
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// MockClock is a Clock whose Sleep advances the mocked time immediately.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the mock clock forward without recording a sleep.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleep records d and advances the clock by it.
func (c *MockClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// Sleeps returns all recorded sleep durations.
func (c *MockClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]time.Duration, len(c.sleeps))
	copy(result, c.sleeps)
	return result
}

// Pacer holds a loop to a fixed frame interval. A zero interval never
// sleeps.
type Pacer struct {
	clock    Clock
	interval time.Duration
	next     time.Time
	late     int
}

// NewPacer creates a pacer whose first frame is due immediately.
func NewPacer(clock Clock, interval time.Duration) *Pacer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Pacer{clock: clock, interval: interval}
}

// Wait blocks until the next frame is due. A frame that starts after its
// deadline is counted as late and the schedule restarts from now instead of
// trying to catch up.
func (p *Pacer) Wait() {
	if p.interval <= 0 {
		return
	}
	now := p.clock.Now()
	if p.next.IsZero() {
		p.next = now.Add(p.interval)
		return
	}
	if d := p.next.Sub(now); d > 0 {
		p.clock.Sleep(d)
		p.next = p.next.Add(p.interval)
		return
	}
	p.late++
	p.next = now.Add(p.interval)
}

// Late returns how many frames missed their deadline.
func (p *Pacer) Late() int { return p.late }

// Interval returns the frame interval.
func (p *Pacer) Interval() time.Duration { return p.interval }
