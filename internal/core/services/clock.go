package services

import (
	"sync"
	"time"

	"paystream/internal/core/ports"
)

// SystemClock is the production time oracle.
type SystemClock struct{}

func NewSystemClock() ports.Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a settable clock for tests; time only moves when told to.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
