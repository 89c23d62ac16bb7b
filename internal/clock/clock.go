// Package clock provides time utilities for the application
package clock

import (
	"sync"
	"time"
)

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Stepping is a Clock for tests. Every call to Now returns the previous
// value advanced by Step.
type Stepping struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

// NewStepping returns a Stepping clock whose first reading is start.
func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{current: start.Add(-step), Step: step}
}

// Now advances the clock by Step and returns the new time.
func (c *Stepping) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(c.Step)
	return c.current
}

// Set moves the clock so the next reading is t.
func (c *Stepping) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t.Add(-c.Step)
}
