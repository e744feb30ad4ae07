package sched

import "time"

// Clock supplies the current time in epoch seconds. The plugin never calls
// time.Now directly so that tests can drive timer expiry deterministically.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }

// ManualClock is a test clock advanced by hand.
type ManualClock struct {
	t int64
}

// NewManualClock creates a manual clock starting at t.
func NewManualClock(t int64) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() int64 { return c.t }

// Set moves the clock to an absolute time.
func (c *ManualClock) Set(t int64) { c.t = t }

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d int64) { c.t += d }
