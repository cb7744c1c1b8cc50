package sim

import "time"

// Clock abstracts wall-clock reads so timer behavior is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a manually advanced clock for tests.
type FakeClock struct {
	Current time.Time
}

// NewFakeClock creates a fake clock starting at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{Current: t}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	return c.Current
}

// Advance moves the fake clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

// SimClock is the time source simulation systems read. The loop drives it:
// live it tracks the wall clock, and during offline catch-up it is rewound
// to the save point and advanced one fixed step at a time — so a queue item
// that matured mid-gap completes at its proper moment in the replay, not on
// the first replayed tick.
type SimClock struct {
	current time.Time
}

// Now returns the simulation's current time.
func (c *SimClock) Now() time.Time {
	return c.current
}

func (c *SimClock) set(t time.Time) {
	c.current = t
}

func (c *SimClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}
