// Package sim provides the fixed-timestep loop that drives every simulation
// system. Frame deltas are accumulated and drained in TickRate steps, so
// simulation behavior is independent of how often the host scheduler fires.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/outpost/internal/events"
)

const (
	// TickRate is the fixed simulation step.
	TickRate = 50 * time.Millisecond

	// TickSeconds is TickRate expressed in seconds, the dt handed to systems.
	TickSeconds = 0.05

	// MaxFrameDelta clamps a single frame's wall-clock delta. A suspended
	// process (debugger, laptop sleep mid-frame) otherwise produces one
	// giant delta and a runaway catch-up burst inside the live loop.
	MaxFrameDelta = 250 * time.Millisecond

	// UIPulseTicks is how many fixed steps elapse between UI refresh pulses.
	UIPulseTicks = 20 // 20 × 50 ms = 1 s

	// MaxOfflineWindow caps how much absent time offline catch-up will replay.
	MaxOfflineWindow = 24 * time.Hour

	// MinOfflineGap is the threshold below which offline catch-up is skipped.
	// Rapid reloads produce gaps of a few seconds that are not worth replaying.
	MinOfflineGap = 5 * time.Second
)

// System is anything advanced by the loop once per fixed step.
type System interface {
	Name() string
	Update(dt float64)
}

// Loop drives registered systems at a fixed timestep.
type Loop struct {
	clock    Clock
	simClock *SimClock
	bus      events.Bus
	systems  []System

	accumulated time.Duration
	tick        uint64
	paused      bool
}

// NewLoop creates a loop that reads time from clock and emits UI pulses on bus.
func NewLoop(clock Clock, bus events.Bus) *Loop {
	return &Loop{clock: clock, simClock: &SimClock{current: clock.Now()}, bus: bus}
}

// Clock returns the simulation clock systems and queues should read. It
// follows the wall clock live and replays the gap during offline catch-up.
func (l *Loop) Clock() Clock {
	return l.simClock
}

// Register adds a system. Systems tick in registration order every step.
func (l *Loop) Register(s System) {
	l.systems = append(l.systems, s)
	slog.Info("system registered", "system", s.Name())
}

// Tick returns the number of fixed steps processed so far.
func (l *Loop) Tick() uint64 {
	return l.tick
}

// Pause stops simulated time from advancing. Wall time still passes, so
// queue timers keyed to the clock keep maturing and are applied on resume.
func (l *Loop) Pause() { l.paused = true }

// Resume restarts simulated time.
func (l *Loop) Resume() { l.paused = false }

// Paused reports whether the loop is paused.
func (l *Loop) Paused() bool { return l.paused }

// Run drives the loop until ctx is cancelled. Blocks.
func (l *Loop) Run(ctx context.Context) {
	slog.Info("simulation loop started", "tick_rate", TickRate)

	ticker := time.NewTicker(TickRate)
	defer ticker.Stop()

	last := l.clock.Now()
	l.simClock.set(last)
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped", "tick", l.tick)
			return
		case <-ticker.C:
			now := l.clock.Now()
			l.Advance(now.Sub(last))
			last = now
		}
	}
}

// Advance feeds one frame's wall-clock delta into the accumulator and drains
// it in fixed steps. Exposed so tests and offline catch-up can drive the loop
// without a ticker.
func (l *Loop) Advance(delta time.Duration) {
	if delta < 0 {
		return
	}
	// The sim clock sees the true delta so queue timers keep tracking wall
	// time; only the accumulator is clamped.
	l.simClock.advance(delta)
	if l.paused {
		return
	}
	if delta > MaxFrameDelta {
		delta = MaxFrameDelta
	}

	l.accumulated += delta
	for l.accumulated >= TickRate {
		l.accumulated -= TickRate
		l.step()
	}
}

// step advances every system by exactly one fixed tick.
func (l *Loop) step() {
	l.tick++

	for _, s := range l.systems {
		l.updateSystem(s)
	}

	if l.tick%UIPulseTicks == 0 {
		l.bus.Publish(events.Event{Type: events.TypeUIPulse, Payload: l.tick})
	}
}

// updateSystem runs one system's Update with panic isolation: a fault in one
// system must not stop its siblings from ticking, and must never kill the loop.
func (l *Loop) updateSystem(s System) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("system update panicked", "system", s.Name(), "tick", l.tick, "panic", fmt.Sprint(r))
		}
	}()
	s.Update(TickSeconds)
}

// CatchUp synchronously replays fixed steps to cover real time that passed
// while the simulation was not running. Returns the elapsed duration actually
// simulated (zero when the gap is below MinOfflineGap). Must run before the
// live loop starts so the end state matches a loop that never stopped.
func (l *Loop) CatchUp(lastSaved time.Time) time.Duration {
	elapsed := l.clock.Now().Sub(lastSaved)
	if elapsed < MinOfflineGap {
		return 0
	}
	if elapsed > MaxOfflineWindow {
		elapsed = MaxOfflineWindow
	}

	steps := int(elapsed / TickRate)
	slog.Info("offline catch-up", "elapsed", elapsed, "steps", steps)

	// Replay from the save point with virtual time: each step moves the sim
	// clock one tick, so timers that matured mid-gap complete at their proper
	// moment rather than all at once on the first replayed step.
	l.simClock.set(lastSaved)
	for i := 0; i < steps; i++ {
		l.simClock.advance(TickRate)
		l.step()
	}
	l.simClock.set(l.clock.Now())
	return time.Duration(steps) * TickRate
}
