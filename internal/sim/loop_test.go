package sim

import (
	"math"
	"testing"
	"time"

	"github.com/talgya/outpost/internal/events"
)

type countingSystem struct {
	name    string
	updates int
	dtSum   float64
}

func (s *countingSystem) Name() string { return s.name }
func (s *countingSystem) Update(dt float64) {
	s.updates++
	s.dtSum += dt
}

type panickySystem struct{}

func (panickySystem) Name() string      { return "panicky" }
func (panickySystem) Update(dt float64) { panic("boom") }

func newTestLoop() (*Loop, *FakeClock) {
	clock := NewFakeClock(time.UnixMilli(1_000_000))
	return NewLoop(clock, events.Nop{}), clock
}

func TestAdvanceDrainsFixedSteps(t *testing.T) {
	loop, _ := newTestLoop()
	sys := &countingSystem{name: "counter"}
	loop.Register(sys)

	loop.Advance(125 * time.Millisecond) // 2 full steps, 25ms left over
	if sys.updates != 2 {
		t.Errorf("want 2 fixed steps, got %d", sys.updates)
	}

	loop.Advance(25 * time.Millisecond) // leftover tops up to a third step
	if sys.updates != 3 {
		t.Errorf("accumulator must carry remainder: want 3 steps, got %d", sys.updates)
	}

	if math.Abs(sys.dtSum-3*TickSeconds) > 1e-9 {
		t.Errorf("every step must use the fixed dt: got %v", sys.dtSum)
	}
}

func TestAdvanceClampsRunawayDelta(t *testing.T) {
	loop, _ := newTestLoop()
	sys := &countingSystem{name: "counter"}
	loop.Register(sys)

	loop.Advance(10 * time.Second) // suspended frame: clamps to MaxFrameDelta
	want := int(MaxFrameDelta / TickRate)
	if sys.updates != want {
		t.Errorf("want %d clamped steps, got %d", want, sys.updates)
	}
}

func TestAdvanceWhilePaused(t *testing.T) {
	loop, _ := newTestLoop()
	sys := &countingSystem{name: "counter"}
	loop.Register(sys)

	loop.Pause()
	loop.Advance(time.Second)
	if sys.updates != 0 {
		t.Error("paused loop must not step")
	}

	loop.Resume()
	loop.Advance(TickRate)
	if sys.updates != 1 {
		t.Error("resumed loop must step again")
	}
}

func TestPanicInOneSystemDoesNotStarveSiblings(t *testing.T) {
	loop, _ := newTestLoop()
	healthy := &countingSystem{name: "healthy"}
	loop.Register(panickySystem{})
	loop.Register(healthy)

	loop.Advance(TickRate)
	if healthy.updates != 1 {
		t.Error("sibling systems must still tick when one panics")
	}
	if loop.Tick() != 1 {
		t.Error("the loop itself must survive a system fault")
	}
}

func TestCatchUpSkipsShortGaps(t *testing.T) {
	loop, clock := newTestLoop()
	sys := &countingSystem{name: "counter"}
	loop.Register(sys)

	if got := loop.CatchUp(clock.Now().Add(-3 * time.Second)); got != 0 {
		t.Errorf("sub-threshold gap must simulate nothing, got %v", got)
	}
	if sys.updates != 0 {
		t.Error("no steps may run for a skipped gap")
	}
}

func TestCatchUpReplaysCappedWindow(t *testing.T) {
	loop, clock := newTestLoop()
	sys := &countingSystem{name: "counter"}
	loop.Register(sys)

	simulated := loop.CatchUp(clock.Now().Add(-48 * time.Hour))
	if simulated != MaxOfflineWindow {
		t.Errorf("want %v simulated, got %v", MaxOfflineWindow, simulated)
	}
	if want := int(MaxOfflineWindow / TickRate); sys.updates != want {
		t.Errorf("want %d steps, got %d", want, sys.updates)
	}
}

// Live ticking and offline catch-up over the same elapsed time must agree.
func TestCatchUpMatchesLiveTicking(t *testing.T) {
	live, liveClock := newTestLoop()
	liveSys := &countingSystem{name: "live"}
	live.Register(liveSys)

	offline, offClock := newTestLoop()
	offSys := &countingSystem{name: "offline"}
	offline.Register(offSys)

	const elapsed = 90 * time.Second

	for i := 0; i < int(elapsed/TickRate); i++ {
		liveClock.Advance(TickRate)
		live.Advance(TickRate)
	}

	start := offClock.Now()
	offClock.Advance(elapsed)
	offline.CatchUp(start)

	if liveSys.updates != offSys.updates {
		t.Errorf("step count diverged: live %d, offline %d", liveSys.updates, offSys.updates)
	}
	if liveSys.dtSum != offSys.dtSum {
		t.Errorf("integrated time diverged: live %v, offline %v", liveSys.dtSum, offSys.dtSum)
	}
}

// The sim clock must absorb the full frame delta even when the accumulator
// clamps it, so timers anchored to it keep tracking wall time through a
// suspension.
func TestSimClockTracksWallTimeThroughClamp(t *testing.T) {
	loop, _ := newTestLoop()
	base := loop.Clock().Now()

	loop.Advance(10 * time.Second)
	if got := loop.Clock().Now(); !got.Equal(base.Add(10 * time.Second)) {
		t.Errorf("sim clock = %v, want %v", got, base.Add(10*time.Second))
	}
}

type clockRecorder struct {
	clock Clock
	seen  []time.Time
}

func (r *clockRecorder) Name() string      { return "recorder" }
func (r *clockRecorder) Update(dt float64) { r.seen = append(r.seen, r.clock.Now()) }

// During catch-up, systems must observe time advancing one tick per replayed
// step rather than jumping straight to the present.
func TestCatchUpReplaysVirtualTime(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &clockRecorder{clock: loop.Clock()}
	loop.Register(rec)

	lastSaved := clock.Now()
	clock.Advance(10 * time.Second)
	loop.CatchUp(lastSaved)

	if len(rec.seen) != 200 {
		t.Fatalf("want 200 replayed steps, got %d", len(rec.seen))
	}
	for i, at := range rec.seen {
		want := lastSaved.Add(time.Duration(i+1) * TickRate)
		if !at.Equal(want) {
			t.Fatalf("step %d saw %v, want %v", i, at, want)
		}
	}
	if !loop.Clock().Now().Equal(clock.Now()) {
		t.Error("sim clock must rejoin the wall clock after replay")
	}
}

func TestUIPulseCadence(t *testing.T) {
	d := events.NewDispatcher()
	pulses := 0
	d.Subscribe(events.TypeUIPulse, func(events.Event) { pulses++ })

	clock := NewFakeClock(time.UnixMilli(1_000_000))
	loop := NewLoop(clock, d)

	for i := 0; i < UIPulseTicks; i++ { // one second of fixed steps
		loop.Advance(TickRate)
	}
	if pulses != 1 {
		t.Errorf("want 1 UI pulse per second of fixed steps, got %d", pulses)
	}
}
