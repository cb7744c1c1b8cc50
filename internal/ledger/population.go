package ledger

import (
	"math"

	"github.com/talgya/outpost/internal/events"
)

// Population is tracked as a real-valued pair outside the general resource
// map: growth and shrinkage accrue fractionally per tick, and consumers floor
// the value for headcount checks so sub-epsilon drift never flickers a number.

// Population returns the current population and its cap.
func (l *Ledger) Population() (current, cap float64) {
	return l.popCurrent, l.popCap
}

// PopulationCount returns the whole-person headcount used for consumption
// and display.
func (l *Ledger) PopulationCount() int {
	return int(math.Floor(l.popCurrent))
}

// SetPopulationCap sets the housing cap, truncating current population when
// the cap drops below it.
func (l *Ledger) SetPopulationCap(cap float64) {
	if cap < 0 {
		cap = 0
	}
	l.popCap = cap
	if l.popCurrent > cap {
		l.popCurrent = cap
		l.publishPopulation()
	}
}

// GrowPopulation raises population by delta, clamped to the cap. A no-op at
// the boundary publishes nothing.
func (l *Ledger) GrowPopulation(delta float64) {
	if delta <= 0 {
		return
	}
	next := clamp(l.popCurrent+delta, 0, l.popCap)
	if next == l.popCurrent {
		return
	}
	l.popCurrent = next
	l.publishPopulation()
}

// ShrinkPopulation lowers population by delta, clamped at zero. A no-op at
// the boundary publishes nothing.
func (l *Ledger) ShrinkPopulation(delta float64) {
	if delta <= 0 {
		return
	}
	next := clamp(l.popCurrent-delta, 0, l.popCap)
	if next == l.popCurrent {
		return
	}
	l.popCurrent = next
	l.publishPopulation()
}

func (l *Ledger) publishPopulation() {
	l.bus.Publish(events.Event{
		Type:    events.TypePopulationChange,
		Payload: events.PopulationPayload{Current: l.popCurrent, Cap: l.popCap},
	})
}
