// Package ledger holds the colony's named resource stocks: amounts, storage
// caps, derived production rates, and an all-or-nothing spend/add API that
// every queue and sub-loop draws from.
package ledger

import (
	"math"

	"github.com/talgya/outpost/internal/events"
)

// Amounts maps resource name to quantity. Used for costs, rewards, and rates.
type Amounts map[string]float64

// Resource is one named stock.
type Resource struct {
	Amount    float64
	Cap       float64 // math.Inf(1) means unbounded
	PerSecond float64 // derived via RecalculateRates, never persisted
}

// Def declares a resource at ledger construction.
type Def struct {
	Name   string
	Amount float64
	Cap    float64 // <= 0 means unbounded
}

// Ledger owns all resource stocks plus the population pseudo-resource.
// Resources are created at construction and live for the whole session.
type Ledger struct {
	bus       events.Bus
	names     []string // stable iteration order for ticks and snapshots
	resources map[string]*Resource

	popCurrent float64
	popCap     float64
}

// New creates a ledger with the given resource definitions.
func New(bus events.Bus, defs []Def) *Ledger {
	l := &Ledger{
		bus:       bus,
		resources: make(map[string]*Resource, len(defs)),
	}
	for _, d := range defs {
		cap := d.Cap
		if cap <= 0 {
			cap = math.Inf(1)
		}
		l.names = append(l.names, d.Name)
		l.resources[d.Name] = &Resource{Amount: clamp(d.Amount, 0, cap), Cap: cap}
	}
	return l
}

// Names returns resource names in declaration order.
func (l *Ledger) Names() []string {
	return l.names
}

// Amount returns the current amount of a resource, 0 for unknown names.
func (l *Ledger) Amount(name string) float64 {
	if r, ok := l.resources[name]; ok {
		return r.Amount
	}
	return 0
}

// Cap returns a resource's storage cap, +Inf when unbounded or unknown.
func (l *Ledger) Cap(name string) float64 {
	if r, ok := l.resources[name]; ok {
		return r.Cap
	}
	return math.Inf(1)
}

// Rate returns a resource's current per-second production rate.
func (l *Ledger) Rate(name string) float64 {
	if r, ok := l.resources[name]; ok {
		return r.PerSecond
	}
	return 0
}

// CanAfford reports whether every entry of cost is covered by current stock.
// A resource the ledger does not know is unaffordable unless zero is asked.
func (l *Ledger) CanAfford(cost Amounts) bool {
	for name, amt := range cost {
		if amt <= 0 {
			continue
		}
		r, ok := l.resources[name]
		if !ok || r.Amount < amt {
			return false
		}
	}
	return true
}

// MaxAffordable returns the largest integer multiple of cost payable
// simultaneously across all named resources. An empty cost map returns 0;
// callers must guard rather than read it as "unlimited".
func (l *Ledger) MaxAffordable(cost Amounts) int {
	if len(cost) == 0 {
		return 0
	}
	max := math.MaxInt
	for name, amt := range cost {
		if amt <= 0 {
			continue
		}
		r, ok := l.resources[name]
		if !ok {
			return 0
		}
		if n := int(r.Amount / amt); n < max {
			max = n
		}
	}
	if max == math.MaxInt {
		return 0
	}
	return max
}

// Spend deducts cost atomically: either every entry is deducted or nothing
// changes. Returns false without mutation when the cost is unaffordable.
func (l *Ledger) Spend(cost Amounts) bool {
	if !l.CanAfford(cost) {
		return false
	}
	for name, amt := range cost {
		if amt <= 0 {
			continue
		}
		r := l.resources[name]
		r.Amount = clamp(r.Amount-amt, 0, r.Cap)
	}
	return true
}

// Add credits reward to the ledger, clamping each resource to its cap.
// Unknown resource names are ignored.
func (l *Ledger) Add(reward Amounts) {
	for name, amt := range reward {
		r, ok := l.resources[name]
		if !ok || amt <= 0 {
			continue
		}
		r.Amount = clamp(r.Amount+amt, 0, r.Cap)
	}
}

// SetCap adjusts a resource's storage cap. Lowering the cap below the current
// amount truncates the stored amount so 0 ≤ amount ≤ cap holds unconditionally.
func (l *Ledger) SetCap(name string, newCap float64) {
	r, ok := l.resources[name]
	if !ok {
		return
	}
	if newCap <= 0 {
		r.Cap = math.Inf(1)
		return
	}
	r.Cap = newCap
	if r.Amount > newCap {
		r.Amount = newCap
	}
}

// Update integrates production rates over dt seconds. Emits a resource-tick
// notification only when at least one amount actually moved, so idle ledgers
// do not generate notification storms.
func (l *Ledger) Update(dt float64) {
	changed := false
	for _, name := range l.names {
		r := l.resources[name]
		if r.PerSecond == 0 {
			continue
		}
		next := clamp(r.Amount+r.PerSecond*dt, 0, r.Cap)
		if next != r.Amount {
			r.Amount = next
			changed = true
		}
	}
	if changed {
		l.bus.Publish(events.Event{Type: events.TypeResourceTick})
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
