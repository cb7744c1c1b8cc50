package ledger

import (
	"encoding/json"
	"math"
)

// Snapshot is the JSON-serializable persisted shape of the ledger. Rates are
// derived state and deliberately absent: RecalculateRates rebuilds them after
// restore from the live structure list.
type Snapshot struct {
	Resources  map[string]ResourceSnapshot `json:"resources"`
	Population PopulationSnapshot          `json:"population"`
}

// ResourceSnapshot persists one stock. Cap -1 encodes an unbounded resource.
type ResourceSnapshot struct {
	Amount float64 `json:"amount"`
	Cap    float64 `json:"cap"`
}

// UnmarshalJSON accepts both the current object shape and the legacy shape
// where a resource was stored as a bare amount. Missing caps default to -1
// (unbounded) and are re-clamped against the constructed defaults on restore.
func (rs *ResourceSnapshot) UnmarshalJSON(data []byte) error {
	var amount float64
	if err := json.Unmarshal(data, &amount); err == nil {
		rs.Amount = amount
		rs.Cap = -1
		return nil
	}

	type alias ResourceSnapshot
	var a alias
	a.Cap = -1
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*rs = ResourceSnapshot(a)
	return nil
}

// PopulationSnapshot persists the population pair. Legacy saves used
// cur/max keys.
type PopulationSnapshot struct {
	Current float64 `json:"current"`
	Cap     float64 `json:"cap"`

	LegacyCurrent *float64 `json:"cur,omitempty"`
	LegacyCap     *float64 `json:"max,omitempty"`
}

// Serialize captures the ledger state.
func (l *Ledger) Serialize() Snapshot {
	snap := Snapshot{
		Resources: make(map[string]ResourceSnapshot, len(l.names)),
		Population: PopulationSnapshot{
			Current: l.popCurrent,
			Cap:     l.popCap,
		},
	}
	for _, name := range l.names {
		r := l.resources[name]
		cap := r.Cap
		if math.IsInf(cap, 1) {
			cap = -1
		}
		snap.Resources[name] = ResourceSnapshot{Amount: r.Amount, Cap: cap}
	}
	return snap
}

// Restore overlays a snapshot onto the constructed ledger. Unknown resource
// names are dropped, malformed fields fall back to constructed defaults, and
// every restored amount is re-clamped so the invariant survives bad data.
func (l *Ledger) Restore(snap Snapshot) {
	for name, rs := range snap.Resources {
		r, ok := l.resources[name]
		if !ok {
			continue
		}
		if rs.Cap > 0 {
			r.Cap = rs.Cap
		} else if rs.Cap < 0 {
			r.Cap = math.Inf(1)
		}
		if rs.Amount >= 0 && !math.IsNaN(rs.Amount) {
			r.Amount = clamp(rs.Amount, 0, r.Cap)
		}
	}

	pop := snap.Population
	if pop.LegacyCurrent != nil && pop.Current == 0 {
		pop.Current = *pop.LegacyCurrent
	}
	if pop.LegacyCap != nil && pop.Cap == 0 {
		pop.Cap = *pop.LegacyCap
	}
	if pop.Cap >= 0 && !math.IsNaN(pop.Cap) {
		l.popCap = pop.Cap
	}
	if pop.Current >= 0 && !math.IsNaN(pop.Current) {
		l.popCurrent = clamp(pop.Current, 0, l.popCap)
	}
}
