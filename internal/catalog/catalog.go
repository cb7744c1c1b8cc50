// Package catalog holds the static balance tables consumed by the simulation:
// building, technology, and unit definitions, prerequisite sets, and slot
// tier ladders. The tables are plain data — nothing here ticks or mutates.
package catalog

import (
	"math"

	"github.com/talgya/outpost/internal/ledger"
)

// PrereqKind says what a prerequisite points at.
type PrereqKind int

const (
	PrereqBuilding PrereqKind = iota
	PrereqTechnology
)

// Prereq is one external requirement: a building or technology at a level.
type Prereq struct {
	Kind  PrereqKind
	Key   string
	Level int
}

// scaledCost multiplies every entry of base by growth^(level-1), rounded to
// whole resources. Level 1 pays exactly the base cost.
func scaledCost(base ledger.Amounts, growth float64, level int) ledger.Amounts {
	mul := math.Pow(growth, float64(level-1))
	out := make(ledger.Amounts, len(base))
	for name, amt := range base {
		out[name] = math.Round(amt * mul)
	}
	return out
}

// scaledDuration multiplies the base duration by growth^(level-1).
func scaledDuration(base, growth float64, level int) float64 {
	return base * math.Pow(growth, float64(level-1))
}
