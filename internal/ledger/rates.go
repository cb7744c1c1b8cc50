package ledger

import "github.com/talgya/outpost/internal/events"

// RateSource is one structure contributing production: a per-level effect
// table scaled by the structure's current level.
type RateSource struct {
	EffectsPerLevel Amounts
	Level           int
}

// Modifiers is the layered multiplier pipeline applied on top of the summed
// base rates. Each field is a fractional bonus (0.25 = +25%). The application
// order is a balance contract, not an accident: each stage multiplies the
// running total, so the headquarters-tier and timed-buff bonuses compound
// with the targeted tech and stationing bonuses rather than adding to base.
type Modifiers struct {
	TechBonus   map[string]float64 // per-resource, applied first
	HQTierBonus float64            // global, applied second
	HeroBonus   map[string]float64 // per-resource stationing bonus, third
	BuffBonus   float64            // global timed buff, last
}

// RecalculateRates resets every resource's per-second rate to zero, sums the
// per-level effects across all sources, then runs the modifier pipeline in
// fixed order: tech → HQ tier → hero stationing → timed buff.
func (l *Ledger) RecalculateRates(sources []RateSource, mods Modifiers) {
	for _, r := range l.resources {
		r.PerSecond = 0
	}

	for _, src := range sources {
		if src.Level <= 0 {
			continue
		}
		for name, perLevel := range src.EffectsPerLevel {
			if r, ok := l.resources[name]; ok {
				r.PerSecond += perLevel * float64(src.Level)
			}
		}
	}

	for name, r := range l.resources {
		if r.PerSecond == 0 {
			continue
		}
		r.PerSecond *= 1 + mods.TechBonus[name]
		r.PerSecond *= 1 + mods.HQTierBonus
		r.PerSecond *= 1 + mods.HeroBonus[name]
		r.PerSecond *= 1 + mods.BuffBonus
	}

	l.bus.Publish(events.Event{Type: events.TypeRatesChanged})
}
