package colony

import (
	"github.com/talgya/outpost/internal/ledger"
	"github.com/talgya/outpost/internal/queue"
)

// Snapshot is the persisted shape of a whole colony.
type Snapshot struct {
	Ledger       ledger.Snapshot               `json:"ledger"`
	Construction queue.Snapshot[BuildOrder]    `json:"construction"`
	Research     queue.Snapshot[ResearchOrder] `json:"research"`
	Training     queue.Snapshot[TrainOrder]    `json:"training"`
	Buildings    map[string]int                `json:"buildings"`
	Technologies map[string]int                `json:"technologies"`
	Units        map[string]int                `json:"units"`
	Provisions   ProvisionsSnapshot            `json:"provisions"`
	Completions  map[string]int                `json:"completions,omitempty"`
	BuffBonus    float64                       `json:"buffBonus,omitempty"`
	BuffExpires  int64                         `json:"buffExpires,omitempty"`
}

// ProvisionsSnapshot persists the sub-pool bins and loop state.
type ProvisionsSnapshot struct {
	Pools     []PoolSnapshot `json:"pools"`
	Shortfall bool           `json:"shortfall"`
	Tick      uint64         `json:"tick"`
}

// PoolSnapshot persists one pool's bin stocks.
type PoolSnapshot struct {
	Resource    string    `json:"resource"`
	Bins        []float64 `json:"bins"`
	DrainCursor int       `json:"drainCursor"`
}

// Serialize captures the colony.
func (c *Colony) Serialize() Snapshot {
	return Snapshot{
		Ledger:       c.bank.Serialize(),
		Construction: c.construction.Serialize(),
		Research:     c.research.Serialize(),
		Training:     c.training.Serialize(),
		Buildings:    copyLevels(c.buildings),
		Technologies: copyLevels(c.techs),
		Units:        copyLevels(c.units),
		Provisions:   c.provisions.Serialize(),
		Completions:  copyLevels(c.completions),
		BuffBonus:    c.buffBonus,
		BuffExpires:  c.buffExpires,
	}
}

// Restore reloads a snapshot. Call after Wire. Restore deliberately leaves
// already-expired queue heads in place: an offline replay must complete them
// at their virtual moment so production rates change mid-replay, not before
// it. Run DrainExpired after the replay (or instead of one) to settle any
// head the replay window did not cover, before the live loop starts.
func (c *Colony) Restore(snap Snapshot) {
	restoreLevels(c.buildings, snap.Buildings)
	restoreLevels(c.techs, snap.Technologies)
	restoreLevels(c.units, snap.Units)
	restoreLevels(c.completions, snap.Completions)
	c.buffBonus = snap.BuffBonus
	c.buffExpires = snap.BuffExpires

	c.bank.Restore(snap.Ledger)
	c.construction.Restore(snap.Construction)
	c.research.Restore(snap.Research)
	c.training.Restore(snap.Training)

	c.refreshDerived()
	c.provisions.Restore(snap.Provisions)
}

// DrainExpired applies every queue head whose end time already passed,
// construction first since a finished building may be the prerequisite a
// drained research head relies on. Sub-threshold gaps and time beyond the
// replay window never reach the replay, so this pass settles what it skipped.
func (c *Colony) DrainExpired() {
	c.construction.DrainExpired()
	c.research.DrainExpired()
	c.training.DrainExpired()
}

func copyLevels(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// restoreLevels overlays persisted levels, dropping junk values.
func restoreLevels(dst, src map[string]int) {
	for k, v := range src {
		if v >= 0 {
			dst[k] = v
		}
	}
}

// Serialize captures the provisions state.
func (p *Provisions) Serialize() ProvisionsSnapshot {
	snap := ProvisionsSnapshot{Shortfall: p.shortfall, Tick: p.tickCount}
	for _, pl := range p.pools {
		ps := PoolSnapshot{Resource: pl.resource, DrainCursor: pl.drainCursor}
		for _, b := range pl.bins {
			ps.Bins = append(ps.Bins, b.Stock)
		}
		snap.Pools = append(snap.Pools, ps)
	}
	return snap
}

// Restore overlays persisted bin stocks onto the configured pool shape.
// Extra persisted bins are dropped; missing ones stay empty; stocks clamp to
// the bin capacity the current building levels allow.
func (p *Provisions) Restore(snap ProvisionsSnapshot) {
	p.shortfall = snap.Shortfall
	p.tickCount = snap.Tick
	for _, ps := range snap.Pools {
		pl := p.poolFor(ps.Resource)
		if pl == nil {
			continue
		}
		for i, stock := range ps.Bins {
			if i >= len(pl.bins) {
				break
			}
			if stock < 0 {
				stock = 0
			}
			if stock > pl.bins[i].Capacity {
				stock = pl.bins[i].Capacity
			}
			pl.bins[i].Stock = stock
		}
		if len(pl.bins) > 0 && ps.DrainCursor >= 0 {
			pl.drainCursor = ps.DrainCursor % len(pl.bins)
		}
	}
}
