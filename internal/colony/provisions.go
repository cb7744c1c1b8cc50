package colony

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/outpost/internal/events"
	"github.com/talgya/outpost/internal/ledger"
)

// Per-capita drain and population drift rates, all per second.
const (
	FoodPerCapita  = 0.02
	WaterPerCapita = 0.02
	GrowthRate     = 0.01
	ShrinkRate     = 0.02
)

// yieldSeed fixes the growth-drift noise curve. The drift is keyed by tick
// count, so an offline replay of N steps reproduces the live loop exactly.
const yieldSeed = 1897

// PoolConfig describes one provisions pool: an instance count and per-bin
// capacity, both derived from building levels.
type PoolConfig struct {
	Resource    string
	Bins        int
	BinCapacity float64
}

type bin struct {
	Stock    float64
	Capacity float64
}

type pool struct {
	resource    string
	perCapita   float64
	bins        []bin
	drainCursor int
}

func (p *pool) available() float64 {
	total := 0.0
	for _, b := range p.bins {
		total += b.Stock
	}
	return total
}

// Provisions runs the food/water consumption sub-loop: colonists drain local
// granary and cistern bins, not the global ledger, and the bins are topped up
// from ledger stock each tick. The same bounded-sub-pool shape fits any
// stock-to-sub-stock transfer.
type Provisions struct {
	bus  events.Bus
	bank *ledger.Ledger

	pools     []*pool
	shortfall bool
	tickCount uint64
	noise     opensimplex.Noise
}

// NewProvisions creates the sub-loop with no pools; ConfigurePools shapes it.
func NewProvisions(bus events.Bus, bank *ledger.Ledger) *Provisions {
	return &Provisions{
		bus:   bus,
		bank:  bank,
		noise: opensimplex.NewNormalized(yieldSeed),
	}
}

// ConfigurePools reshapes the bin layout after building levels change.
// Existing stock is preserved bin-for-bin; stock in bins that no longer
// exist, or above a shrunken capacity, flows back to the ledger.
func (p *Provisions) ConfigurePools(cfgs []PoolConfig) {
	next := make([]*pool, 0, len(cfgs))
	for _, cfg := range cfgs {
		np := &pool{resource: cfg.Resource, perCapita: perCapitaFor(cfg.Resource)}
		old := p.poolFor(cfg.Resource)

		returned := 0.0
		for i := 0; i < cfg.Bins; i++ {
			b := bin{Capacity: cfg.BinCapacity}
			if old != nil && i < len(old.bins) {
				b.Stock = old.bins[i].Stock
				if b.Stock > b.Capacity {
					returned += b.Stock - b.Capacity
					b.Stock = b.Capacity
				}
			}
			np.bins = append(np.bins, b)
		}
		if old != nil {
			for i := cfg.Bins; i < len(old.bins); i++ {
				returned += old.bins[i].Stock
			}
			np.drainCursor = old.drainCursor
		}
		if returned > 0 {
			p.bank.Add(ledger.Amounts{cfg.Resource: returned})
		}
		next = append(next, np)
	}
	p.pools = next
}

func perCapitaFor(resource string) float64 {
	if resource == "water" {
		return WaterPerCapita
	}
	return FoodPerCapita
}

func (p *Provisions) poolFor(resource string) *pool {
	for _, pl := range p.pools {
		if pl.resource == resource {
			return pl
		}
	}
	return nil
}

// Shortfall reports whether the colony is currently under-supplied.
func (p *Provisions) Shortfall() bool {
	return p.shortfall
}

// Stored returns total sub-pool stock for one resource.
func (p *Provisions) Stored(resource string) float64 {
	if pl := p.poolFor(resource); pl != nil {
		return pl.available()
	}
	return 0
}

// Update runs one tick: top up bins from the ledger, drain round-robin by
// population demand, then grow or shrink the population. The shortfall signal
// is edge-triggered — it fires once on entering under-supply and once on
// leaving it, never every tick in between.
func (p *Provisions) Update(dt float64) {
	p.tickCount++

	headcount := float64(p.bank.PopulationCount())
	satisfied := true

	for _, pl := range p.pools {
		p.refill(pl)
		demand := headcount * pl.perCapita * dt
		if demand <= 0 {
			continue
		}
		if p.drain(pl, demand) < demand-1e-9 {
			satisfied = false
		}
	}

	if !satisfied {
		if !p.shortfall {
			p.shortfall = true
			p.bus.Publish(events.Event{Type: events.TypeShortfallBegan})
		}
		p.bank.ShrinkPopulation(ShrinkRate * dt)
		return
	}

	if p.shortfall {
		p.shortfall = false
		p.bus.Publish(events.Event{Type: events.TypeShortfallEnded})
	}
	p.bank.GrowPopulation(GrowthRate * p.yieldDrift() * dt)
}

// yieldDrift modulates growth organically around 1.0, deterministic per tick.
func (p *Provisions) yieldDrift() float64 {
	return 0.75 + 0.5*p.noise.Eval2(float64(p.tickCount)*0.001, 0)
}

// refill moves ledger stock into the pool's free bin space.
func (p *Provisions) refill(pl *pool) {
	free := 0.0
	for _, b := range pl.bins {
		free += b.Capacity - b.Stock
	}
	amount := math.Min(free, p.bank.Amount(pl.resource))
	if amount <= 0 {
		return
	}
	if !p.bank.Spend(ledger.Amounts{pl.resource: amount}) {
		return
	}
	for i := range pl.bins {
		b := &pl.bins[i]
		take := math.Min(amount, b.Capacity-b.Stock)
		b.Stock += take
		amount -= take
		if amount <= 0 {
			break
		}
	}
}

// drain removes up to need from the pool, round-robin across bins so no
// single bin empties while its siblings stay full. Returns what was drained.
func (p *Provisions) drain(pl *pool, need float64) float64 {
	if len(pl.bins) == 0 {
		return 0
	}
	drained := 0.0
	for i := 0; i < len(pl.bins) && drained < need; i++ {
		idx := (pl.drainCursor + i) % len(pl.bins)
		b := &pl.bins[idx]
		take := math.Min(need-drained, b.Stock)
		b.Stock -= take
		drained += take
	}
	pl.drainCursor = (pl.drainCursor + 1) % len(pl.bins)
	return drained
}
