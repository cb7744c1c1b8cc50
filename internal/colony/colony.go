// Package colony wires the ledger, the three timed queues, and the provisions
// sub-loop into one simulated base. Construction performed here follows a
// two-phase pattern: New builds every component with no cross-references,
// then wire injects read-only accessors — the ledger needs building bonuses,
// buildings need the ledger for affordability, and neither may own the other.
package colony

import (
	"log/slog"

	"github.com/talgya/outpost/internal/catalog"
	"github.com/talgya/outpost/internal/events"
	"github.com/talgya/outpost/internal/ledger"
	"github.com/talgya/outpost/internal/queue"
	"github.com/talgya/outpost/internal/sim"
)

// MaxSpeedReduction caps how much tech bonuses can shorten a queue duration.
const MaxSpeedReduction = 0.8

// BaseHousing is the population cap before any habitat is built.
const BaseHousing = 10

// HQBonusPerLevel is the global production bonus granted per headquarters level.
const HQBonusPerLevel = 0.02

// BuildOrder is the construction queue payload.
type BuildOrder struct {
	Building string `json:"building"`
}

// ResearchOrder is the research queue payload.
type ResearchOrder struct {
	Tech string `json:"tech"`
}

// TrainOrder is the training queue payload.
type TrainOrder struct {
	Unit  string `json:"unit"`
	Count int    `json:"count"`
}

// Colony is one simulated base.
type Colony struct {
	clock sim.Clock
	bus   events.Bus
	bank  *ledger.Ledger

	construction *queue.Engine[BuildOrder]
	research     *queue.Engine[ResearchOrder]
	training     *queue.Engine[TrainOrder]

	buildings map[string]int // building key → completed level
	techs     map[string]int // tech key → completed level
	units     map[string]int // unit key → trained count

	provisions *Provisions

	// Lifetime completion counters per queue domain, for the status report.
	completions map[string]int

	// heroBonus is an injected read-only accessor for the per-resource
	// stationing bonus owned by the (external) hero system. Wired after
	// construction; nil means no bonus.
	heroBonus func() map[string]float64

	// Timed global production buff. Expiry in epoch millis; zero = none.
	buffBonus   float64
	buffExpires int64
}

// New builds a colony with starting resources and empty queues. Call Wire
// before the first tick.
func New(clock sim.Clock, bus events.Bus) *Colony {
	c := &Colony{
		clock:       clock,
		bus:         bus,
		bank:        ledger.New(bus, catalog.StartingResources),
		buildings:   make(map[string]int, len(catalog.StartingBuildings)),
		techs:       make(map[string]int),
		units:       make(map[string]int),
		completions: make(map[string]int),
	}
	for key, level := range catalog.StartingBuildings {
		c.buildings[key] = level
	}

	c.construction = queue.NewEngine("construction", clock, bus, c.bank,
		ladderFor("construction"),
		func(o BuildOrder) string { return o.Building },
		c.applyBuild)
	c.research = queue.NewEngine("research", clock, bus, c.bank,
		ladderFor("research"),
		func(o ResearchOrder) string { return o.Tech },
		c.applyResearch)
	c.training = queue.NewEngine("training", clock, bus, c.bank,
		ladderFor("training"),
		func(o TrainOrder) string { return o.Unit },
		c.applyTraining)

	c.provisions = NewProvisions(bus, c.bank)
	return c
}

// Wire performs the second construction phase: slot ladders learn how to read
// the headquarters level, the provisions loop learns the headcount, and the
// optional hero-bonus accessor is attached. Safe to call once, before ticking.
func (c *Colony) Wire(heroBonus func() map[string]float64) {
	hqLevel := func() int { return c.buildings[catalog.Headquarters] }
	c.construction.Slots().WireLevel(hqLevel)
	c.research.Slots().WireLevel(hqLevel)
	c.training.Slots().WireLevel(hqLevel)
	c.heroBonus = heroBonus
	c.refreshDerived()

	// Fresh colonies get their settlers here; a later Restore overwrites.
	if current, _ := c.bank.Population(); current == 0 {
		c.bank.GrowPopulation(catalog.StartingPopulation)
	}
}

func ladderFor(domain string) *queue.SlotLadder {
	defs := catalog.SlotTiers[domain]
	tiers := make([]queue.SlotTier, len(defs))
	for i, d := range defs {
		tiers[i] = queue.SlotTier{Capacity: d.Capacity, RequiredLevel: d.RequiredLevel, Premium: d.Premium}
	}
	return queue.NewSlotLadder(tiers)
}

// Ledger exposes the resource bank.
func (c *Colony) Ledger() *ledger.Ledger {
	return c.bank
}

// Construction exposes the construction queue.
func (c *Colony) Construction() *queue.Engine[BuildOrder] {
	return c.construction
}

// Research exposes the research queue.
func (c *Colony) Research() *queue.Engine[ResearchOrder] {
	return c.research
}

// Training exposes the training queue.
func (c *Colony) Training() *queue.Engine[TrainOrder] {
	return c.training
}

// Provisions exposes the food/water sub-loop.
func (c *Colony) Provisions() *Provisions {
	return c.provisions
}

// BuildingLevel returns a building's completed level.
func (c *Colony) BuildingLevel(key string) int {
	return c.buildings[key]
}

// TechLevel returns a technology's completed level.
func (c *Colony) TechLevel(key string) int {
	return c.techs[key]
}

// UnitCount returns how many of a unit have been trained.
func (c *Colony) UnitCount(key string) int {
	return c.units[key]
}

// Levels returns copies of the completed building, tech, and unit maps.
func (c *Colony) Levels() (buildings, techs, units map[string]int) {
	return copyLevels(c.buildings), copyLevels(c.techs), copyLevels(c.units)
}

// CompletionTotals returns a copy of the lifetime per-domain completion counts.
func (c *Colony) CompletionTotals() map[string]int {
	return copyLevels(c.completions)
}

// ApplyAccelerant shortens the named queue's active timer, the consumable
// speed-up path. A reduction past the remaining time matures the head, which
// then completes on the next tick. Unknown domains change nothing.
func (c *Colony) ApplyAccelerant(domain string, seconds float64) {
	switch domain {
	case "construction":
		c.construction.ReduceActiveTimer(seconds)
	case "research":
		c.research.ReduceActiveTimer(seconds)
	case "training":
		c.training.ReduceActiveTimer(seconds)
	}
}

// ActivateBuff applies a global timed production bonus, replacing any
// existing buff. Duration is wall clock, like queue timers.
func (c *Colony) ActivateBuff(bonus float64, durationSeconds float64) {
	c.buffBonus = bonus
	c.buffExpires = c.clock.Now().UnixMilli() + int64(durationSeconds*1000)
	c.refreshDerived()
}

func (c *Colony) buffActive() bool {
	return c.buffExpires > 0 && c.clock.Now().UnixMilli() < c.buffExpires
}

// prereqsMet checks a prerequisite list against completed levels.
func (c *Colony) prereqsMet(reqs []catalog.Prereq) bool {
	for _, r := range reqs {
		switch r.Kind {
		case catalog.PrereqBuilding:
			if c.buildings[r.Key] < r.Level {
				return false
			}
		case catalog.PrereqTechnology:
			if c.techs[r.Key] < r.Level {
				return false
			}
		}
	}
	return true
}

// speedFactor returns the duration multiplier for a queue domain after tech
// speed bonuses, floored at 1-MaxSpeedReduction.
func (c *Colony) speedFactor(domain string) float64 {
	reduction := 0.0
	for key, level := range c.techs {
		def := catalog.Technologies[key]
		if def != nil && def.SpeedBonusDomain == domain {
			reduction += def.SpeedBonusPerLevel * float64(level)
		}
	}
	if reduction > MaxSpeedReduction {
		reduction = MaxSpeedReduction
	}
	return 1 - reduction
}

// refreshDerived recomputes everything derived from completed levels:
// production rates, storage caps, housing, and provisions pool shape.
func (c *Colony) refreshDerived() {
	// Storage caps: starting caps plus warehouse contribution.
	storage := catalog.Buildings[catalog.Warehouse].StoragePerLevel
	whLevel := c.buildings[catalog.Warehouse]
	for _, def := range catalog.StartingResources {
		if def.Cap <= 0 {
			continue // unbounded stays unbounded
		}
		c.bank.SetCap(def.Name, def.Cap+storage[def.Name]*float64(whLevel))
	}

	// Housing.
	housing := float64(BaseHousing)
	housing += catalog.Buildings[catalog.Habitat].HousingPerLevel * float64(c.buildings[catalog.Habitat])
	c.bank.SetPopulationCap(housing)

	// Production rates through the modifier pipeline.
	var sources []ledger.RateSource
	for key, level := range c.buildings {
		def := catalog.Buildings[key]
		if def == nil || len(def.EffectsPerLevel) == 0 {
			continue
		}
		sources = append(sources, ledger.RateSource{EffectsPerLevel: def.EffectsPerLevel, Level: level})
	}

	techBonus := make(map[string]float64)
	for key, level := range c.techs {
		def := catalog.Technologies[key]
		if def == nil {
			continue
		}
		for res, per := range def.RateBonusPerLevel {
			techBonus[res] += per * float64(level)
		}
	}

	mods := ledger.Modifiers{
		TechBonus:   techBonus,
		HQTierBonus: HQBonusPerLevel * float64(c.buildings[catalog.Headquarters]),
	}
	if c.heroBonus != nil {
		mods.HeroBonus = c.heroBonus()
	}
	if c.buffActive() {
		mods.BuffBonus = c.buffBonus
	}
	c.bank.RecalculateRates(sources, mods)

	// Provisions bins follow granary/cistern levels.
	c.provisions.ConfigurePools([]PoolConfig{
		{Resource: "food", Bins: c.buildings[catalog.Granary], BinCapacity: catalog.Buildings[catalog.Granary].PoolPerLevel},
		{Resource: "water", Bins: c.buildings[catalog.Cistern], BinCapacity: catalog.Buildings[catalog.Cistern].PoolPerLevel},
	})
}

// Systems returns the per-tick systems to register on the loop, in the order
// they must run: resource integration, then queue expiry, then provisions.
func (c *Colony) Systems() []sim.System {
	return []sim.System{
		systemFunc{"ledger", func(dt float64) { c.bank.Update(dt) }},
		systemFunc{"queues", func(dt float64) { c.tickQueues() }},
		systemFunc{"provisions", func(dt float64) { c.provisions.Update(dt) }},
	}
}

func (c *Colony) tickQueues() {
	// Buff expiry shows up as a rate change on the tick it lapses.
	if c.buffExpires > 0 && !c.buffActive() {
		c.buffExpires = 0
		c.buffBonus = 0
		c.refreshDerived()
		slog.Info("production buff expired")
	}
	c.construction.Tick()
	c.research.Tick()
	c.training.Tick()
}

type systemFunc struct {
	name string
	fn   func(dt float64)
}

func (s systemFunc) Name() string      { return s.name }
func (s systemFunc) Update(dt float64) { s.fn(dt) }
