package catalog

import "github.com/talgya/outpost/internal/ledger"

// BuildingDef is one constructible structure.
type BuildingDef struct {
	Key      string
	Name     string
	MaxLevel int

	BaseCost       ledger.Amounts
	CostGrowth     float64
	BaseDuration   float64 // seconds at level 1
	DurationGrowth float64

	// EffectsPerLevel is per-second production contributed per level,
	// summed into the ledger's rate recalculation.
	EffectsPerLevel ledger.Amounts

	// StoragePerLevel raises resource caps per level.
	StoragePerLevel ledger.Amounts

	// HousingPerLevel raises the population cap per level.
	HousingPerLevel float64

	// PoolResource/PoolPerLevel declare a provisions sub-pool: each built
	// level adds capacity to this structure's local stock of the resource.
	PoolResource string
	PoolPerLevel float64

	Prereqs      []Prereq
	LevelPrereqs map[int][]Prereq // extra requirements for specific levels
}

// CostAt returns the upfront cost to reach the given level.
func (d *BuildingDef) CostAt(level int) ledger.Amounts {
	return scaledCost(d.BaseCost, d.CostGrowth, level)
}

// DurationAt returns the unmodified build time in seconds for the given level.
func (d *BuildingDef) DurationAt(level int) float64 {
	return scaledDuration(d.BaseDuration, d.DurationGrowth, level)
}

// Building keys.
const (
	Headquarters = "headquarters"
	Sawmill      = "sawmill"
	Quarry       = "quarry"
	Mine         = "mine"
	Farm         = "farm"
	Well         = "well"
	Warehouse    = "warehouse"
	Habitat      = "habitat"
	Granary      = "granary"
	Cistern      = "cistern"
	Laboratory   = "laboratory"
	Barracks     = "barracks"
)

// StartingBuildings are the levels a fresh colony begins with.
var StartingBuildings = map[string]int{
	Headquarters: 1,
	Farm:         1,
	Well:         1,
	Granary:      1,
	Cistern:      1,
	Habitat:      1,
}

// StartingPopulation is the settler count of a fresh colony.
const StartingPopulation = 4

// Buildings is the master building table, keyed by building key.
var Buildings = map[string]*BuildingDef{
	Headquarters: {
		Key: Headquarters, Name: "Headquarters", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"wood": 200, "stone": 200},
		CostGrowth:   1.8,
		BaseDuration: 20, DurationGrowth: 1.9,
		LevelPrereqs: map[int][]Prereq{
			5: {{Kind: PrereqBuilding, Key: Warehouse, Level: 3}},
			8: {{Kind: PrereqTechnology, Key: Engineering, Level: 2}},
		},
	},
	Sawmill: {
		Key: Sawmill, Name: "Sawmill", MaxLevel: 15,
		BaseCost:     ledger.Amounts{"wood": 60, "stone": 20},
		CostGrowth:   1.6,
		BaseDuration: 10, DurationGrowth: 1.5,
		EffectsPerLevel: ledger.Amounts{"wood": 1.2},
	},
	Quarry: {
		Key: Quarry, Name: "Quarry", MaxLevel: 15,
		BaseCost:     ledger.Amounts{"wood": 80, "stone": 10},
		CostGrowth:   1.6,
		BaseDuration: 12, DurationGrowth: 1.5,
		EffectsPerLevel: ledger.Amounts{"stone": 1.0},
	},
	Mine: {
		Key: Mine, Name: "Mine", MaxLevel: 12,
		BaseCost:     ledger.Amounts{"wood": 120, "stone": 150},
		CostGrowth:   1.7,
		BaseDuration: 18, DurationGrowth: 1.6,
		EffectsPerLevel: ledger.Amounts{"metal": 0.5},
		Prereqs:         []Prereq{{Kind: PrereqBuilding, Key: Quarry, Level: 2}},
	},
	Farm: {
		Key: Farm, Name: "Farm", MaxLevel: 15,
		BaseCost:     ledger.Amounts{"wood": 50, "stone": 30},
		CostGrowth:   1.55,
		BaseDuration: 10, DurationGrowth: 1.5,
		EffectsPerLevel: ledger.Amounts{"food": 1.5},
	},
	Well: {
		Key: Well, Name: "Well", MaxLevel: 15,
		BaseCost:     ledger.Amounts{"stone": 60},
		CostGrowth:   1.55,
		BaseDuration: 8, DurationGrowth: 1.5,
		EffectsPerLevel: ledger.Amounts{"water": 1.5},
	},
	Warehouse: {
		Key: Warehouse, Name: "Warehouse", MaxLevel: 12,
		BaseCost:     ledger.Amounts{"wood": 150, "stone": 100},
		CostGrowth:   1.7,
		BaseDuration: 15, DurationGrowth: 1.6,
		StoragePerLevel: ledger.Amounts{"wood": 1500, "stone": 1500, "metal": 750},
	},
	Habitat: {
		Key: Habitat, Name: "Habitat", MaxLevel: 12,
		BaseCost:     ledger.Amounts{"wood": 100, "stone": 80},
		CostGrowth:   1.65,
		BaseDuration: 14, DurationGrowth: 1.55,
		HousingPerLevel: 8,
	},
	Granary: {
		Key: Granary, Name: "Granary", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"wood": 90, "stone": 60},
		CostGrowth:   1.6,
		BaseDuration: 12, DurationGrowth: 1.5,
		PoolResource: "food", PoolPerLevel: 200,
	},
	Cistern: {
		Key: Cistern, Name: "Cistern", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"stone": 120},
		CostGrowth:   1.6,
		BaseDuration: 12, DurationGrowth: 1.5,
		PoolResource: "water", PoolPerLevel: 200,
	},
	Laboratory: {
		Key: Laboratory, Name: "Laboratory", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"wood": 200, "stone": 150, "metal": 50},
		CostGrowth:   1.75,
		BaseDuration: 25, DurationGrowth: 1.7,
		Prereqs: []Prereq{{Kind: PrereqBuilding, Key: Headquarters, Level: 2}},
	},
	Barracks: {
		Key: Barracks, Name: "Barracks", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"wood": 180, "stone": 120, "metal": 30},
		CostGrowth:   1.7,
		BaseDuration: 20, DurationGrowth: 1.6,
		Prereqs: []Prereq{{Kind: PrereqBuilding, Key: Headquarters, Level: 2}},
	},
}
