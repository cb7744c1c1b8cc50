package catalog

import "github.com/talgya/outpost/internal/ledger"

// TechnologyDef is one researchable technology.
type TechnologyDef struct {
	Key      string
	Name     string
	MaxLevel int

	BaseCost       ledger.Amounts
	CostGrowth     float64
	BaseDuration   float64
	DurationGrowth float64

	// RateBonusPerLevel adds a fractional production bonus per resource per
	// level, feeding the first stage of the ledger's multiplier pipeline.
	RateBonusPerLevel map[string]float64

	// SpeedBonusPerLevel is a fractional duration reduction per level for
	// the named queue domain ("construction", "research", "training").
	// Applied reductions are capped — see colony.MaxSpeedReduction.
	SpeedBonusDomain   string
	SpeedBonusPerLevel float64

	Prereqs      []Prereq
	LevelPrereqs map[int][]Prereq
}

// CostAt returns the research cost at the given level.
func (d *TechnologyDef) CostAt(level int) ledger.Amounts {
	return scaledCost(d.BaseCost, d.CostGrowth, level)
}

// DurationAt returns the unmodified research time in seconds at the given level.
func (d *TechnologyDef) DurationAt(level int) float64 {
	return scaledDuration(d.BaseDuration, d.DurationGrowth, level)
}

// Technology keys.
const (
	Forestry    = "forestry"
	Masonry     = "masonry"
	Metallurgy  = "metallurgy"
	Agronomy    = "agronomy"
	Hydraulics  = "hydraulics"
	Engineering = "engineering"
	Logistics   = "logistics"
	Ballistics  = "ballistics"
)

// Technologies is the master technology table.
var Technologies = map[string]*TechnologyDef{
	Forestry: {
		Key: Forestry, Name: "Forestry", MaxLevel: 8,
		BaseCost:     ledger.Amounts{"wood": 150, "food": 50},
		CostGrowth:   1.7,
		BaseDuration: 30, DurationGrowth: 1.6,
		RateBonusPerLevel: map[string]float64{"wood": 0.05},
	},
	Masonry: {
		Key: Masonry, Name: "Masonry", MaxLevel: 8,
		BaseCost:     ledger.Amounts{"stone": 150, "food": 50},
		CostGrowth:   1.7,
		BaseDuration: 30, DurationGrowth: 1.6,
		RateBonusPerLevel: map[string]float64{"stone": 0.05},
	},
	Metallurgy: {
		Key: Metallurgy, Name: "Metallurgy", MaxLevel: 6,
		BaseCost:     ledger.Amounts{"metal": 80, "stone": 100},
		CostGrowth:   1.8,
		BaseDuration: 45, DurationGrowth: 1.7,
		RateBonusPerLevel: map[string]float64{"metal": 0.06},
		Prereqs:           []Prereq{{Kind: PrereqBuilding, Key: Mine, Level: 3}},
	},
	Agronomy: {
		Key: Agronomy, Name: "Agronomy", MaxLevel: 8,
		BaseCost:     ledger.Amounts{"food": 120, "wood": 60},
		CostGrowth:   1.65,
		BaseDuration: 25, DurationGrowth: 1.55,
		RateBonusPerLevel: map[string]float64{"food": 0.05},
	},
	Hydraulics: {
		Key: Hydraulics, Name: "Hydraulics", MaxLevel: 8,
		BaseCost:     ledger.Amounts{"stone": 100, "metal": 20},
		CostGrowth:   1.65,
		BaseDuration: 25, DurationGrowth: 1.55,
		RateBonusPerLevel: map[string]float64{"water": 0.05},
	},
	Engineering: {
		Key: Engineering, Name: "Engineering", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"wood": 200, "stone": 200, "metal": 40},
		CostGrowth:   1.75,
		BaseDuration: 40, DurationGrowth: 1.65,
		SpeedBonusDomain:   "construction",
		SpeedBonusPerLevel: 0.08,
		LevelPrereqs: map[int][]Prereq{
			5: {{Kind: PrereqBuilding, Key: Laboratory, Level: 4}},
		},
	},
	Logistics: {
		Key: Logistics, Name: "Logistics", MaxLevel: 10,
		BaseCost:     ledger.Amounts{"food": 150, "wood": 100},
		CostGrowth:   1.7,
		BaseDuration: 35, DurationGrowth: 1.6,
		SpeedBonusDomain:   "training",
		SpeedBonusPerLevel: 0.08,
	},
	Ballistics: {
		Key: Ballistics, Name: "Ballistics", MaxLevel: 5,
		BaseCost:     ledger.Amounts{"metal": 120, "wood": 80},
		CostGrowth:   1.85,
		BaseDuration: 50, DurationGrowth: 1.7,
		Prereqs: []Prereq{{Kind: PrereqBuilding, Key: Barracks, Level: 3}},
	},
}
