package catalog

import "github.com/talgya/outpost/internal/ledger"

// UnitDef is one trainable unit type. Training cost and time scale linearly
// with the batch size rather than with a level.
type UnitDef struct {
	Key  string
	Name string

	CostPerUnit     ledger.Amounts
	DurationPerUnit float64 // seconds per unit trained

	Prereqs []Prereq
}

// BatchCost returns the upfront cost for training count units.
func (d *UnitDef) BatchCost(count int) ledger.Amounts {
	out := make(ledger.Amounts, len(d.CostPerUnit))
	for name, amt := range d.CostPerUnit {
		out[name] = amt * float64(count)
	}
	return out
}

// BatchDuration returns the unmodified training time for count units.
func (d *UnitDef) BatchDuration(count int) float64 {
	return d.DurationPerUnit * float64(count)
}

// Unit keys.
const (
	Militia = "militia"
	Archer  = "archer"
	Guard   = "guard"
)

// Units is the master unit table.
var Units = map[string]*UnitDef{
	Militia: {
		Key: Militia, Name: "Militia",
		CostPerUnit:     ledger.Amounts{"food": 20, "wood": 10},
		DurationPerUnit: 8,
		Prereqs:         []Prereq{{Kind: PrereqBuilding, Key: Barracks, Level: 1}},
	},
	Archer: {
		Key: Archer, Name: "Archer",
		CostPerUnit:     ledger.Amounts{"food": 25, "wood": 30},
		DurationPerUnit: 12,
		Prereqs: []Prereq{
			{Kind: PrereqBuilding, Key: Barracks, Level: 2},
			{Kind: PrereqTechnology, Key: Ballistics, Level: 1},
		},
	},
	Guard: {
		Key: Guard, Name: "Guard",
		CostPerUnit:     ledger.Amounts{"food": 30, "metal": 15},
		DurationPerUnit: 15,
		Prereqs:         []Prereq{{Kind: PrereqBuilding, Key: Barracks, Level: 3}},
	},
}

// SlotTierDef defines one slot capacity step for a queue domain.
type SlotTierDef struct {
	Capacity      int
	RequiredLevel int // headquarters level threshold
	Premium       bool
}

// SlotTiers maps queue domain to its slot ladder. Premium tiers additionally
// require a purchased slot each.
var SlotTiers = map[string][]SlotTierDef{
	"construction": {
		{Capacity: 1, RequiredLevel: 0},
		{Capacity: 2, RequiredLevel: 3},
		{Capacity: 3, RequiredLevel: 6},
		{Capacity: 4, RequiredLevel: 6, Premium: true},
	},
	"research": {
		{Capacity: 1, RequiredLevel: 0},
		{Capacity: 2, RequiredLevel: 5},
	},
	"training": {
		{Capacity: 1, RequiredLevel: 0},
		{Capacity: 2, RequiredLevel: 4},
		{Capacity: 3, RequiredLevel: 7},
		{Capacity: 4, RequiredLevel: 7, Premium: true},
	},
}

// StartingResources seeds a fresh colony's ledger.
var StartingResources = []ledger.Def{
	{Name: "wood", Amount: 300, Cap: 5000},
	{Name: "stone", Amount: 300, Cap: 5000},
	{Name: "metal", Amount: 50, Cap: 2500},
	{Name: "food", Amount: 200, Cap: 3000},
	{Name: "water", Amount: 200, Cap: 3000},
	{Name: "knowledge", Amount: 0, Cap: 0}, // unbounded
}
