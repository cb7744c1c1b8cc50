package queue

// SlotTier is one capacity step of a queue's slot ladder. A tier is satisfied
// when the external prerequisite level reaches RequiredLevel; premium tiers
// additionally consume one purchased slot each.
type SlotTier struct {
	Capacity      int
	RequiredLevel int
	Premium       bool
}

// SlotLadder evaluates queue capacity from an ordered tier list. The external
// level accessor is injected after construction — it typically reads the
// headquarters level, which does not exist yet when queues are built.
type SlotLadder struct {
	tiers     []SlotTier
	levelOf   func() int
	purchased int // premium slot purchases
	bonus     int // temporary bonus slots stacked on top
}

// NewSlotLadder creates a ladder over the given tiers. Tiers must be in
// strictly increasing capacity order.
func NewSlotLadder(tiers []SlotTier) *SlotLadder {
	return &SlotLadder{tiers: tiers}
}

// WireLevel injects the prerequisite level accessor. Until wired, only tiers
// with RequiredLevel zero count as satisfied.
func (s *SlotLadder) WireLevel(levelOf func() int) {
	s.levelOf = levelOf
}

// MaxSlots returns the capacity of the highest satisfied tier — not the
// first — plus any bonus slots.
func (s *SlotLadder) MaxSlots() int {
	level := 0
	if s.levelOf != nil {
		level = s.levelOf()
	}

	best := 0
	premiumSeen := 0
	for _, t := range s.tiers {
		if t.Premium {
			premiumSeen++
		}
		if level < t.RequiredLevel {
			continue
		}
		if t.Premium && s.purchased < premiumSeen {
			continue
		}
		if t.Capacity > best {
			best = t.Capacity
		}
	}
	return best + s.bonus
}

// PurchasePremium records one premium slot purchase, unlocking the next
// premium tier whose level prerequisite is already met.
func (s *SlotLadder) PurchasePremium() {
	s.purchased++
}

// Purchased returns the premium purchase counter.
func (s *SlotLadder) Purchased() int {
	return s.purchased
}

// AddBonus grants extra slots on top of the tier capacity. Negative deltas
// remove them, floored at zero.
func (s *SlotLadder) AddBonus(delta int) {
	s.bonus += delta
	if s.bonus < 0 {
		s.bonus = 0
	}
}

// Bonus returns the current bonus slot count.
func (s *SlotLadder) Bonus() int {
	return s.bonus
}

// restore reloads persisted counters.
func (s *SlotLadder) restore(purchased, bonus int) {
	if purchased >= 0 {
		s.purchased = purchased
	}
	if bonus >= 0 {
		s.bonus = bonus
	}
}
