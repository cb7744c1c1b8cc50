package queue

import "github.com/google/uuid"

// Snapshot is the persisted shape of one queue.
type Snapshot[P any] struct {
	Items          []Item[P] `json:"items"`
	BonusSlotCount int       `json:"bonusSlotCount"`
	PurchasedSlots int       `json:"purchasedSlots"`
}

// Serialize captures the queue contents and slot counters.
func (e *Engine[P]) Serialize() Snapshot[P] {
	return Snapshot[P]{
		Items:          e.Items(),
		BonusSlotCount: e.slots.bonus,
		PurchasedSlots: e.slots.purchased,
	}
}

// Restore reloads a snapshot. Defensive repairs rather than rejection: items
// missing an ID get a fresh one, stray timer fields on non-head items are
// stripped (only index 0 may carry a clock), and a head with no timer —
// legacy saves stored none for instant items — is started fresh.
//
// Restore does not drain already-expired heads itself; the owning manager
// calls DrainExpired once every domain is restored, so completion effects
// land on fully-loaded state.
func (e *Engine[P]) Restore(snap Snapshot[P]) {
	e.items = make([]Item[P], 0, len(snap.Items))
	for i, item := range snap.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if i > 0 {
			item.StartedAt = nil
			item.EndsAt = nil
		}
		e.items = append(e.items, item)
	}

	if len(e.items) > 0 && e.items[0].EndsAt == nil {
		e.startHead(e.clock.Now().UnixMilli())
	}

	e.slots.restore(snap.PurchasedSlots, snap.BonusSlotCount)
}

// DrainExpired applies every head whose end time already passed — time that
// elapsed while the save sat unloaded is honored before the live loop starts.
func (e *Engine[P]) DrainExpired() {
	e.Tick()
}
