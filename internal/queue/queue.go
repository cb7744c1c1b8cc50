// Package queue implements the timed work queue shared by construction,
// research, and unit training. One generic engine is instantiated per domain
// with its own payload type and effect callback, so the three queues cannot
// drift apart semantically.
//
// The central invariant: only the head item (index 0) carries timer fields
// and accrues real time. Every other item is cost-committed but clock-inert
// until it is promoted.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/outpost/internal/events"
	"github.com/talgya/outpost/internal/ledger"
	"github.com/talgya/outpost/internal/sim"
)

// Reason explains a rejected request.
type Reason string

const (
	ReasonLocked       Reason = "locked"
	ReasonPrerequisite Reason = "prerequisite_not_met"
	ReasonQueueFull    Reason = "queue_full"
	ReasonUnaffordable Reason = "unaffordable"
	ReasonBadIndex     Reason = "invalid_index"
)

// Result is the structured outcome of a queue mutation. A failed request
// guarantees zero state change.
type Result struct {
	OK     bool
	Reason Reason
}

func ok() Result           { return Result{OK: true} }
func fail(r Reason) Result { return Result{Reason: r} }

// Item is one committed operation. Cost was deducted at enqueue and is owed
// back in full on cancellation. StartedAt/EndsAt are epoch milliseconds and
// non-nil only while the item is the head.
type Item[P any] struct {
	ID              string         `json:"id"`
	Payload         P              `json:"payload"`
	Cost            ledger.Amounts `json:"cost"`
	PendingLevel    int            `json:"pendingResultLevel"`
	DurationSeconds float64        `json:"durationSeconds"`
	StartedAt       *int64         `json:"startedAt"`
	EndsAt          *int64         `json:"endsAt"`
}

// Remaining returns the time left on an active item, never negative, and
// zero for items that are not the head.
func (it *Item[P]) Remaining(now time.Time) time.Duration {
	if it.EndsAt == nil {
		return 0
	}
	rem := time.Duration(*it.EndsAt-now.UnixMilli()) * time.Millisecond
	if rem < 0 {
		return 0
	}
	return rem
}

// Engine is one domain's queue. Effects, costs, and durations come from the
// owning domain manager; the engine owns ordering, timers, capacity gating,
// and the refund contract.
type Engine[P any] struct {
	domain string
	clock  sim.Clock
	bus    events.Bus
	bank   *ledger.Ledger
	slots  *SlotLadder

	// apply executes the domain effect when an item completes. It runs
	// before the completion notification, after the item left the queue.
	apply func(Item[P])

	// key names the payload in notifications.
	key func(P) string

	items []Item[P]
}

// NewEngine creates a queue engine for one domain.
func NewEngine[P any](domain string, clock sim.Clock, bus events.Bus, bank *ledger.Ledger, slots *SlotLadder, key func(P) string, apply func(Item[P])) *Engine[P] {
	return &Engine[P]{
		domain: domain,
		clock:  clock,
		bus:    bus,
		bank:   bank,
		slots:  slots,
		key:    key,
		apply:  apply,
	}
}

// Len returns the number of committed items.
func (e *Engine[P]) Len() int {
	return len(e.items)
}

// Items returns a copy of the queue contents.
func (e *Engine[P]) Items() []Item[P] {
	out := make([]Item[P], len(e.items))
	copy(out, e.items)
	return out
}

// Head returns the active item, or nil when the queue is empty.
func (e *Engine[P]) Head() *Item[P] {
	if len(e.items) == 0 {
		return nil
	}
	return &e.items[0]
}

// Slots returns the slot ladder for capacity queries and premium purchases.
func (e *Engine[P]) Slots() *SlotLadder {
	return e.slots
}

// Enqueue commits a new operation: checks capacity and affordability, deducts
// the cost up front, and appends. If the queue was empty the item starts
// immediately; a zero-duration item on an empty queue completes synchronously
// without ever entering the timer path.
func (e *Engine[P]) Enqueue(payload P, cost ledger.Amounts, durationSeconds float64, pendingLevel int) Result {
	if len(e.items) >= e.slots.MaxSlots() {
		return fail(ReasonQueueFull)
	}
	if !e.bank.Spend(cost) {
		return fail(ReasonUnaffordable)
	}

	item := Item[P]{
		ID:              uuid.NewString(),
		Payload:         payload,
		Cost:            cost,
		PendingLevel:    pendingLevel,
		DurationSeconds: durationSeconds,
	}

	if len(e.items) == 0 && durationSeconds <= 0 {
		e.complete(item)
		return ok()
	}

	e.items = append(e.items, item)
	if len(e.items) == 1 {
		e.startHead(e.clock.Now().UnixMilli())
	}
	return ok()
}

// Cancel refunds an item's full committed cost and removes it. Cancelling
// the head restarts the next item with a fresh timer; cancelling anything
// else never disturbs the head's clock.
func (e *Engine[P]) Cancel(index int) Result {
	if index < 0 || index >= len(e.items) {
		return fail(ReasonBadIndex)
	}

	item := e.items[index]
	e.items = append(e.items[:index], e.items[index+1:]...)
	e.bank.Add(item.Cost)

	if index == 0 && len(e.items) > 0 {
		e.startHead(e.clock.Now().UnixMilli())
	}

	e.bus.Publish(events.Event{
		Type: events.TypeQueueCancelled,
		Payload: events.CompletionPayload{
			Domain: e.domain,
			Key:    e.key(item.Payload),
			Level:  item.PendingLevel,
		},
	})
	return ok()
}

// Tick checks the head's expiry. When it has matured, the effect is applied,
// the head is popped, and the successor is promoted with its timer anchored
// at the predecessor's end time — so a chain of short items drains correctly
// even when many matured in a single gap (tab suspension, load after save).
// A tick with no head, or an unexpired head, changes nothing.
func (e *Engine[P]) Tick() {
	now := e.clock.Now().UnixMilli()
	for len(e.items) > 0 && e.items[0].EndsAt != nil && *e.items[0].EndsAt <= now {
		done := e.items[0]
		endedAt := *done.EndsAt
		e.items = e.items[1:]
		if len(e.items) > 0 {
			e.startHead(endedAt)
		}
		e.complete(done)
	}
}

// ReduceActiveTimer shifts the head's end time backward by the given number
// of seconds. When the reduction exceeds the remaining time the item matures
// immediately and completes on the next Tick.
func (e *Engine[P]) ReduceActiveTimer(seconds float64) {
	if len(e.items) == 0 || e.items[0].EndsAt == nil {
		return
	}
	ends := *e.items[0].EndsAt - int64(seconds*1000)
	if now := e.clock.Now().UnixMilli(); ends < now {
		ends = now
	}
	e.items[0].EndsAt = &ends
}

// startHead stamps timer fields onto the current index 0.
func (e *Engine[P]) startHead(startMillis int64) {
	head := &e.items[0]
	started := startMillis
	ends := startMillis + int64(head.DurationSeconds*1000)
	head.StartedAt = &started
	head.EndsAt = &ends

	e.bus.Publish(events.Event{
		Type: events.TypeQueueStarted,
		Payload: events.CompletionPayload{
			Domain: e.domain,
			Key:    e.key(head.Payload),
			Level:  head.PendingLevel,
		},
	})
}

// complete applies the domain effect and notifies. The queue already has its
// post-completion shape at this point, so listeners reading queue state from
// the notification see consistent data.
func (e *Engine[P]) complete(item Item[P]) {
	e.apply(item)
	e.bus.Publish(events.Event{
		Type: events.TypeQueueCompleted,
		Payload: events.CompletionPayload{
			Domain: e.domain,
			Key:    e.key(item.Payload),
			Level:  item.PendingLevel,
		},
	})
}
