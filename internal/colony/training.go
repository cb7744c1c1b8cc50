package colony

import (
	"log/slog"

	"github.com/talgya/outpost/internal/catalog"
	"github.com/talgya/outpost/internal/queue"
)

// QueueTraining requests a batch of units. Cost and time scale with the batch
// size; the whole batch completes at once when the timer matures.
func (c *Colony) QueueTraining(key string, count int) queue.Result {
	def := catalog.Units[key]
	if def == nil || count <= 0 {
		return queue.Result{Reason: queue.ReasonLocked}
	}
	if !c.prereqsMet(def.Prereqs) {
		return queue.Result{Reason: queue.ReasonPrerequisite}
	}

	duration := def.BatchDuration(count) * c.speedFactor("training")
	return c.training.Enqueue(TrainOrder{Unit: key, Count: count}, def.BatchCost(count), duration, count)
}

// MaxTrainable returns the largest batch of one unit the ledger can pay for
// right now. Zero for unknown units.
func (c *Colony) MaxTrainable(key string) int {
	def := catalog.Units[key]
	if def == nil {
		return 0
	}
	return c.bank.MaxAffordable(def.CostPerUnit)
}

// applyTraining is the training queue's completion effect.
func (c *Colony) applyTraining(item queue.Item[TrainOrder]) {
	c.units[item.Payload.Unit] += item.Payload.Count
	c.completions["training"]++
	slog.Info("training finished", "unit", item.Payload.Unit, "count", item.Payload.Count)
}
