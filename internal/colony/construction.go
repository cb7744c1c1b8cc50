package colony

import (
	"log/slog"

	"github.com/talgya/outpost/internal/catalog"
	"github.com/talgya/outpost/internal/queue"
)

// QueueBuild requests the next level of a building. The target level accounts
// for upgrades of the same building already sitting in the queue, and its
// prerequisites are checked against both the base set and any per-level
// override for that specific target.
func (c *Colony) QueueBuild(key string) queue.Result {
	def := catalog.Buildings[key]
	if def == nil {
		return queue.Result{Reason: queue.ReasonLocked}
	}

	target := c.buildings[key] + c.queuedBuilds(key) + 1
	if target > def.MaxLevel {
		return queue.Result{Reason: queue.ReasonLocked}
	}
	if !c.prereqsMet(def.Prereqs) || !c.prereqsMet(def.LevelPrereqs[target]) {
		return queue.Result{Reason: queue.ReasonPrerequisite}
	}

	duration := def.DurationAt(target) * c.speedFactor("construction")
	return c.construction.Enqueue(BuildOrder{Building: key}, def.CostAt(target), duration, target)
}

// queuedBuilds counts pending queue entries for one building.
func (c *Colony) queuedBuilds(key string) int {
	n := 0
	for _, item := range c.construction.Items() {
		if item.Payload.Building == key {
			n++
		}
	}
	return n
}

// applyBuild is the construction queue's completion effect.
func (c *Colony) applyBuild(item queue.Item[BuildOrder]) {
	key := item.Payload.Building
	if item.PendingLevel > c.buildings[key] {
		c.buildings[key] = item.PendingLevel
	}
	c.completions["construction"]++
	c.refreshDerived()
	slog.Info("construction finished", "building", key, "level", c.buildings[key])
}
