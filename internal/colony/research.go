package colony

import (
	"log/slog"

	"github.com/talgya/outpost/internal/catalog"
	"github.com/talgya/outpost/internal/queue"
)

// QueueResearch requests the next level of a technology. Research requires a
// laboratory; beyond that the same base-plus-level-override prerequisite rule
// as construction applies.
func (c *Colony) QueueResearch(key string) queue.Result {
	def := catalog.Technologies[key]
	if def == nil {
		return queue.Result{Reason: queue.ReasonLocked}
	}
	if c.buildings[catalog.Laboratory] < 1 {
		return queue.Result{Reason: queue.ReasonLocked}
	}

	target := c.techs[key] + c.queuedResearch(key) + 1
	if target > def.MaxLevel {
		return queue.Result{Reason: queue.ReasonLocked}
	}
	if !c.prereqsMet(def.Prereqs) || !c.prereqsMet(def.LevelPrereqs[target]) {
		return queue.Result{Reason: queue.ReasonPrerequisite}
	}

	duration := def.DurationAt(target) * c.speedFactor("research")
	return c.research.Enqueue(ResearchOrder{Tech: key}, def.CostAt(target), duration, target)
}

func (c *Colony) queuedResearch(key string) int {
	n := 0
	for _, item := range c.research.Items() {
		if item.Payload.Tech == key {
			n++
		}
	}
	return n
}

// applyResearch is the research queue's completion effect. Speed techs change
// nothing retroactively — items already in a queue keep the duration they
// were committed with.
func (c *Colony) applyResearch(item queue.Item[ResearchOrder]) {
	key := item.Payload.Tech
	if item.PendingLevel > c.techs[key] {
		c.techs[key] = item.PendingLevel
	}
	c.completions["research"]++
	c.refreshDerived()
	slog.Info("research finished", "tech", key, "level", c.techs[key])
}
