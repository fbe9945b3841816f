package checker

import (
	"time"

	"github.com/rfielding/kripke-atlk/logging"
	"github.com/rfielding/kripke-atlk/symbolic"
)

// strategic evaluates <group> op with the configured variant. Every
// variant starts from the group's protocol restricted to reachable states.
func (c *Checker) strategic(g goal) symbolic.Set {
	m := c.model
	start := m.Protocol(g.group).Intersect(m.ReachableStates())

	var before Stats
	if c.stats != nil {
		before = *c.stats
	}
	began := time.Now()

	var sat symbolic.Set
	switch c.variant {
	case FS:
		sat = c.evalFS(g, start)
	case FSF:
		sat = c.evalFSF(g, start)
	default:
		sat = c.evalSF(g, start)
	}

	if c.logger != nil {
		ev := logging.With(c.logger.Debug(),
			logging.Formula(g.formula.String()),
			logging.Variant(string(c.variant)),
			logging.Semantics(string(c.semantics)),
			logging.Coalition(g.group),
		).Int64("duration_us", time.Since(began).Microseconds())
		if c.stats != nil {
			d := c.stats.Sub(before)
			ev = logging.With(ev,
				logging.Count("strategies", d.Strategies),
				logging.Count("filterings", d.Filterings),
				logging.Count("splits", d.Splits),
			)
		}
		ev.Msg("strategic operator evaluated")
	}
	return sat
}

// evalSF splits first, then filters every uniform strategy.
func (c *Checker) evalSF(g goal, start symbolic.Set) symbolic.Set {
	m := c.model
	sat := m.Manager().False()
	for strat := range c.Split(start, g.group) {
		c.stats.strategy()
		winning := c.filter(g, strat).Forsome(m.InputsCube())
		sat = sat.Union(c.allEquivSat(winning, g.group))
	}
	return sat
}

// evalFS alternates filtering and splitting one conflicting class. The
// filter is recomputed after every split.
func (c *Checker) evalFS(g goal, start symbolic.Set) symbolic.Set {
	m := c.model
	sat := m.Manager().False()
	work := []symbolic.Set{start}
	for len(work) > 0 {
		strat := work[len(work)-1]
		work = work[:len(work)-1]

		winning := c.filter(g, strat)
		if winning.IsEmpty() {
			continue
		}
		for _, sp := range c.splitFirstConflict(winning, g.group) {
			if sp.Chunk.IsEmpty() {
				c.stats.strategy()
				sat = sat.Union(c.allEquivSat(sp.Common.Forsome(m.InputsCube()), g.group))
				continue
			}
			work = append(work, sp.Common.Union(sp.Chunk).Union(sp.Rest))
		}
	}
	return sat
}

// evalFSF filters the whole protocol once, splits the surviving pairs,
// then filters each strategy again.
func (c *Checker) evalFSF(g goal, start symbolic.Set) symbolic.Set {
	m := c.model
	sat := m.Manager().False()
	winning := c.filter(g, start)
	if winning.IsEmpty() {
		return winning
	}
	for strat := range c.Split(winning, g.group) {
		c.stats.strategy()
		w := c.filter(g, strat).Forsome(m.InputsCube())
		sat = sat.Union(c.allEquivSat(w, g.group))
	}
	return sat
}

// allEquivSat keeps the states of winning whose every indistinguishable
// reachable state is winning too.
func (c *Checker) allEquivSat(winning symbolic.Set, group []string) symbolic.Set {
	m := c.model
	losing := m.StatesMask().Difference(winning).Intersect(m.ReachableStates())
	eq := m.Manager().False()
	for _, slot := range c.slots(group) {
		eq = eq.Union(m.EquivalentStates(losing, slot))
	}
	return winning.Difference(eq)
}
