package checker

import (
	"iter"
	"slices"

	"github.com/rfielding/kripke-atlk/symbolic"
)

// Split is one outcome of splitting a set of state/action pairs.
// Common holds the classes already known to be uniform, Chunk one
// uniform piece of the first conflicting class (empty when there was no
// conflict) and Rest the classes not explored yet.
type Split struct {
	Common symbolic.Set
	Chunk  symbolic.Set
	Rest   symbolic.Set
}

// slots lists the agent groups whose actions must be uniform. Under group
// semantics the whole coalition is one slot; under individual semantics
// every member is its own slot.
func (c *Checker) slots(group []string) [][]string {
	if c.semantics != Individual || len(group) <= 1 {
		return [][]string{group}
	}
	out := make([][]string, len(group))
	for i, a := range group {
		out[i] = []string{a}
	}
	return out
}

// SplitOne walks the equivalence classes of strats for slot until it meets
// one whose pairs disagree on the slot's action. That class is cut into
// pieces of equal action, one Split per piece. Without conflict the single
// result has everything in Common.
func (c *Checker) SplitOne(strats symbolic.Set, slot []string) []Split {
	c.stats.split()
	m := c.model
	none := m.Manager().False()
	if strats.IsEmpty() {
		return []Split{{Common: none, Chunk: none, Rest: none}}
	}

	others := m.InputsCube().Difference(m.InputsCubeForAgents(slot))
	actionOnly := m.StatesCube().Union(others)

	common := none
	rest := strats
	for !rest.IsEmpty() {
		si := m.PickOneStateInputs(rest)
		s := si.Forsome(m.InputsCube())
		class := rest.Intersect(m.EquivalentStates(s, slot).Union(s))
		rest = rest.Difference(class)

		action := si.Forsome(actionOnly)
		if class.Difference(action).IsEmpty() {
			common = common.Union(class)
			continue
		}

		var out []Split
		for remaining := class; !remaining.IsEmpty(); {
			pick := m.PickOneStateInputs(remaining)
			chunk := remaining.Intersect(pick.Forsome(actionOnly))
			remaining = remaining.Difference(chunk)
			out = append(out, Split{Common: common, Chunk: chunk, Rest: rest})
		}
		return out
	}
	return []Split{{Common: common, Chunk: none, Rest: none}}
}

// splitFirstConflict is SplitOne on the first slot that has a conflict.
func (c *Checker) splitFirstConflict(strats symbolic.Set, group []string) []Split {
	for _, slot := range c.slots(group) {
		out := c.SplitOne(strats, slot)
		if !out[0].Chunk.IsEmpty() {
			return out
		}
	}
	none := c.model.Manager().False()
	return []Split{{Common: strats, Chunk: none, Rest: none}}
}

// Split enumerates the maximal uniform strategies contained in strats.
// Their union is strats. The empty set yields one empty strategy.
func (c *Checker) Split(strats symbolic.Set, group []string) iter.Seq[symbolic.Set] {
	type item struct {
		acc, rem symbolic.Set
		slot     int
	}
	return func(yield func(symbolic.Set) bool) {
		slots := c.slots(group)
		none := c.model.Manager().False()
		stack := []item{{acc: none, rem: strats}}
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if it.rem.IsEmpty() {
				if it.slot+1 < len(slots) && !it.acc.IsEmpty() {
					stack = append(stack, item{acc: none, rem: it.acc, slot: it.slot + 1})
					continue
				}
				if !yield(it.acc) {
					return
				}
				continue
			}

			splits := c.SplitOne(it.rem, slots[it.slot])
			for _, sp := range slices.Backward(splits) {
				stack = append(stack, item{
					acc:  it.acc.Union(sp.Common).Union(sp.Chunk),
					rem:  sp.Rest,
					slot: it.slot,
				})
			}
		}
	}
}

// CountStrategies returns the number of uniform strategies of the group
// over its reachable protocol.
func (c *Checker) CountStrategies(group []string) int {
	m := c.model
	n := 0
	for range c.Split(m.Protocol(group).Intersect(m.ReachableStates()), group) {
		n++
	}
	return n
}
