package checker

import (
	"fmt"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/symbolic"
)

type pathOp int

const (
	opX pathOp = iota
	opF
	opG
	opU
	opW
)

func (o pathOp) String() string {
	return [...]string{"X", "F", "G", "U", "W"}[o]
}

// goal is a strategic operator <group> op with its sub-formulas already
// evaluated to state sets. For F, phi is the full state set and psi the
// target; for X and G only phi is used.
type goal struct {
	formula  atlk.Formula
	op       pathOp
	group    []string
	phi, psi symbolic.Set
}

func (c *Checker) goalOf(f atlk.Formula) (goal, error) {
	g := goal{formula: f}
	var err error
	switch n := f.(type) {
	case atlk.CoalX:
		g.op, g.group = opX, n.Group
		g.phi, err = c.eval(n.F)
	case atlk.CoalG:
		g.op, g.group = opG, n.Group
		g.phi, err = c.eval(n.F)
	case atlk.CoalF:
		g.op, g.group = opF, n.Group
		g.phi = c.model.StatesMask()
		g.psi, err = c.eval(n.F)
	case atlk.CoalU:
		g.op, g.group = opU, n.Group
		if g.phi, err = c.eval(n.Left); err == nil {
			g.psi, err = c.eval(n.Right)
		}
	case atlk.CoalW:
		g.op, g.group = opW, n.Group
		if g.phi, err = c.eval(n.Left); err == nil {
			g.psi, err = c.eval(n.Right)
		}
	default:
		err = fmt.Errorf("%w: %T is not strategic", ErrUnsupportedFormula, f)
	}
	return g, err
}

// filter returns the state/action pairs of strat from which the group
// enforces the goal when restricted to strat, under full observability.
func (c *Checker) filter(g goal, strat symbolic.Set) symbolic.Set {
	c.stats.filtering()
	m := c.model
	mask := m.StatesInputsMask()
	none := m.Manager().False()
	if strat.IsEmpty() {
		return none
	}

	var win symbolic.Set
	switch g.op {
	case opX:
		win = c.cex(g.group, g.phi, strat)
	case opG:
		win = c.ceg(g.group, g.phi, strat)
	case opW:
		win = c.cew(g.group, g.phi, g.psi, strat)
	default:
		win = c.ceu(g.group, g.phi, g.psi, strat)
	}
	return win.Intersect(mask).Intersect(m.Protocol(g.group))
}

func (c *Checker) pre(group []string, strat symbolic.Set) func(symbolic.Set) symbolic.Set {
	return func(z symbolic.Set) symbolic.Set {
		return c.model.PreStratSI(z, group, strat)
	}
}

func (c *Checker) lfp(f func(symbolic.Set) symbolic.Set) symbolic.Set {
	z, steps := symbolic.Fixpoint(c.model.Manager().False(), f)
	c.stats.fixpoint(steps)
	return z
}

func (c *Checker) gfp(f func(symbolic.Set) symbolic.Set) symbolic.Set {
	z, steps := symbolic.Fixpoint(c.model.Manager().True(), f)
	c.stats.fixpoint(steps)
	return z
}

// cex: pairs of strat whose successors all satisfy phi, or from which the
// group can avoid fair paths.
func (c *Checker) cex(group []string, phi, strat symbolic.Set) symbolic.Set {
	phi = phi.Intersect(c.model.StatesInputsMask())
	return c.pre(group, strat)(phi.Union(c.nfairGammaSI(group, strat)))
}

// ceu: <group>[phi U psi] within strat. With fairness, the group must
// reach psi along fair paths or avoid fair paths altogether.
func (c *Checker) ceu(group []string, phi, psi, strat symbolic.Set) symbolic.Set {
	m := c.model
	mask := m.StatesInputsMask()
	phi = phi.Intersect(mask).Intersect(strat)
	psi = psi.Intersect(mask).Intersect(strat)
	pre := c.pre(group, strat)

	fairness := m.FairnessConstraints()
	if len(fairness) == 0 {
		return c.lfp(func(z symbolic.Set) symbolic.Set {
			return psi.Union(phi.Intersect(pre(z)))
		})
	}

	nfair := c.nfairGammaSI(group, strat)
	stay := phi.Union(psi).Union(nfair)
	return c.lfp(func(z symbolic.Set) symbolic.Set {
		res := psi
		for _, f := range fairness {
			nf := m.StatesMask().Difference(f).Intersect(strat)
			y := c.gfp(func(y symbolic.Set) symbolic.Set {
				return stay.Intersect(z.Union(nf)).Intersect(psi.Union(pre(y)))
			})
			res = res.Union(pre(y))
		}
		return stay.Intersect(res)
	})
}

// cew: <group>[phi W psi] within strat.
func (c *Checker) cew(group []string, phi, psi, strat symbolic.Set) symbolic.Set {
	mask := c.model.StatesInputsMask()
	phi = phi.Intersect(mask).Intersect(strat)
	psi = psi.Intersect(mask).Intersect(strat)
	pre := c.pre(group, strat)
	stay := psi.Union(phi).Union(c.nfairGammaSI(group, strat))
	return c.gfp(func(y symbolic.Set) symbolic.Set {
		return stay.Intersect(psi.Union(pre(y)))
	})
}

// ceg: <group> G phi within strat.
func (c *Checker) ceg(group []string, phi, strat symbolic.Set) symbolic.Set {
	phi = phi.Intersect(c.model.StatesInputsMask()).Intersect(strat)
	pre := c.pre(group, strat)
	stay := phi.Union(c.nfairGammaSI(group, strat))
	return c.gfp(func(y symbolic.Set) symbolic.Set {
		return stay.Intersect(pre(y))
	})
}

// nfairGammaSI returns the pairs of strat from which the group can force
// every path to eventually stop visiting some fairness constraint. It is
// empty without fairness constraints.
func (c *Checker) nfairGammaSI(group []string, strat symbolic.Set) symbolic.Set {
	m := c.model
	fairness := m.FairnessConstraints()
	if len(fairness) == 0 {
		return m.Manager().False()
	}
	pre := c.pre(group, strat)
	z, steps := symbolic.Fixpoint(m.Manager().False(), func(z symbolic.Set) symbolic.Set {
		res := m.Manager().False()
		for _, f := range fairness {
			nf := m.StatesMask().Difference(f).Intersect(strat)
			y := c.gfp(func(y symbolic.Set) symbolic.Set {
				return z.Union(nf).Intersect(pre(y))
			})
			res = res.Union(pre(y))
		}
		return res
	})
	c.stats.nfair(steps)
	return z
}
