package mas

import (
	"errors"
	"fmt"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/kripke"
)

// ErrNotExplicit is returned for formulas the explicit CTL checker cannot
// evaluate: epistemic and strategic operators, or any formula of a model
// with fairness constraints.
var ErrNotExplicit = errors.New("not checkable on the explicit graph")

// ExplicitFormula translates a CTL formula into the operators of package
// kripke, to be evaluated on the graph returned by Explicit. Atoms are
// decoded over the reachable states.
func (m *MAS) ExplicitFormula(f atlk.Formula) (kripke.Formula, error) {
	if len(m.fairness) > 0 {
		return nil, fmt.Errorf("%w: model %s has fairness constraints", ErrNotExplicit, m.Name())
	}
	reach := m.ReachableStates()
	all := kripke.Atom{States: m.DecodeStates(reach)}

	var tr func(atlk.Formula) (kripke.Formula, error)
	pair := func(l, r atlk.Formula) (kripke.Formula, kripke.Formula, error) {
		p, err := tr(l)
		if err != nil {
			return nil, nil, err
		}
		q, err := tr(r)
		return p, q, err
	}
	tr = func(f atlk.Formula) (kripke.Formula, error) {
		switch n := f.(type) {
		case atlk.True, atlk.Reachable:
			return all, nil
		case atlk.False:
			return kripke.Atom{States: kripke.NewStateSet()}, nil
		case atlk.Init:
			return kripke.Atom{States: m.DecodeStates(m.init)}, nil
		case atlk.Atom:
			s, err := m.Atom(n.Text)
			if err != nil {
				return nil, err
			}
			return kripke.Atom{States: m.DecodeStates(s.Intersect(reach))}, nil
		case atlk.Not:
			p, err := tr(n.F)
			return kripke.Not{F: p}, err
		case atlk.And:
			p, q, err := pair(n.Left, n.Right)
			return kripke.And{Left: p, Right: q}, err
		case atlk.Or:
			p, q, err := pair(n.Left, n.Right)
			return kripke.Or{Left: p, Right: q}, err
		case atlk.Implies:
			p, q, err := pair(n.Left, n.Right)
			return kripke.Or{Left: kripke.Not{F: p}, Right: q}, err
		case atlk.Iff:
			p, q, err := pair(n.Left, n.Right)
			return kripke.Or{
				Left:  kripke.And{Left: p, Right: q},
				Right: kripke.And{Left: kripke.Not{F: p}, Right: kripke.Not{F: q}},
			}, err
		case atlk.EX:
			p, err := tr(n.F)
			return kripke.EX{F: p}, err
		case atlk.AX:
			p, err := tr(n.F)
			return kripke.AX{F: p}, err
		case atlk.EF:
			p, err := tr(n.F)
			return kripke.EF{F: p}, err
		case atlk.AF:
			p, err := tr(n.F)
			return kripke.AF{F: p}, err
		case atlk.EG:
			p, err := tr(n.F)
			return kripke.EG{F: p}, err
		case atlk.AG:
			p, err := tr(n.F)
			return kripke.AG{F: p}, err
		case atlk.EU:
			p, q, err := pair(n.Left, n.Right)
			return kripke.EU{P: p, Q: q}, err
		case atlk.AU:
			p, q, err := pair(n.Left, n.Right)
			nq := kripke.Not{F: q}
			return kripke.And{
				Left:  kripke.Not{F: kripke.EU{P: nq, Q: kripke.And{Left: nq, Right: kripke.Not{F: p}}}},
				Right: kripke.Not{F: kripke.EG{F: nq}},
			}, err
		case atlk.EW:
			p, q, err := pair(n.Left, n.Right)
			return kripke.Or{Left: kripke.EU{P: p, Q: q}, Right: kripke.EG{F: p}}, err
		case atlk.AW:
			p, q, err := pair(n.Left, n.Right)
			nq := kripke.Not{F: q}
			return kripke.Not{F: kripke.EU{P: nq, Q: kripke.And{Left: nq, Right: kripke.Not{F: p}}}}, err
		}
		return nil, fmt.Errorf("%w: %s", ErrNotExplicit, f)
	}
	return tr(f)
}
