package mas

import (
	"github.com/rfielding/kripke-atlk/symbolic"
)

// FairStates returns the states from which some fair path starts. Without
// fairness constraints these are the states with an infinite path.
func (m *MAS) FairStates() symbolic.Set {
	if m.fair == nil {
		f := m.egPlain(m.statesMask)
		m.fair = &f
	}
	return *m.fair
}

// egPlain is EG under the fairness constraints, evaluated with the plain
// predecessor (Emerson-Lei).
func (m *MAS) egPlain(phi symbolic.Set) symbolic.Set {
	if len(m.fairness) == 0 {
		z, _ := symbolic.Fixpoint(m.mgr.True(), func(z symbolic.Set) symbolic.Set {
			return phi.Intersect(m.Pre(z))
		})
		return z.Intersect(m.statesMask)
	}
	z, _ := symbolic.Fixpoint(m.mgr.True(), func(z symbolic.Set) symbolic.Set {
		next := phi
		for _, f := range m.fairness {
			target := z.Intersect(f).Intersect(phi)
			reach, _ := symbolic.Fixpoint(m.mgr.False(), func(y symbolic.Set) symbolic.Set {
				return target.Union(phi.Intersect(m.Pre(y)))
			})
			next = next.Intersect(m.Pre(reach))
		}
		return next
	})
	return z.Intersect(m.statesMask)
}

// Ex returns the states with a fair successor satisfying phi.
func (m *MAS) Ex(phi symbolic.Set) symbolic.Set {
	return m.Pre(phi.Intersect(m.FairStates())).Intersect(m.statesMask)
}

// Eu returns the states with a fair path where phi holds until psi.
func (m *MAS) Eu(phi, psi symbolic.Set) symbolic.Set {
	goal := psi.Intersect(m.FairStates())
	z, _ := symbolic.Fixpoint(m.mgr.False(), func(z symbolic.Set) symbolic.Set {
		return goal.Union(phi.Intersect(m.Ex(z)))
	})
	return z
}

// Eg returns the states with a fair path where phi always holds.
func (m *MAS) Eg(phi symbolic.Set) symbolic.Set {
	return m.egPlain(phi.Intersect(m.statesMask))
}

func (m *MAS) relevant() symbolic.Set {
	return m.FairStates().Intersect(m.ReachableStates())
}

// Nk returns the states where agent considers phi possible.
func (m *MAS) Nk(phi symbolic.Set, agent string) symbolic.Set {
	r := m.relevant()
	return m.EquivalentStates(phi.Intersect(r), []string{agent}).Intersect(r)
}

// Ne returns the states where some member of the group considers phi
// possible.
func (m *MAS) Ne(phi symbolic.Set, group []string) symbolic.Set {
	out := m.mgr.False()
	for _, a := range group {
		out = out.Union(m.Nk(phi, a))
	}
	return out
}

// Nd returns the states where phi is possible given the group's pooled
// observations.
func (m *MAS) Nd(phi symbolic.Set, group []string) symbolic.Set {
	r := m.relevant()
	return m.EquivalentStates(phi.Intersect(r), group).Intersect(r)
}

// Nc returns the states from which a phi state is reached by one or more
// steps of some member's indistinguishability relation.
func (m *MAS) Nc(phi symbolic.Set, group []string) symbolic.Set {
	z, _ := symbolic.Fixpoint(m.mgr.False(), func(z symbolic.Set) symbolic.Set {
		return m.Ne(phi.Union(z), group)
	})
	return z
}
