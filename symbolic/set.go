package symbolic

import (
	"github.com/dalzilio/rudd"
)

// Set is a canonical symbolic set. The zero value is not usable; obtain sets
// from a Manager.
type Set struct {
	m *Manager
	n rudd.Node
}

// Manager returns the manager s belongs to.
func (s Set) Manager() *Manager { return s.m }

// Union returns s ∪ o.
func (s Set) Union(o Set) Set { return s.m.wrap(s.m.bdd.Or(s.n, o.n)) }

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set { return s.m.wrap(s.m.bdd.And(s.n, o.n)) }

// Difference returns s \ o.
func (s Set) Difference(o Set) Set {
	return s.m.wrap(s.m.bdd.And(s.n, s.m.bdd.Not(o.n)))
}

// Complement returns the complement of s in the full vector space. Callers
// usually intersect the result with a domain mask.
func (s Set) Complement() Set { return s.m.wrap(s.m.bdd.Not(s.n)) }

// Implies returns ¬s ∪ o.
func (s Set) Implies(o Set) Set {
	return s.m.wrap(s.m.bdd.Or(s.m.bdd.Not(s.n), o.n))
}

// Iff returns the vectors on which membership in s and o agree.
func (s Set) Iff(o Set) Set {
	both := s.m.bdd.And(s.n, o.n)
	neither := s.m.bdd.And(s.m.bdd.Not(s.n), s.m.bdd.Not(o.n))
	return s.m.wrap(s.m.bdd.Or(both, neither))
}

// Forsome existentially quantifies the variables of vs away.
func (s Set) Forsome(vs VarSet) Set {
	if vs.Len() == 0 {
		return s
	}
	return s.m.wrap(s.m.bdd.Exist(s.n, s.m.bdd.Makeset(vs.levels)))
}

// Forall universally quantifies the variables of vs away.
func (s Set) Forall(vs VarSet) Set {
	return s.Complement().Forsome(vs).Complement()
}

// Rename substitutes variables according to r.
func (s Set) Rename(r *Renamer) Set { return s.m.wrap(s.m.bdd.Replace(s.n, r.r)) }

// IsEmpty reports whether s has no element.
func (s Set) IsEmpty() bool { return s.m.bdd.Equal(s.n, s.m.bdd.False()) }

// IsFull reports whether s contains every vector.
func (s Set) IsFull() bool { return s.m.bdd.Equal(s.n, s.m.bdd.True()) }

// Equals is semantic equality.
func (s Set) Equals(o Set) bool { return s.m.bdd.Equal(s.n, o.n) }

// SubsetOf reports whether s ⊆ o.
func (s Set) SubsetOf(o Set) bool { return s.Difference(o).IsEmpty() }

// Fixpoint iterates f from start until two consecutive values are equal and
// returns the limit together with the number of applications of f.
// Starting from False with a monotone f gives the least fixpoint, starting
// from True gives the greatest.
func Fixpoint(start Set, f func(Set) Set) (Set, int) {
	w := start
	steps := 0
	for {
		next := f(w)
		steps++
		if next.Equals(w) {
			return w, steps
		}
		w = next
	}
}
