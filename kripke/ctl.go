package kripke

// Explicit CTL evaluator over a finite Kripke graph.
// Symbolic models export their reachable part into a Graph; the explicit
// operators below then serve as a reference for the symbolic ones.

import (
	"slices"
	"strings"
)

type StateID string

// Graph is a finite Kripke structure: states + successor relation.
type Graph struct {
	States []StateID
	Succ   map[StateID][]StateID // R(s) = Succ[s]
	Init   []StateID
	Labels map[StateID]map[string]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Succ:   make(map[StateID][]StateID),
		Labels: make(map[StateID]map[string]string),
	}
}

// AddState adds s once, with its variable assignment.
func (g *Graph) AddState(s StateID, labels map[string]string) {
	if _, ok := g.Labels[s]; ok {
		return
	}
	g.States = append(g.States, s)
	g.Labels[s] = labels
}

// AddEdge adds the transition from -> to.
func (g *Graph) AddEdge(from, to StateID) {
	if !slices.Contains(g.Succ[from], to) {
		g.Succ[from] = append(g.Succ[from], to)
	}
}

// StateName renders an assignment as "a=1,b=2" in the given key order.
func StateName(keys []string, labels map[string]string) StateID {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return StateID(strings.Join(parts, ","))
}

// ----- State sets -----

type StateSet map[StateID]struct{}

func NewStateSet(ids ...StateID) StateSet {
	s := make(StateSet)
	for _, id := range ids {
		s.Add(id)
	}
	return s
}
func (s StateSet) Has(id StateID) bool { _, ok := s[id]; return ok }
func (s StateSet) Add(id StateID)      { s[id] = struct{}{} }
func (s StateSet) Size() int           { return len(s) }
func (s StateSet) Copy() StateSet {
	out := NewStateSet()
	for k := range s {
		out.Add(k)
	}
	return out
}
func (s StateSet) Sorted() []StateID {
	out := make([]StateID, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
func (s StateSet) Equals(other StateSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}
func (s StateSet) Intersect(other StateSet) StateSet {
	out := NewStateSet()
	for k := range s {
		if other.Has(k) {
			out.Add(k)
		}
	}
	return out
}
func (s StateSet) Union(other StateSet) StateSet {
	out := s.Copy()
	for k := range other {
		out.Add(k)
	}
	return out
}
func (s StateSet) Difference(other StateSet) StateSet {
	out := NewStateSet()
	for k := range s {
		if !other.Has(k) {
			out.Add(k)
		}
	}
	return out
}

// Universe builds a set containing all states in the graph.
func Universe(g *Graph) StateSet {
	return NewStateSet(g.States...)
}

// Where returns the states whose variable key has the given value.
func Where(g *Graph, key, value string) StateSet {
	out := NewStateSet()
	for _, s := range g.States {
		if g.Labels[s][key] == value {
			out.Add(s)
		}
	}
	return out
}

// Pre_E returns predecessors with SOME successor in W:
// Pre_E(W) = { s | ∃ s' . R(s,s') ∧ s' ∈ W }
func Pre_E(W StateSet, g *Graph) StateSet {
	out := NewStateSet()
	for s, succs := range g.Succ {
		for _, s2 := range succs {
			if W.Has(s2) {
				out.Add(s)
				break
			}
		}
	}
	return out
}

// Pre_A returns predecessors whose ALL successors are in W.
// Pre_A(W) = { s | Succ(s) ⊆ W } (vacuously true if Succ(s) is empty).
func Pre_A(W StateSet, g *Graph) StateSet {
	out := NewStateSet()
	for _, s := range g.States {
		all := true
		for _, s2 := range g.Succ[s] {
			if !W.Has(s2) {
				all = false
				break
			}
		}
		if all {
			out.Add(s)
		}
	}
	return out
}

// ----- CTL Formula AST -----

// Formula is a CTL state formula.
// Sat(g) returns the set of states satisfying the formula in graph g.
type Formula interface {
	Sat(g *Graph) StateSet
}

// Atom: an atomic proposition given as the set of states where it holds.
type Atom struct {
	States StateSet
}

func (a Atom) Sat(g *Graph) StateSet { return a.States.Copy() }

// Not: ¬φ
type Not struct {
	F Formula
}

func (n Not) Sat(g *Graph) StateSet { return Universe(g).Difference(n.F.Sat(g)) }

// And: (φ ∧ ψ)
type And struct {
	Left, Right Formula
}

func (a And) Sat(g *Graph) StateSet { return a.Left.Sat(g).Intersect(a.Right.Sat(g)) }

// Or: (φ ∨ ψ)
type Or struct {
	Left, Right Formula
}

func (o Or) Sat(g *Graph) StateSet { return o.Left.Sat(g).Union(o.Right.Sat(g)) }

// EX φ: "there exists a next state where φ holds"
type EX struct {
	F Formula
}

func (e EX) Sat(g *Graph) StateSet { return Pre_E(e.F.Sat(g), g) }

// AX φ: "for all next states, φ holds"
type AX struct {
	F Formula
}

func (a AX) Sat(g *Graph) StateSet { return Pre_A(a.F.Sat(g), g) }

// EU(p, q): "there exists a path where p holds UNTIL q holds"
type EU struct {
	P, Q Formula
}

func (eu EU) Sat(g *Graph) StateSet {
	satP := eu.P.Sat(g)

	// Least fixpoint:
	// W0 = Sat(Q)
	// W_{i+1} = W_i ∪ (Sat(P) ∩ Pre_E(W_i))
	W := eu.Q.Sat(g)
	for {
		next := W.Union(Pre_E(W, g).Intersect(satP))
		if next.Equals(W) {
			return W
		}
		W = next
	}
}

// EG φ: "there exists a path where φ holds globally (forever)"
type EG struct {
	F Formula
}

func (eg EG) Sat(g *Graph) StateSet {
	// Greatest fixpoint: drop states of Z without a successor in Z.
	Z := eg.F.Sat(g)
	for {
		next := Z.Intersect(Pre_E(Z, g))
		if next.Equals(Z) {
			return Z
		}
		Z = next
	}
}

// EF φ ≡ E[ true U φ ]
type EF struct {
	F Formula
}

func (ef EF) Sat(g *Graph) StateSet {
	return EU{P: Atom{States: Universe(g)}, Q: ef.F}.Sat(g)
}

// AF φ ≡ ¬EG ¬φ
type AF struct {
	F Formula
}

func (af AF) Sat(g *Graph) StateSet {
	return Universe(g).Difference(EG{F: Not{F: af.F}}.Sat(g))
}

// AG φ ≡ ¬EF ¬φ
type AG struct {
	F Formula
}

func (ag AG) Sat(g *Graph) StateSet {
	return Universe(g).Difference(EF{F: Not{F: ag.F}}.Sat(g))
}

// Holds reports whether every initial state satisfies f.
func Holds(f Formula, g *Graph) bool {
	sat := f.Sat(g)
	for _, s := range g.Init {
		if !sat.Has(s) {
			return false
		}
	}
	return true
}
