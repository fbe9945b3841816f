package mas

import (
	"errors"
	"fmt"

	"github.com/rfielding/kripke-atlk/kripke"
	"github.com/rfielding/kripke-atlk/symbolic"
)

// ErrTooManyStates is returned when an explicit export exceeds its limit.
var ErrTooManyStates = errors.New("too many states")

func (m *MAS) stateNames() []string {
	names := make([]string, len(m.state))
	for i, v := range m.state {
		names[i] = v.name
	}
	return names
}

// eachState calls f with the assignment of every state of s. Assignments
// are collected before f runs, so f may build new sets.
func (m *MAS) eachState(s symbolic.Set, f func(labels map[string]string) error) error {
	levels := m.statesCube.Levels()
	pos := make(map[int]int, len(levels))
	for i, l := range levels {
		pos[l] = i
	}
	var all []map[string]string
	err := m.mgr.Each(s.Forsome(m.inputsCube).Intersect(m.statesMask), m.statesCube, func(bits []bool) error {
		labels := make(map[string]string, len(m.state))
		for _, v := range m.state {
			labels[v.name] = m.enc.decode(v, func(l int) bool { return bits[pos[l]] })
		}
		all = append(all, labels)
		return nil
	})
	if err != nil {
		return err
	}
	for _, labels := range all {
		if err := f(labels); err != nil {
			return err
		}
	}
	return nil
}

// stateCube is the singleton state set of an assignment.
func (m *MAS) stateCube(labels map[string]string) symbolic.Set {
	s := m.mgr.True()
	for _, v := range m.state {
		s = s.Intersect(m.enc.eq(v, v.index[labels[v.name]], false))
	}
	return s
}

// DecodeStates lists the states of s by name, as in Explicit.
func (m *MAS) DecodeStates(s symbolic.Set) kripke.StateSet {
	names := m.stateNames()
	out := kripke.NewStateSet()
	_ = m.eachState(s, func(labels map[string]string) error {
		out.Add(kripke.StateName(names, labels))
		return nil
	})
	return out
}

// Explicit exports the reachable part of the model as an explicit graph.
// A limit of zero or less means no limit.
func (m *MAS) Explicit(limit int) (*kripke.Graph, error) {
	reach := m.ReachableStates()
	if limit > 0 && m.CountStates(reach) > int64(limit) {
		return nil, fmt.Errorf("%w: %d reachable states, limit %d", ErrTooManyStates, m.CountStates(reach), limit)
	}
	names := m.stateNames()
	g := kripke.NewGraph()
	err := m.eachState(reach, func(labels map[string]string) error {
		from := kripke.StateName(names, labels)
		g.AddState(from, labels)
		return m.eachState(m.Post(m.stateCube(labels)), func(next map[string]string) error {
			to := kripke.StateName(names, next)
			g.AddState(to, next)
			g.AddEdge(from, to)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	for s := range m.DecodeStates(m.init) {
		g.Init = append(g.Init, s)
	}
	g.Init = kripke.NewStateSet(g.Init...).Sorted()
	return g, nil
}
