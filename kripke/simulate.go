package kripke

import (
	"errors"
	"math/rand/v2"
)

// ErrNoInitialState is returned when simulating a graph without initial
// states.
var ErrNoInitialState = errors.New("graph has no initial state")

// Simulator draws random runs through a graph. Successors are chosen
// uniformly. It is not safe for concurrent use.
type Simulator struct {
	g   *Graph
	rng *rand.Rand
}

// NewSimulator returns a simulator seeded with seed, so runs are
// reproducible.
func NewSimulator(g *Graph, seed uint64) *Simulator {
	return &Simulator{g: g, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Run returns a run of at most steps transitions starting from a random
// initial state. It stops early in a state without successor.
func (s *Simulator) Run(steps int) ([]StateID, error) {
	if len(s.g.Init) == 0 {
		return nil, ErrNoInitialState
	}
	cur := s.g.Init[s.rng.IntN(len(s.g.Init))]
	trace := []StateID{cur}
	for range steps {
		succ := s.g.Succ[cur]
		if len(succ) == 0 {
			break
		}
		cur = succ[s.rng.IntN(len(succ))]
		trace = append(trace, cur)
	}
	return trace, nil
}

// Visits counts how often each state occurs over runs random runs.
func (s *Simulator) Visits(runs, steps int) (map[StateID]int, error) {
	out := make(map[StateID]int)
	for range runs {
		trace, err := s.Run(steps)
		if err != nil {
			return nil, err
		}
		for _, st := range trace {
			out[st]++
		}
	}
	return out, nil
}
