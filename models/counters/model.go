// Package counters is a pair of independent one-bit counters.
package counters

import "github.com/rfielding/kripke-atlk/mas"

// Model implements models.ModelSpec.
type Model struct{}

func (Model) Name() string { return "counters" }

func (Model) OriginalText() string {
	return `Two agents each own a one-bit counter they can see. At every step each
agent either skips or increments its own counter, which flips the bit.
Any combination of bits may start the run.`
}

func (Model) Definition() mas.Definition {
	counter := func(v, act string) mas.Variable {
		return mas.Variable{
			Name: v,
			Next: []mas.Case{
				{When: act + " = inc & " + v, Value: "FALSE"},
				{When: act + " = inc", Value: "TRUE"},
			},
		}
	}
	return mas.Definition{
		Name:        "counters",
		Description: "two agents flipping their own bit",
		Semantics:   "individual",
		Variables:   []mas.Variable{counter("v1", "act1"), counter("v2", "act2")},
		Inputs: []mas.Input{
			{Name: "act1", Values: []string{"skip", "inc"}},
			{Name: "act2", Values: []string{"skip", "inc"}},
		},
		Agents: []mas.Agent{
			{Name: "a1", Observes: []string{"v1"}, Actions: []string{"act1"}},
			{Name: "a2", Observes: []string{"v2"}, Actions: []string{"act2"}},
		},
		Specs: []mas.Spec{
			{Formula: "<'a1'> X 'v1'", Description: "a1 sets its bit in one step", Expect: mas.Expect(true)},
			{Formula: "<'a1', 'a2'> F ('v1' & 'v2')", Expect: mas.Expect(true)},
			{Formula: "<'a1'> F 'v2'", Description: "a1 cannot touch the other bit", Expect: mas.Expect(false)},
			{Formula: "['a2'] F 'v1'", Description: "a2 cannot keep v1 down", Expect: mas.Expect(true)},
			{Formula: "<'a1'> G 'v1'", Expect: mas.Expect(false)},
			{Formula: "AG ('v1' -> <'a1'> G 'v1')", Expect: mas.Expect(true)},
			{Formula: "AG EF ('v1' & 'v2')", Expect: mas.Expect(true)},
		},
	}
}
