// Package coins is the two-coin matching game.
package coins

import "github.com/rfielding/kripke-atlk/mas"

// Model implements models.ModelSpec.
type Model struct{}

func (Model) Name() string { return "coins" }

func (Model) OriginalText() string {
	return `Two coins are tossed. Agent a1 sees only the first coin and agent a2
only the second. Each then says "equal" or "different". They win when both
say "equal" and the coins match, or both say "different" and they do not.
Neither agent alone knows whether the coins match, so they have no
uniform strategy that always wins, although a single agent seeing both
coins would have one.`
}

func (Model) Definition() mas.Definition {
	coin := func(name string) mas.Variable {
		return mas.Variable{
			Name:   name,
			Values: []string{"none", "head", "tail"},
			Init:   "none",
			Next: []mas.Case{
				{When: "c1 = none & c2 = none", OneOf: []string{"head", "tail"}},
			},
		}
	}
	return mas.Definition{
		Name:        "coins",
		Description: "two agents each see one coin and must agree whether the coins match",
		Semantics:   "individual",
		Variables: []mas.Variable{
			coin("c1"),
			coin("c2"),
			{
				Name:   "result",
				Values: []string{"none", "win", "lose"},
				Init:   "none",
				Next: []mas.Case{
					{When: "decide & ((c1 = c2 & act1 = equal & act2 = equal) | (c1 != c2 & act1 = different & act2 = different))", Value: "win"},
					{When: "decide", Value: "lose"},
				},
			},
		},
		Inputs: []mas.Input{
			{Name: "act1", Values: []string{"different", "equal"}},
			{Name: "act2", Values: []string{"different", "equal"}},
		},
		Defines: []mas.Define{
			{Name: "decide", Expr: "c1 != none & c2 != none & result = none"},
		},
		Agents: []mas.Agent{
			{Name: "a1", Observes: []string{"c1"}, Actions: []string{"act1"}},
			{Name: "a2", Observes: []string{"c2"}, Actions: []string{"act2"}},
		},
		Specs: []mas.Spec{
			{Formula: "<'a1', 'a2'> F 'result = win'", Description: "the agents cannot guarantee a win without pooling what they see", Expect: mas.Expect(false)},
			{Formula: "<'a1'> X 'result = win'", Expect: mas.Expect(false)},
			{Formula: "EF 'result = win'", Description: "a lucky play wins", Expect: mas.Expect(true)},
			{Formula: "AF 'result != none'", Description: "the game always ends", Expect: mas.Expect(true)},
			{Formula: "K<'a1'> 'c2 = none'", Description: "before the toss a1 knows the second coin is not tossed", Expect: mas.Expect(true)},
			{Formula: "AG ('c1 = head' -> K<'a1'> 'c1 = head')", Expect: mas.Expect(true)},
			{Formula: "EF ('c1 = head' & ~K<'a1'> 'c2 = head')", Description: "a1 never learns the other coin", Expect: mas.Expect(true)},
		},
	}
}
