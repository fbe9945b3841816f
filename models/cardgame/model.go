// Package cardgame is a three-card game between a dealer and a player who
// only sees their own card.
package cardgame

import "github.com/rfielding/kripke-atlk/mas"

// Model implements models.ModelSpec.
type Model struct{}

func (Model) Name() string { return "cardgame" }

func (Model) OriginalText() string {
	return `A dealer holds an ace, a king and a queen. Each round the dealer gives
one card to the player and keeps one, then the player either keeps the
card or swaps it with the dealer's. The player wins when the ace beats
the king, the king beats the queen or the queen beats the ace. The dealer
sees both cards, the player only their own. After the showdown both cards
go back and a new round starts.`
}

func (Model) Definition() mas.Definition {
	cards := []string{"none", "Ac", "K", "Q"}
	return mas.Definition{
		Name:        "cardgame",
		Description: "dealer and player, the player sees only their card",
		Semantics:   "individual",
		Variables: []mas.Variable{
			{
				Name:   "step",
				Values: []string{"0", "1", "2"},
				Init:   "0",
				Next: []mas.Case{
					{When: "step = 0", Value: "1"},
					{When: "step = 1", Value: "2"},
					{When: "step = 2", Value: "0"},
				},
			},
			{
				Name:   "pcard",
				Values: cards,
				Init:   "none",
				Next: []mas.Case{
					{When: "step = 0 & deal in {AK, AQ}", Value: "Ac"},
					{When: "step = 0 & deal in {KA, KQ}", Value: "K"},
					{When: "step = 0 & deal in {QA, QK}", Value: "Q"},
					{When: "step = 1 & choice = swap", Value: "dcard"},
					{When: "step = 2", Value: "none"},
				},
			},
			{
				Name:   "dcard",
				Values: cards,
				Init:   "none",
				Next: []mas.Case{
					{When: "step = 0 & deal in {KA, QA}", Value: "Ac"},
					{When: "step = 0 & deal in {AK, QK}", Value: "K"},
					{When: "step = 0 & deal in {AQ, KQ}", Value: "Q"},
					{When: "step = 1 & choice = swap", Value: "pcard"},
					{When: "step = 2", Value: "none"},
				},
			},
		},
		Inputs: []mas.Input{
			{Name: "deal", Values: []string{"none", "AK", "AQ", "KA", "KQ", "QA", "QK"}},
			{Name: "choice", Values: []string{"none", "keep", "swap"}},
		},
		Defines: []mas.Define{
			{Name: "win", Expr: "step = 2 & (pcard = Ac & dcard = K | pcard = K & dcard = Q | pcard = Q & dcard = Ac)"},
		},
		Agents: []mas.Agent{
			{
				Name:     "dealer",
				Observes: []string{"step", "pcard", "dcard"},
				Actions:  []string{"deal"},
				Protocol: []mas.Rule{
					{When: "step = 0", Allow: "deal != none"},
					{Allow: "deal = none"},
				},
			},
			{
				Name:     "player",
				Observes: []string{"step", "pcard"},
				Actions:  []string{"choice"},
				Protocol: []mas.Rule{
					{When: "step = 1", Allow: "choice != none"},
					{Allow: "choice = none"},
				},
			},
		},
		Specs: []mas.Spec{
			{Formula: "K<'player'> 'pcard = none' & K<'player'> 'dcard = none'", Expect: mas.Expect(true)},
			{Formula: "AG ('step = 1' -> ~(K<'player'> 'dcard = Ac' | K<'player'> 'dcard = K' | K<'player'> 'dcard = Q'))", Description: "the player never knows the dealer's card", Expect: mas.Expect(true)},
			{Formula: "<'dealer'> X 'pcard = Ac'", Expect: mas.Expect(true)},
			{Formula: "<'dealer'> G ~'win'", Description: "whatever the deal, some choice of the player wins", Expect: mas.Expect(false)},
			{Formula: "['player'] X 'pcard = Ac'", Expect: mas.Expect(true)},
			{Formula: "['dealer'] F 'win'", Expect: mas.Expect(true)},
			{Formula: "AG ('step = 1' -> ~<'player'> X 'win')", Expect: mas.Expect(true)},
			{Formula: "<'player'> F 'win'", Description: "the player cannot tell which card the dealer kept", Expect: mas.Expect(false)},
			{Formula: "EG ~'win'", Expect: mas.Expect(true)},
			{Formula: "EF 'win'", Expect: mas.Expect(true)},
			{Formula: "AF 'win'", Expect: mas.Expect(false)},
		},
	}
}
