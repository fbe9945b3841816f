// Package transmission is a bit sent over an unreliable channel, with a
// fairness constraint on the channel.
package transmission

import "github.com/rfielding/kripke-atlk/mas"

// Model implements models.ModelSpec.
type Model struct{}

func (Model) Name() string { return "transmission" }

func (Model) OriginalText() string {
	return `A sender wants a bit delivered through a transmitter. At each step the
sender sends or waits and the transmitter transmits or blocks; the bit is
received when a send meets a transmit. Neither agent sees whether the bit
has arrived. Fair runs are those where the transmitter transmits
infinitely often.`
}

func (Model) Definition() mas.Definition {
	return mas.Definition{
		Name:        "transmission",
		Description: "bit transmission over a fair channel",
		Variables: []mas.Variable{
			{
				Name: "received",
				Init: "FALSE",
				Next: []mas.Case{
					{When: "sact = send & tact = transmit", Value: "TRUE"},
				},
			},
			{
				Name: "transmitted",
				Init: "FALSE",
				Next: []mas.Case{
					{When: "tact = transmit", Value: "TRUE"},
					{Value: "FALSE"},
				},
			},
		},
		Inputs: []mas.Input{
			{Name: "sact", Values: []string{"send", "wait"}},
			{Name: "tact", Values: []string{"transmit", "block"}},
		},
		Agents: []mas.Agent{
			{Name: "sender", Actions: []string{"sact"}},
			{Name: "transmitter", Actions: []string{"tact"}},
		},
		Fairness: []string{"transmitted"},
		Specs: []mas.Spec{
			{Formula: "<'sender'> F 'received'", Description: "sending forever gets the bit through on fair runs", Expect: mas.Expect(true)},
			{Formula: "<'sender'> X 'received'", Expect: mas.Expect(false)},
			{Formula: "<'transmitter'> G ~'received'", Expect: mas.Expect(true)},
			{Formula: "<'transmitter'> F 'FALSE'", Description: "blocking forever leaves no fair run to lose on", Expect: mas.Expect(true)},
			{Formula: "<'sender'> F 'FALSE'", Expect: mas.Expect(false)},
			{Formula: "<'sender'> G ~'received'", Description: "the sender does not know whether the bit already arrived", Expect: mas.Expect(false)},
			{Formula: "<'sender', 'transmitter'> F 'received'", Expect: mas.Expect(true)},
			{Formula: "AG ('received' -> AG 'received')", Expect: mas.Expect(true)},
		},
	}
}
