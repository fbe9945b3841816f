// Package atlk defines ATLK formulas: CTL with epistemic and strategic
// operators, and a parser for their textual form.
//
// Atoms are model expressions between single quotes, groups are lists of
// agent names between angle brackets:
//
//	<'a1','a2'> F 'result = win'
//	[a1] G ~'crash'
//	K<'sender'> E['bit = 0' U 'ack']
package atlk

import (
	"fmt"
	"strings"
)

// Formula is a node of the formula tree. The set of node types is closed.
type Formula interface {
	fmt.Stringer
	formula()
}

type (
	True      struct{}
	False     struct{}
	Init      struct{}
	Reachable struct{}

	// Atom is a model expression over state variables.
	Atom struct{ Text string }

	Not     struct{ F Formula }
	And     struct{ Left, Right Formula }
	Or      struct{ Left, Right Formula }
	Implies struct{ Left, Right Formula }
	Iff     struct{ Left, Right Formula }

	EX struct{ F Formula }
	AX struct{ F Formula }
	EF struct{ F Formula }
	AF struct{ F Formula }
	EG struct{ F Formula }
	AG struct{ F Formula }
	EU struct{ Left, Right Formula }
	AU struct{ Left, Right Formula }
	EW struct{ Left, Right Formula }
	AW struct{ Left, Right Formula }

	// NK: the agent considers F possible. K: the agent knows F.
	NK struct {
		Agent string
		F     Formula
	}
	K struct {
		Agent string
		F     Formula
	}
	// NE/E: some member considers F possible / everybody knows F.
	NE struct {
		Group []string
		F     Formula
	}
	E struct {
		Group []string
		F     Formula
	}
	// ND/D: distributed knowledge.
	ND struct {
		Group []string
		F     Formula
	}
	D struct {
		Group []string
		F     Formula
	}
	// NC/C: common knowledge.
	NC struct {
		Group []string
		F     Formula
	}
	C struct {
		Group []string
		F     Formula
	}

	// CoalX and the other Coal nodes are <Group>: the group has a uniform
	// strategy enforcing the path formula.
	CoalX struct {
		Group []string
		F     Formula
	}
	CoalF struct {
		Group []string
		F     Formula
	}
	CoalG struct {
		Group []string
		F     Formula
	}
	CoalU struct {
		Group       []string
		Left, Right Formula
	}
	CoalW struct {
		Group       []string
		Left, Right Formula
	}

	// Dual nodes are [Group]: the group cannot avoid the path formula.
	DualX struct {
		Group []string
		F     Formula
	}
	DualF struct {
		Group []string
		F     Formula
	}
	DualG struct {
		Group []string
		F     Formula
	}
	DualU struct {
		Group       []string
		Left, Right Formula
	}
	DualW struct {
		Group       []string
		Left, Right Formula
	}
)

func (True) formula()      {}
func (False) formula()     {}
func (Init) formula()      {}
func (Reachable) formula() {}
func (Atom) formula()      {}
func (Not) formula()       {}
func (And) formula()       {}
func (Or) formula()        {}
func (Implies) formula()   {}
func (Iff) formula()       {}
func (EX) formula()        {}
func (AX) formula()        {}
func (EF) formula()        {}
func (AF) formula()        {}
func (EG) formula()        {}
func (AG) formula()        {}
func (EU) formula()        {}
func (AU) formula()        {}
func (EW) formula()        {}
func (AW) formula()        {}
func (NK) formula()        {}
func (K) formula()         {}
func (NE) formula()        {}
func (E) formula()         {}
func (ND) formula()        {}
func (D) formula()         {}
func (NC) formula()        {}
func (C) formula()         {}
func (CoalX) formula()     {}
func (CoalF) formula()     {}
func (CoalG) formula()     {}
func (CoalU) formula()     {}
func (CoalW) formula()     {}
func (DualX) formula()     {}
func (DualF) formula()     {}
func (DualG) formula()     {}
func (DualU) formula()     {}
func (DualW) formula()     {}

func group(g []string) string {
	quoted := make([]string, len(g))
	for i, a := range g {
		quoted[i] = "'" + a + "'"
	}
	return strings.Join(quoted, ",")
}

func (True) String() string      { return "True" }
func (False) String() string     { return "False" }
func (Init) String() string      { return "Init" }
func (Reachable) String() string { return "Reachable" }
func (a Atom) String() string    { return "'" + a.Text + "'" }

func (f Not) String() string     { return "~" + f.F.String() }
func (f And) String() string     { return "(" + f.Left.String() + " & " + f.Right.String() + ")" }
func (f Or) String() string      { return "(" + f.Left.String() + " | " + f.Right.String() + ")" }
func (f Implies) String() string { return "(" + f.Left.String() + " -> " + f.Right.String() + ")" }
func (f Iff) String() string     { return "(" + f.Left.String() + " <-> " + f.Right.String() + ")" }

func (f EX) String() string { return "EX " + f.F.String() }
func (f AX) String() string { return "AX " + f.F.String() }
func (f EF) String() string { return "EF " + f.F.String() }
func (f AF) String() string { return "AF " + f.F.String() }
func (f EG) String() string { return "EG " + f.F.String() }
func (f AG) String() string { return "AG " + f.F.String() }
func (f EU) String() string { return "E[" + f.Left.String() + " U " + f.Right.String() + "]" }
func (f AU) String() string { return "A[" + f.Left.String() + " U " + f.Right.String() + "]" }
func (f EW) String() string { return "E[" + f.Left.String() + " W " + f.Right.String() + "]" }
func (f AW) String() string { return "A[" + f.Left.String() + " W " + f.Right.String() + "]" }

func (f NK) String() string { return "nK<'" + f.Agent + "'> " + f.F.String() }
func (f K) String() string  { return "K<'" + f.Agent + "'> " + f.F.String() }
func (f NE) String() string { return "nE<" + group(f.Group) + "> " + f.F.String() }
func (f E) String() string  { return "E<" + group(f.Group) + "> " + f.F.String() }
func (f ND) String() string { return "nD<" + group(f.Group) + "> " + f.F.String() }
func (f D) String() string  { return "D<" + group(f.Group) + "> " + f.F.String() }
func (f NC) String() string { return "nC<" + group(f.Group) + "> " + f.F.String() }
func (f C) String() string  { return "C<" + group(f.Group) + "> " + f.F.String() }

func (f CoalX) String() string { return "<" + group(f.Group) + "> X " + f.F.String() }
func (f CoalF) String() string { return "<" + group(f.Group) + "> F " + f.F.String() }
func (f CoalG) String() string { return "<" + group(f.Group) + "> G " + f.F.String() }
func (f CoalU) String() string {
	return "<" + group(f.Group) + ">[" + f.Left.String() + " U " + f.Right.String() + "]"
}
func (f CoalW) String() string {
	return "<" + group(f.Group) + ">[" + f.Left.String() + " W " + f.Right.String() + "]"
}

func (f DualX) String() string { return "[" + group(f.Group) + "] X " + f.F.String() }
func (f DualF) String() string { return "[" + group(f.Group) + "] F " + f.F.String() }
func (f DualG) String() string { return "[" + group(f.Group) + "] G " + f.F.String() }
func (f DualU) String() string {
	return "[" + group(f.Group) + "][" + f.Left.String() + " U " + f.Right.String() + "]"
}
func (f DualW) String() string {
	return "[" + group(f.Group) + "][" + f.Left.String() + " W " + f.Right.String() + "]"
}

// Strategic reports whether f contains a strategic operator.
func Strategic(f Formula) bool {
	found := false
	Walk(f, func(n Formula) {
		switch n.(type) {
		case CoalX, CoalF, CoalG, CoalU, CoalW, DualX, DualF, DualG, DualU, DualW:
			found = true
		}
	})
	return found
}

// Walk calls visit on f and every sub-formula, parents first.
func Walk(f Formula, visit func(Formula)) {
	visit(f)
	for _, c := range children(f) {
		Walk(c, visit)
	}
}

func children(f Formula) []Formula {
	switch n := f.(type) {
	case Not:
		return []Formula{n.F}
	case And:
		return []Formula{n.Left, n.Right}
	case Or:
		return []Formula{n.Left, n.Right}
	case Implies:
		return []Formula{n.Left, n.Right}
	case Iff:
		return []Formula{n.Left, n.Right}
	case EX:
		return []Formula{n.F}
	case AX:
		return []Formula{n.F}
	case EF:
		return []Formula{n.F}
	case AF:
		return []Formula{n.F}
	case EG:
		return []Formula{n.F}
	case AG:
		return []Formula{n.F}
	case EU:
		return []Formula{n.Left, n.Right}
	case AU:
		return []Formula{n.Left, n.Right}
	case EW:
		return []Formula{n.Left, n.Right}
	case AW:
		return []Formula{n.Left, n.Right}
	case NK:
		return []Formula{n.F}
	case K:
		return []Formula{n.F}
	case NE:
		return []Formula{n.F}
	case E:
		return []Formula{n.F}
	case ND:
		return []Formula{n.F}
	case D:
		return []Formula{n.F}
	case NC:
		return []Formula{n.F}
	case C:
		return []Formula{n.F}
	case CoalX:
		return []Formula{n.F}
	case CoalF:
		return []Formula{n.F}
	case CoalG:
		return []Formula{n.F}
	case CoalU:
		return []Formula{n.Left, n.Right}
	case CoalW:
		return []Formula{n.Left, n.Right}
	case DualX:
		return []Formula{n.F}
	case DualF:
		return []Formula{n.F}
	case DualG:
		return []Formula{n.F}
	case DualU:
		return []Formula{n.Left, n.Right}
	case DualW:
		return []Formula{n.Left, n.Right}
	}
	return nil
}

// Agents returns every agent name mentioned in f, in order of appearance.
func Agents(f Formula) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(names ...string) {
		for _, a := range names {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	Walk(f, func(n Formula) {
		switch n := n.(type) {
		case NK:
			add(n.Agent)
		case K:
			add(n.Agent)
		case NE:
			add(n.Group...)
		case E:
			add(n.Group...)
		case ND:
			add(n.Group...)
		case D:
			add(n.Group...)
		case NC:
			add(n.Group...)
		case C:
			add(n.Group...)
		case CoalX:
			add(n.Group...)
		case CoalF:
			add(n.Group...)
		case CoalG:
			add(n.Group...)
		case CoalU:
			add(n.Group...)
		case CoalW:
			add(n.Group...)
		case DualX:
			add(n.Group...)
		case DualF:
			add(n.Group...)
		case DualG:
			add(n.Group...)
		case DualU:
			add(n.Group...)
		case DualW:
			add(n.Group...)
		}
	})
	return out
}
