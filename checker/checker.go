// Package checker evaluates ATLK formulas over multi-agent systems with
// partial observability. Strategic operators are computed over uniform
// memoryless strategies: a coalition wins from a state when one of its
// uniform strategies enforces the goal from every state the coalition
// cannot tell apart from it.
package checker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/symbolic"
)

var (
	ErrUnknownAgent       = errors.New("unknown agent")
	ErrUnsupportedFormula = errors.New("unsupported formula")
	ErrUnknownSemantics   = errors.New("unknown semantics")
	ErrResourceExhausted  = symbolic.ErrResourceExhausted
)

// Model is what the checker needs from a multi-agent system.
type Model interface {
	Manager() *symbolic.Manager
	HasAgent(name string) bool

	StatesCube() symbolic.VarSet
	InputsCube() symbolic.VarSet
	InputsCubeForAgents(group []string) symbolic.VarSet
	StatesMask() symbolic.Set
	StatesInputsMask() symbolic.Set

	InitStates() symbolic.Set
	ReachableStates() symbolic.Set
	FairnessConstraints() []symbolic.Set

	Protocol(group []string) symbolic.Set
	PreStratSI(z symbolic.Set, group []string, strat symbolic.Set) symbolic.Set
	EquivalentStates(s symbolic.Set, group []string) symbolic.Set
	PickOneStateInputs(s symbolic.Set) symbolic.Set

	Atom(text string) (symbolic.Set, error)

	Ex(phi symbolic.Set) symbolic.Set
	Eg(phi symbolic.Set) symbolic.Set
	Eu(phi, psi symbolic.Set) symbolic.Set
	Nk(phi symbolic.Set, agent string) symbolic.Set
	Ne(phi symbolic.Set, group []string) symbolic.Set
	Nd(phi symbolic.Set, group []string) symbolic.Set
	Nc(phi symbolic.Set, group []string) symbolic.Set
}

// Variant selects how strategic operators are evaluated.
type Variant string

const (
	// SF splits the coalition's actions into uniform strategies, then
	// filters the winning pairs of each.
	SF Variant = "SF"
	// FS alternates filtering with splitting one conflicting class.
	FS Variant = "FS"
	// FSF filters once, splits what remains, then filters each strategy.
	FSF Variant = "FSF"
)

// Variants lists every variant.
var Variants = []Variant{SF, FS, FSF}

// ParseVariant maps a name to a variant. Unknown names select SF.
func ParseVariant(s string) Variant {
	switch Variant(strings.ToUpper(strings.TrimSpace(s))) {
	case FS:
		return FS
	case FSF:
		return FSF
	default:
		return SF
	}
}

// Semantics selects which strategies count as uniform.
type Semantics string

const (
	// Group: the coalition plays one joint action per class of states it
	// cannot distinguish with its pooled observations.
	Group Semantics = "group"
	// Individual: each member's action is uniform over its own
	// observation classes.
	Individual Semantics = "individual"
)

// ParseSemantics maps a name to a semantics. The empty string is Group.
func ParseSemantics(s string) (Semantics, error) {
	switch Semantics(strings.ToLower(strings.TrimSpace(s))) {
	case "", Group:
		return Group, nil
	case Individual:
		return Individual, nil
	}
	return Group, fmt.Errorf("%w: %q", ErrUnknownSemantics, s)
}

// Checker evaluates formulas over one model. It is not safe for concurrent
// use.
type Checker struct {
	model     Model
	variant   Variant
	semantics Semantics
	stats     *Stats
	logger    *bolt.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithVariant selects the strategic evaluation variant.
func WithVariant(v Variant) Option {
	return func(c *Checker) { c.variant = ParseVariant(string(v)) }
}

// WithSemantics selects the uniformity semantics.
func WithSemantics(s Semantics) Option {
	return func(c *Checker) { c.semantics = s }
}

// WithStats makes the checker count its work into s.
func WithStats(s *Stats) Option {
	return func(c *Checker) { c.stats = s }
}

// WithLogger enables debug logging of strategic evaluations.
func WithLogger(l *bolt.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// New returns a checker using SF and group semantics unless configured
// otherwise.
func New(m Model, opts ...Option) *Checker {
	c := &Checker{model: m, variant: SF, semantics: Group}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Variant returns the configured variant.
func (c *Checker) Variant() Variant { return c.variant }

// Semantics returns the configured semantics.
func (c *Checker) Semantics() Semantics { return c.semantics }

// EvalATLK returns the states of m satisfying f, evaluating strategic
// operators with the given variant under group semantics.
func EvalATLK(m Model, f atlk.Formula, variant Variant) (symbolic.Set, error) {
	return New(m, WithVariant(variant)).Eval(f)
}

// Eval returns the set of states satisfying f.
func (c *Checker) Eval(f atlk.Formula) (symbolic.Set, error) {
	for _, a := range atlk.Agents(f) {
		if !c.model.HasAgent(a) {
			return c.model.Manager().False(), fmt.Errorf("%w: %q in %s", ErrUnknownAgent, a, f)
		}
	}
	sat, err := c.eval(f)
	if err != nil {
		return sat, err
	}
	if err := c.model.Manager().Err(); err != nil {
		return sat, err
	}
	return sat, nil
}

// Check reports whether every initial state satisfies f.
func (c *Checker) Check(f atlk.Formula) (bool, error) {
	sat, err := c.Eval(f)
	if err != nil {
		return false, err
	}
	return c.model.InitStates().SubsetOf(sat), nil
}

func (c *Checker) not(s symbolic.Set) symbolic.Set {
	return c.model.StatesMask().Difference(s)
}

func (c *Checker) eval(f atlk.Formula) (symbolic.Set, error) {
	m := c.model
	switch n := f.(type) {
	case atlk.True:
		return m.StatesMask(), nil
	case atlk.False:
		return m.Manager().False(), nil
	case atlk.Init:
		return m.InitStates(), nil
	case atlk.Reachable:
		return m.ReachableStates(), nil
	case atlk.Atom:
		return m.Atom(n.Text)

	case atlk.Not:
		return c.unary(n.F, c.not)
	case atlk.And:
		return c.binary(n.Left, n.Right, func(a, b symbolic.Set) symbolic.Set { return a.Intersect(b) })
	case atlk.Or:
		return c.binary(n.Left, n.Right, func(a, b symbolic.Set) symbolic.Set { return a.Union(b) })
	case atlk.Implies:
		return c.binary(n.Left, n.Right, func(a, b symbolic.Set) symbolic.Set { return c.not(a).Union(b) })
	case atlk.Iff:
		return c.binary(n.Left, n.Right, func(a, b symbolic.Set) symbolic.Set {
			return a.Iff(b).Intersect(m.StatesMask())
		})

	case atlk.EX:
		return c.unary(n.F, m.Ex)
	case atlk.AX:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Ex(c.not(p))) })
	case atlk.EF:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return m.Eu(m.StatesMask(), p) })
	case atlk.AF:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Eg(c.not(p))) })
	case atlk.EG:
		return c.unary(n.F, m.Eg)
	case atlk.AG:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Eu(m.StatesMask(), c.not(p))) })
	case atlk.EU:
		return c.binary(n.Left, n.Right, m.Eu)
	case atlk.AU:
		// A[p U q] = ~(E[~q U ~q & ~p] | EG ~q)
		return c.binary(n.Left, n.Right, func(p, q symbolic.Set) symbolic.Set {
			nq := c.not(q)
			return c.not(m.Eu(nq, nq.Intersect(c.not(p))).Union(m.Eg(nq)))
		})
	case atlk.EW:
		return c.binary(n.Left, n.Right, func(p, q symbolic.Set) symbolic.Set {
			return m.Eu(p, q).Union(m.Eg(p))
		})
	case atlk.AW:
		// A[p W q] = ~E[~q U ~p & ~q]
		return c.binary(n.Left, n.Right, func(p, q symbolic.Set) symbolic.Set {
			nq := c.not(q)
			return c.not(m.Eu(nq, c.not(p).Intersect(nq)))
		})

	case atlk.NK:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return m.Nk(p, n.Agent) })
	case atlk.K:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Nk(c.not(p), n.Agent)) })
	case atlk.NE:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return m.Ne(p, n.Group) })
	case atlk.E:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Ne(c.not(p), n.Group)) })
	case atlk.ND:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return m.Nd(p, n.Group) })
	case atlk.D:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Nd(c.not(p), n.Group)) })
	case atlk.NC:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return m.Nc(p, n.Group) })
	case atlk.C:
		return c.unary(n.F, func(p symbolic.Set) symbolic.Set { return c.not(m.Nc(c.not(p), n.Group)) })

	case atlk.CoalX, atlk.CoalF, atlk.CoalG, atlk.CoalU, atlk.CoalW:
		g, err := c.goalOf(f)
		if err != nil {
			return m.Manager().False(), err
		}
		return c.strategic(g), nil
	case atlk.DualX, atlk.DualF, atlk.DualG, atlk.DualU, atlk.DualW:
		return c.eval(dual(f))
	}
	return c.model.Manager().False(), fmt.Errorf("%w: %T", ErrUnsupportedFormula, f)
}

func (c *Checker) unary(f atlk.Formula, op func(symbolic.Set) symbolic.Set) (symbolic.Set, error) {
	s, err := c.eval(f)
	if err != nil {
		return s, err
	}
	return op(s), nil
}

func (c *Checker) binary(l, r atlk.Formula, op func(a, b symbolic.Set) symbolic.Set) (symbolic.Set, error) {
	a, err := c.eval(l)
	if err != nil {
		return a, err
	}
	b, err := c.eval(r)
	if err != nil {
		return b, err
	}
	return op(a, b), nil
}

// dual rewrites [g] operators into negated <g> operators:
//
//	[g] X p     = ~<g> X ~p
//	[g] G p     = ~<g> F ~p
//	[g] F p     = ~<g> G ~p
//	[g][p U q]  = ~<g>[~q W ~p & ~q]
//	[g][p W q]  = ~<g>[~q U ~p & ~q]
func dual(f atlk.Formula) atlk.Formula {
	switch n := f.(type) {
	case atlk.DualX:
		return atlk.Not{F: atlk.CoalX{Group: n.Group, F: atlk.Not{F: n.F}}}
	case atlk.DualG:
		return atlk.Not{F: atlk.CoalF{Group: n.Group, F: atlk.Not{F: n.F}}}
	case atlk.DualF:
		return atlk.Not{F: atlk.CoalG{Group: n.Group, F: atlk.Not{F: n.F}}}
	case atlk.DualU:
		both := atlk.And{Left: atlk.Not{F: n.Left}, Right: atlk.Not{F: n.Right}}
		return atlk.Not{F: atlk.CoalW{Group: n.Group, Left: atlk.Not{F: n.Right}, Right: both}}
	case atlk.DualW:
		both := atlk.And{Left: atlk.Not{F: n.Left}, Right: atlk.Not{F: n.Right}}
		return atlk.Not{F: atlk.CoalU{Group: n.Group, Left: atlk.Not{F: n.Right}, Right: both}}
	}
	return f
}
