package mas

import (
	"fmt"
	"slices"

	"github.com/rfielding/kripke-atlk/symbolic"
)

type agent struct {
	name     string
	observes []*variable
	actions  []*variable
}

// MAS is a symbolic multi-agent system. It caches reachable and fair states
// on first use and must not be shared between goroutines.
type MAS struct {
	def Definition
	mgr *symbolic.Manager
	enc encoder

	vars   map[string]*variable
	state  []*variable
	inputs []*variable
	agents map[string]*agent
	order  []string

	defines map[string]symbolic.Set

	statesCube symbolic.VarSet
	nextCube   symbolic.VarSet
	inputsCube symbolic.VarSet
	toNext     *symbolic.Renamer
	toCur      *symbolic.Renamer

	statesMask symbolic.Set
	inputsMask symbolic.Set
	siMask     symbolic.Set
	nextMask   symbolic.Set

	init     symbolic.Set
	trans    symbolic.Set
	fairness []symbolic.Set

	reachable *symbolic.Set
	fair      *symbolic.Set
}

// Build encodes a definition.
func Build(def Definition, opts symbolic.Options) (*MAS, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	m := &MAS{
		def:     def,
		vars:    make(map[string]*variable),
		agents:  make(map[string]*agent),
		defines: make(map[string]symbolic.Set),
	}
	for _, v := range def.Variables {
		x := newVariable(v.Name, v.Values, false)
		m.state = append(m.state, x)
		m.vars[v.Name] = x
	}
	for _, in := range def.Inputs {
		x := newVariable(in.Name, in.Values, true)
		m.inputs = append(m.inputs, x)
		m.vars[in.Name] = x
	}
	for _, a := range def.Agents {
		ag := &agent{name: a.Name}
		for _, o := range a.Observes {
			ag.observes = append(ag.observes, m.vars[o])
		}
		for _, act := range a.Actions {
			x := m.vars[act]
			x.owner = a.Name
			ag.actions = append(ag.actions, x)
		}
		m.agents[a.Name] = ag
		m.order = append(m.order, a.Name)
	}

	varnum := layout(m.state, m.inputs)
	mgr, err := symbolic.NewManager(varnum, opts)
	if err != nil {
		return nil, err
	}
	m.mgr = mgr
	m.enc = encoder{mgr: mgr}

	if err := m.buildCubes(); err != nil {
		return nil, err
	}
	for _, d := range def.Defines {
		s, err := m.compile(d.Expr, scope{})
		if err != nil {
			return nil, fmt.Errorf("define %s: %w", d.Name, err)
		}
		m.defines[d.Name] = s.Intersect(m.statesMask)
	}
	if err := m.buildInit(); err != nil {
		return nil, err
	}
	if err := m.buildTrans(); err != nil {
		return nil, err
	}
	for _, f := range def.Fairness {
		s, err := m.compile(f, scope{})
		if err != nil {
			return nil, fmt.Errorf("fairness: %w", err)
		}
		m.fairness = append(m.fairness, s.Intersect(m.statesMask))
	}
	return m, mgr.Err()
}

func (m *MAS) buildCubes() error {
	var cur, next, in []int
	m.statesMask = m.mgr.True()
	m.nextMask = m.mgr.True()
	m.inputsMask = m.mgr.True()
	for _, v := range m.state {
		cur = append(cur, v.cur...)
		next = append(next, v.next...)
		m.statesMask = m.statesMask.Intersect(m.enc.domain(v, false))
		m.nextMask = m.nextMask.Intersect(m.enc.domain(v, true))
	}
	for _, v := range m.inputs {
		in = append(in, v.cur...)
		m.inputsMask = m.inputsMask.Intersect(m.enc.domain(v, false))
	}
	m.siMask = m.statesMask.Intersect(m.inputsMask)
	m.statesCube = symbolic.NewVarSet(cur...)
	m.nextCube = symbolic.NewVarSet(next...)
	m.inputsCube = symbolic.NewVarSet(in...)

	var err error
	if m.toNext, err = m.mgr.NewRenamer(cur, next); err != nil {
		return err
	}
	m.toCur, err = m.mgr.NewRenamer(next, cur)
	return err
}

func (m *MAS) buildInit() error {
	init := m.statesMask
	for i, v := range m.def.Variables {
		if v.Init == "" {
			continue
		}
		s, err := m.enc.eqValue(m.state[i], v.Init, false)
		if err != nil {
			return err
		}
		init = init.Intersect(s)
	}
	extra, err := m.compile(m.def.Init, scope{})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	m.init = init.Intersect(extra)
	return nil
}

func (m *MAS) buildTrans() error {
	trans := m.siMask.Intersect(m.nextMask)
	for i, v := range m.def.Variables {
		rel, err := m.nextRelation(m.state[i], v.Next)
		if err != nil {
			return fmt.Errorf("next(%s): %w", v.Name, err)
		}
		trans = trans.Intersect(rel)
	}
	for _, a := range m.def.Agents {
		p, err := m.protocolConstraint(a)
		if err != nil {
			return fmt.Errorf("protocol(%s): %w", a.Name, err)
		}
		trans = trans.Intersect(p)
	}
	m.trans = trans
	return nil
}

// nextRelation relates current state and inputs to the next value of v.
// The first case whose guard holds wins; otherwise v keeps its value.
func (m *MAS) nextRelation(v *variable, cases []Case) (symbolic.Set, error) {
	rel := m.mgr.False()
	remaining := m.mgr.True()
	for _, c := range cases {
		guard, err := m.compile(c.When, scope{inputs: true})
		if err != nil {
			return rel, err
		}
		update, err := m.update(v, c)
		if err != nil {
			return rel, err
		}
		rel = rel.Union(remaining.Intersect(guard).Intersect(update))
		remaining = remaining.Difference(guard)
	}
	return rel.Union(remaining.Intersect(m.enc.same(v, v, true))), nil
}

func (m *MAS) update(v *variable, c Case) (symbolic.Set, error) {
	switch {
	case c.Value != "":
		if _, ok := v.index[c.Value]; ok {
			return m.enc.eqValue(v, c.Value, true)
		}
		if w, ok := m.vars[c.Value]; ok {
			return m.enc.same(v, w, true), nil
		}
		return m.mgr.False(), fmt.Errorf("%w: %q is neither a value of %s nor a variable", ErrUnknownValue, c.Value, v.name)
	case len(c.OneOf) > 0:
		out := m.mgr.False()
		for _, val := range c.OneOf {
			s, err := m.enc.eqValue(v, val, true)
			if err != nil {
				return out, err
			}
			out = out.Union(s)
		}
		return out, nil
	default:
		return m.enc.domain(v, true), nil
	}
}

// protocolConstraint is the set of states and inputs where the agent's
// actions are allowed.
func (m *MAS) protocolConstraint(a Agent) (symbolic.Set, error) {
	observed := make(map[string]bool)
	for _, o := range a.Observes {
		observed[o] = true
	}
	own := make(map[string]bool)
	for _, act := range a.Actions {
		own[act] = true
	}
	allowed := m.mgr.False()
	remaining := m.mgr.True()
	for _, r := range a.Protocol {
		guard, err := m.compile(r.When, scope{only: observed})
		if err != nil {
			return allowed, err
		}
		allow, err := m.compile(r.Allow, scope{inputs: true, only: map[string]bool{}})
		if err != nil {
			return allowed, err
		}
		for _, in := range m.inputs {
			if !own[in.name] && !allow.Forsome(symbolic.NewVarSet(in.cur...)).Equals(allow) {
				return allowed, fmt.Errorf("%w: rule %q reads input %s of another agent", ErrExpression, r.Allow, in.name)
			}
		}
		allowed = allowed.Union(remaining.Intersect(guard).Intersect(allow))
		remaining = remaining.Difference(guard)
	}
	return allowed.Union(remaining), nil
}

// Name returns the model name.
func (m *MAS) Name() string { return m.def.Name }

// Definition returns the definition the model was built from.
func (m *MAS) Definition() Definition { return m.def }

// Manager returns the symbolic manager of the model.
func (m *MAS) Manager() *symbolic.Manager { return m.mgr }

// Agents lists agent names in declaration order.
func (m *MAS) Agents() []string { return slices.Clone(m.order) }

// HasAgent reports whether name is an agent of the model.
func (m *MAS) HasAgent(name string) bool {
	_, ok := m.agents[name]
	return ok
}

// StatesCube is the set of current-state levels.
func (m *MAS) StatesCube() symbolic.VarSet { return m.statesCube }

// InputsCube is the set of all input levels.
func (m *MAS) InputsCube() symbolic.VarSet { return m.inputsCube }

// InputsCubeForAgents is the set of input levels controlled by the group.
func (m *MAS) InputsCubeForAgents(group []string) symbolic.VarSet {
	var ls []int
	for _, name := range group {
		if a, ok := m.agents[name]; ok {
			for _, act := range a.actions {
				ls = append(ls, act.cur...)
			}
		}
	}
	return symbolic.NewVarSet(ls...)
}

// StatesMask is the set of valid state encodings.
func (m *MAS) StatesMask() symbolic.Set { return m.statesMask }

// StatesInputsMask is the set of valid state and input encodings.
func (m *MAS) StatesInputsMask() symbolic.Set { return m.siMask }

// InitStates returns the initial states.
func (m *MAS) InitStates() symbolic.Set { return m.init }

// Trans returns the transition relation over current state, inputs and
// next state.
func (m *MAS) Trans() symbolic.Set { return m.trans }

// FairnessConstraints returns the justice constraints as state sets.
func (m *MAS) FairnessConstraints() []symbolic.Set { return slices.Clone(m.fairness) }

// Post returns the successors of the states (and inputs) of s.
func (m *MAS) Post(s symbolic.Set) symbolic.Set {
	img := m.trans.Intersect(s).Forsome(m.statesCube.Union(m.inputsCube))
	return img.Rename(m.toCur).Intersect(m.statesMask)
}

// Pre returns the states having a successor in the state set s.
func (m *MAS) Pre(s symbolic.Set) symbolic.Set {
	return m.weakPre(s).Forsome(m.inputsCube)
}

// weakPre is the set of state/input pairs leading into the state set s.
func (m *MAS) weakPre(s symbolic.Set) symbolic.Set {
	next := s.Intersect(m.statesMask).Rename(m.toNext)
	return m.trans.Intersect(next).Forsome(m.nextCube)
}

// ReachableStates returns the states reachable from the initial states.
func (m *MAS) ReachableStates() symbolic.Set {
	if m.reachable == nil {
		r, _ := symbolic.Fixpoint(m.init, func(z symbolic.Set) symbolic.Set {
			return z.Union(m.Post(z))
		})
		m.reachable = &r
	}
	return *m.reachable
}

// Protocol returns the state/input pairs in which the group's actions are
// enabled, whatever the other agents play.
func (m *MAS) Protocol(group []string) symbolic.Set {
	others := m.inputsCube.Difference(m.InputsCubeForAgents(group))
	enabled := m.trans.Forsome(m.nextCube)
	return enabled.Forsome(others).Intersect(m.siMask)
}

// PreStratSI returns the pairs of strat whose group action is enabled and
// leads, for every enabled completion by the other agents, into a state
// having some pair in z.
func (m *MAS) PreStratSI(z symbolic.Set, group []string, strat symbolic.Set) symbolic.Set {
	others := m.inputsCube.Difference(m.InputsCubeForAgents(group))
	target := z.Forsome(m.inputsCube).Intersect(m.statesMask)
	escape := m.weakPre(m.statesMask.Difference(target)).Forsome(others)
	enabled := m.trans.Forsome(m.nextCube).Forsome(others)
	return strat.Intersect(enabled).Difference(escape).Intersect(m.siMask)
}

// EquivalentStates returns the reachable states the group cannot
// distinguish from some state of s: those agreeing with it on every
// variable observed by at least one member.
func (m *MAS) EquivalentStates(s symbolic.Set, group []string) symbolic.Set {
	var seen []int
	for _, name := range group {
		if a, ok := m.agents[name]; ok {
			for _, o := range a.observes {
				seen = append(seen, o.cur...)
			}
		}
	}
	hidden := m.statesCube.Difference(symbolic.NewVarSet(seen...))
	eq := s.Forsome(m.inputsCube).Forsome(hidden)
	return eq.Intersect(m.statesMask).Intersect(m.ReachableStates())
}

// PickOneStateInputs returns a single state/input pair of s.
func (m *MAS) PickOneStateInputs(s symbolic.Set) symbolic.Set {
	return m.mgr.PickOne(s, m.statesCube.Union(m.inputsCube))
}

// Atom evaluates a state expression such as "result = win".
func (m *MAS) Atom(text string) (symbolic.Set, error) {
	s, err := m.compile(text, scope{})
	if err != nil {
		return s, err
	}
	return s.Intersect(m.statesMask), nil
}

// CountStates returns the number of states in the state set s.
func (m *MAS) CountStates(s symbolic.Set) int64 {
	return m.mgr.Count(s.Intersect(m.statesMask), m.statesCube).Int64()
}
