package checker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/logging"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/models"
	"github.com/rfielding/kripke-atlk/models/coins"
	"github.com/rfielding/kripke-atlk/models/counters"
	"github.com/rfielding/kripke-atlk/models/transmission"
	"github.com/rfielding/kripke-atlk/symbolic"
)

var _ Model = (*mas.MAS)(nil)

func build(t *testing.T, def mas.Definition) *mas.MAS {
	t.Helper()
	m, err := mas.Build(def, symbolic.DefaultOptions())
	require.NoError(t, err)
	return m
}

func check(t *testing.T, c *Checker, formula string) bool {
	t.Helper()
	ok, err := c.Check(atlk.MustParse(formula))
	require.NoError(t, err)
	return ok
}

func TestParseVariant(t *testing.T) {
	assert.Equal(t, SF, ParseVariant("sf"))
	assert.Equal(t, FS, ParseVariant(" fs "))
	assert.Equal(t, FSF, ParseVariant("FSF"))
	assert.Equal(t, SF, ParseVariant("bogus"))
	assert.Equal(t, FSF, New(nil, WithVariant("fsf")).Variant())
}

func TestParseSemantics(t *testing.T) {
	s, err := ParseSemantics("")
	require.NoError(t, err)
	assert.Equal(t, Group, s)

	s, err = ParseSemantics("Individual")
	require.NoError(t, err)
	assert.Equal(t, Individual, s)

	_, err = ParseSemantics("joint")
	assert.ErrorIs(t, err, ErrUnknownSemantics)
}

func TestCountStrategies(t *testing.T) {
	m := build(t, coins.Model{}.Definition())

	// Each agent has three observation classes and two actions.
	ind := New(m, WithSemantics(Individual))
	assert.Equal(t, 64, ind.CountStrategies([]string{"a1", "a2"}))
	assert.Equal(t, 8, ind.CountStrategies([]string{"a1"}))

	// Pooled observations give five classes of four joint actions.
	grp := New(m, WithSemantics(Group))
	assert.Equal(t, 1024, grp.CountStrategies([]string{"a1", "a2"}))

	c := build(t, counters.Model{}.Definition())
	assert.Equal(t, 4, New(c).CountStrategies([]string{"a1"}))
}

func TestSplit_PartitionsIntoUniformStrategies(t *testing.T) {
	m := build(t, coins.Model{}.Definition())
	for _, sem := range []Semantics{Group, Individual} {
		t.Run(string(sem), func(t *testing.T) {
			c := New(m, WithSemantics(sem))
			group := []string{"a1", "a2"}
			start := m.Protocol(group).Intersect(m.ReachableStates())

			union := m.Manager().False()
			var seen []symbolic.Set
			for strat := range c.Split(start, group) {
				require.True(t, strat.SubsetOf(start))
				// A uniform strategy has nothing left to split.
				for _, slot := range c.slots(group) {
					out := c.SplitOne(strat, slot)
					require.Len(t, out, 1)
					require.True(t, out[0].Chunk.IsEmpty())
					require.True(t, out[0].Common.Equals(strat))
				}
				// It covers every reachable state.
				require.True(t, strat.Forsome(m.InputsCube()).Equals(m.ReachableStates()))
				for _, other := range seen {
					require.False(t, other.Equals(strat))
				}
				seen = append(seen, strat)
				union = union.Union(strat)
			}
			assert.True(t, union.Equals(start))
		})
	}
}

func TestSplit_EmptySet(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	c := New(m)
	n := 0
	for strat := range c.Split(m.Manager().False(), []string{"a1"}) {
		assert.True(t, strat.IsEmpty())
		n++
	}
	assert.Equal(t, 1, n)

	out := c.SplitOne(m.Manager().False(), []string{"a1"})
	require.Len(t, out, 1)
	assert.True(t, out[0].Common.IsEmpty())
	assert.True(t, out[0].Chunk.IsEmpty())
	assert.True(t, out[0].Rest.IsEmpty())
}

func TestSplitOne_CutsFirstConflict(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	c := New(m)
	group := []string{"a1"}
	start := m.Protocol(group).Intersect(m.ReachableStates())

	out := c.SplitOne(start, group)
	require.Len(t, out, 2)
	for _, sp := range out {
		assert.False(t, sp.Chunk.IsEmpty())
		assert.True(t, sp.Common.Intersect(sp.Chunk).IsEmpty())
		assert.True(t, sp.Chunk.Intersect(sp.Rest).IsEmpty())
	}
	assert.True(t, out[0].Chunk.Intersect(out[1].Chunk).IsEmpty())
	assert.True(t, out[0].Common.Equals(out[1].Common))
	assert.True(t, out[0].Rest.Equals(out[1].Rest))
	all := out[0].Common.Union(out[0].Rest).Union(out[0].Chunk).Union(out[1].Chunk)
	assert.True(t, all.Equals(start))
}

func TestCoins(t *testing.T) {
	m := build(t, coins.Model{}.Definition())
	for _, v := range Variants {
		t.Run(string(v), func(t *testing.T) {
			ind := New(m, WithVariant(v), WithSemantics(Individual))
			assert.False(t, check(t, ind, "<'a1','a2'> F 'result = win'"))
			assert.True(t, check(t, ind, "EF 'result = win'"))

			grp := New(m, WithVariant(v), WithSemantics(Group))
			assert.True(t, check(t, grp, "<'a1','a2'> F 'result = win'"))
			assert.False(t, check(t, grp, "<'a1'> F 'result = win'"))
		})
	}
}

// Every variant must compute the same satisfaction set, not only the same
// verdict in the initial states.
func TestVariantsAgree(t *testing.T) {
	for _, spec := range models.All() {
		def := spec.Definition()
		m := build(t, def)
		sem, err := ParseSemantics(def.Semantics)
		require.NoError(t, err)
		for _, s := range def.Specs {
			f := atlk.MustParse(s.Formula)
			if !atlk.Strategic(f) {
				continue
			}
			t.Run(spec.Name()+"/"+s.Formula, func(t *testing.T) {
				want, err := New(m, WithSemantics(sem)).Eval(f)
				require.NoError(t, err)
				for _, v := range []Variant{FS, FSF} {
					got, err := New(m, WithVariant(v), WithSemantics(sem)).Eval(f)
					require.NoError(t, err)
					assert.True(t, want.Equals(got), "%s differs from SF", v)
				}
			})
		}
	}
}

func TestDuals(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	c := New(m, WithSemantics(Individual))
	pairs := [][2]string{
		{"['a2'] X 'v1'", "~<'a2'> X ~'v1'"},
		{"['a2'] F 'v1'", "~<'a2'> G ~'v1'"},
		{"['a2'] G 'v1'", "~<'a2'> F ~'v1'"},
		{"['a1']['v1' U 'v2']", "~<'a1'>[~'v2' W (~'v1' & ~'v2')]"},
		{"['a1']['v1' W 'v2']", "~<'a1'>[~'v2' U (~'v1' & ~'v2')]"},
	}
	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			a, err := c.Eval(atlk.MustParse(p[0]))
			require.NoError(t, err)
			b, err := c.Eval(atlk.MustParse(p[1]))
			require.NoError(t, err)
			assert.True(t, a.Equals(b))
		})
	}
}

func TestStrategicAgainstCTL(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	c := New(m, WithSemantics(Individual))

	// The grand coalition sees enough here to act like a path quantifier.
	for _, pair := range [][2]string{
		{"<'a1','a2'> X 'v1'", "EX 'v1'"},
		{"['a1','a2'] G 'v1'", "AG 'v1'"},
	} {
		a, err := c.Eval(atlk.MustParse(pair[0]))
		require.NoError(t, err)
		b, err := c.Eval(atlk.MustParse(pair[1]))
		require.NoError(t, err)
		assert.True(t, a.Equals(b), "%s vs %s", pair[0], pair[1])
	}
}

func TestStats(t *testing.T) {
	var stats Stats
	m := build(t, transmission.Model{}.Definition())
	c := New(m, WithStats(&stats))
	assert.True(t, check(t, c, "<'sender'> F 'received'"))
	assert.Equal(t, int64(2), stats.Strategies)
	assert.Positive(t, stats.Filterings)
	assert.Positive(t, stats.Splits)
	assert.Positive(t, stats.FixpointIterations)
	assert.Positive(t, stats.NfairIterations)

	var plain Stats
	cm := build(t, counters.Model{}.Definition())
	assert.True(t, check(t, New(cm, WithStats(&plain)), "<'a1'> X 'v1'"))
	assert.Zero(t, plain.NfairIterations)
	assert.Equal(t, int64(4), plain.Strategies)

	sum := stats
	sum.Add(plain)
	assert.Equal(t, plain, sum.Sub(stats))
}

func TestTransmissionFairness(t *testing.T) {
	m := build(t, transmission.Model{}.Definition())
	for _, v := range Variants {
		c := New(m, WithVariant(v))
		assert.True(t, check(t, c, "<'transmitter'> F 'FALSE'"), v)
		assert.False(t, check(t, c, "<'sender'> F 'FALSE'"), v)
		assert.False(t, check(t, c, "<'sender'> G ~'received'"), v)
	}
}

func TestEval_Errors(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	c := New(m)

	_, err := c.Eval(atlk.MustParse("<'a3'> X 'v1'"))
	assert.ErrorIs(t, err, ErrUnknownAgent)
	_, err = c.Eval(atlk.MustParse("K<'nobody'> 'v1'"))
	assert.ErrorIs(t, err, ErrUnknownAgent)
	_, err = c.Eval(atlk.MustParse("'v3'"))
	assert.ErrorIs(t, err, mas.ErrUnknownVariable)
	_, err = c.Check(atlk.MustParse("AG 'act1 = inc'"))
	assert.ErrorIs(t, err, mas.ErrExpression)
}

func TestEvalATLK(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	sat, err := EvalATLK(m, atlk.MustParse("<'a1'> X 'v1'"), FSF)
	require.NoError(t, err)
	assert.True(t, sat.Equals(m.ReachableStates()))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})
	m := build(t, counters.Model{}.Definition())

	var stats Stats
	c := New(m, WithLogger(logger), WithStats(&stats), WithVariant(FS))
	assert.True(t, check(t, c, "<'a1'> X 'v1'"))

	out := buf.String()
	assert.Contains(t, out, "strategic operator evaluated")
	assert.Contains(t, out, `"variant"`)
	assert.Contains(t, out, `"coalition"`)
	assert.Contains(t, out, `"filterings"`)
}

// Indistinguishability of one slot is an equivalence, so removing the
// states that see a losing state is done in one pass.
func TestAllEquivSat_Idempotent(t *testing.T) {
	m := build(t, coins.Model{}.Definition())
	c := New(m, WithSemantics(Group))
	w, err := c.Eval(atlk.MustParse("'c1 = head' | 'result = win'"))
	require.NoError(t, err)
	w = w.Intersect(m.ReachableStates())
	for _, group := range [][]string{{"a1"}, {"a2"}, {"a1", "a2"}} {
		once := c.allEquivSat(w, group)
		twice := c.allEquivSat(once, group)
		assert.True(t, once.Equals(twice), group)
		assert.True(t, once.SubsetOf(w), group)
	}
}

func TestFilter_MonotoneInCandidate(t *testing.T) {
	m := build(t, coins.Model{}.Definition())
	c := New(m, WithSemantics(Individual))
	for _, formula := range []string{
		"<'a1', 'a2'> F 'result = win'",
		"<'a1', 'a2'> G 'result != lose'",
		"<'a1', 'a2'>['result = none' W 'result = win']",
		"<'a1', 'a2'>['result = none' U 'result = win']",
	} {
		t.Run(formula, func(t *testing.T) {
			g, err := c.goalOf(atlk.MustParse(formula))
			require.NoError(t, err)

			start := m.Protocol(g.group).Intersect(m.ReachableStates())
			all := c.filter(g, start)
			n := 0
			for strat := range c.Split(start, g.group) {
				assert.True(t, c.filter(g, strat).SubsetOf(all))
				if n++; n == 16 {
					break
				}
			}
			assert.True(t, c.filter(g, m.Manager().False()).IsEmpty())
		})
	}
}

func TestEmptyProtocol(t *testing.T) {
	def := counters.Model{}.Definition()
	def.Agents[0].Protocol = []mas.Rule{{Allow: "FALSE"}}
	m := build(t, def)
	require.True(t, m.Protocol([]string{"a1"}).IsEmpty())

	for _, formula := range []string{
		"<'a1'> X 'v1'",
		"<'a1'> F TRUE",
		"<'a1'> G TRUE",
		"<'a1'>[TRUE U 'v1']",
		"<'a1'>[TRUE W 'v1']",
	} {
		for _, v := range Variants {
			t.Run(string(v)+"/"+formula, func(t *testing.T) {
				sat, err := New(m, WithVariant(v)).Eval(atlk.MustParse(formula))
				require.NoError(t, err)
				assert.True(t, sat.IsEmpty())
			})
		}
	}
}

// iterate applies f from start until nothing changes.
func iterate(start symbolic.Set, f func(symbolic.Set) symbolic.Set) symbolic.Set {
	for {
		next := f(start)
		if next.Equals(start) {
			return start
		}
		start = next
	}
}

// Without fairness the filter reduces to the textbook fixpoints over the
// coalition's controllable predecessor.
func TestFilter_WithoutFairness(t *testing.T) {
	m := build(t, counters.Model{}.Definition())
	require.Empty(t, m.FairnessConstraints())

	var stats Stats
	c := New(m, WithStats(&stats))
	group := []string{"a1"}
	strat := m.Protocol(group).Intersect(m.ReachableStates())
	mask := m.StatesInputsMask().Intersect(strat)
	pre := func(z symbolic.Set) symbolic.Set { return m.PreStratSI(z, group, strat) }

	v1, err := m.Atom("v1")
	require.NoError(t, err)
	v2, err := m.Atom("v2")
	require.NoError(t, err)
	phi, psi := v2.Intersect(mask), v1.Intersect(mask)

	assert.True(t, c.nfairGammaSI(group, strat).IsEmpty())

	until := iterate(psi, func(z symbolic.Set) symbolic.Set { return psi.Union(phi.Intersect(pre(z))) })
	assert.True(t, c.ceu(group, v2, v1, strat).Equals(until))

	weak := iterate(phi.Union(psi), func(y symbolic.Set) symbolic.Set { return y.Intersect(psi.Union(pre(y))) })
	assert.True(t, c.cew(group, v2, v1, strat).Equals(weak))

	global := iterate(psi, func(y symbolic.Set) symbolic.Set { return y.Intersect(pre(y)) })
	assert.True(t, c.ceg(group, v1, strat).Equals(global))
	assert.False(t, global.IsEmpty())

	assert.Zero(t, stats.NfairIterations)
}
