// Package symbolic is the set algebra the strategy engine runs on: sets of
// boolean vectors over a fixed number of variables, backed by reduced ordered
// binary decision diagrams from github.com/dalzilio/rudd.
//
// A Set is an immutable value. Every operation returns a fresh Set and never
// modifies its operands, so sets can be shared freely between fixpoint
// iterations and split branches.
package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/dalzilio/rudd"
)

// ErrResourceExhausted is returned when the diagram manager runs out of
// nodes or otherwise enters an error state. It is not recoverable.
var ErrResourceExhausted = errors.New("symbolic: resource exhausted")

// Options sizes the node table and operation cache.
type Options struct {
	NodeSize  int
	CacheSize int
}

// DefaultOptions is enough for the bundled models.
func DefaultOptions() Options {
	return Options{NodeSize: 10000, CacheSize: 5000}
}

// Manager owns the variable universe. Sets built by different managers must
// never be combined.
type Manager struct {
	bdd    *rudd.BDD
	varnum int
}

// NewManager creates a manager over varnum boolean variables, numbered
// 0..varnum-1 (their "levels").
func NewManager(varnum int, opts Options) (*Manager, error) {
	if varnum <= 0 {
		return nil, fmt.Errorf("symbolic: invalid variable count %d", varnum)
	}
	if opts.NodeSize <= 0 {
		opts.NodeSize = DefaultOptions().NodeSize
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}
	b, err := rudd.New(varnum, rudd.Nodesize(opts.NodeSize), rudd.Cachesize(opts.CacheSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}
	return &Manager{bdd: b, varnum: varnum}, nil
}

// Varnum returns the number of variables.
func (m *Manager) Varnum() int { return m.varnum }

// Err reports whether the underlying diagram manager hit an error.
func (m *Manager) Err() error {
	if m.bdd.Errored() {
		return fmt.Errorf("%w: %s", ErrResourceExhausted, m.bdd.Error())
	}
	return nil
}

func (m *Manager) wrap(n rudd.Node) Set { return Set{m: m, n: n} }

// True is the full set.
func (m *Manager) True() Set { return m.wrap(m.bdd.True()) }

// False is the empty set.
func (m *Manager) False() Set { return m.wrap(m.bdd.False()) }

// Var is the set of vectors whose variable at level is 1.
func (m *Manager) Var(level int) Set { return m.wrap(m.bdd.Ithvar(level)) }

// NotVar is the set of vectors whose variable at level is 0.
func (m *Manager) NotVar(level int) Set { return m.wrap(m.bdd.NIthvar(level)) }

// Literal is Var(level) when value is true and NotVar(level) otherwise.
func (m *Manager) Literal(level int, value bool) Set {
	if value {
		return m.Var(level)
	}
	return m.NotVar(level)
}

// Cube is the conjunction of literals assigning bits[i] to levels[i].
func (m *Manager) Cube(levels []int, bits []bool) Set {
	nodes := make([]rudd.Node, 0, len(levels))
	for i, l := range levels {
		if bits[i] {
			nodes = append(nodes, m.bdd.Ithvar(l))
		} else {
			nodes = append(nodes, m.bdd.NIthvar(l))
		}
	}
	if len(nodes) == 0 {
		return m.True()
	}
	return m.wrap(m.bdd.And(nodes...))
}

// VarSet is a set of levels used for quantification.
type VarSet struct {
	levels []int
}

// NewVarSet returns the set of the given levels, de-duplicated and sorted.
func NewVarSet(levels ...int) VarSet {
	ls := slices.Clone(levels)
	slices.Sort(ls)
	return VarSet{levels: slices.Compact(ls)}
}

// Levels returns the sorted levels.
func (v VarSet) Levels() []int { return slices.Clone(v.levels) }

// Len returns the number of levels.
func (v VarSet) Len() int { return len(v.levels) }

// Contains reports whether level belongs to v.
func (v VarSet) Contains(level int) bool {
	_, ok := slices.BinarySearch(v.levels, level)
	return ok
}

// Union returns v ∪ o.
func (v VarSet) Union(o VarSet) VarSet {
	return NewVarSet(append(slices.Clone(v.levels), o.levels...)...)
}

// Difference returns v \ o.
func (v VarSet) Difference(o VarSet) VarSet {
	out := make([]int, 0, len(v.levels))
	for _, l := range v.levels {
		if !o.Contains(l) {
			out = append(out, l)
		}
	}
	return VarSet{levels: out}
}

// Renamer substitutes variables, e.g. current-state bits for next-state bits.
type Renamer struct {
	r rudd.Replacer
}

// NewRenamer maps every from[i] to to[i].
func (m *Manager) NewRenamer(from, to []int) (*Renamer, error) {
	r, err := m.bdd.NewReplacer(from, to)
	if err != nil {
		return nil, fmt.Errorf("symbolic: renamer: %w", err)
	}
	return &Renamer{r: r}, nil
}

// PickOne returns a single vector of s restricted to the levels of over, as
// a cube. Levels s does not constrain are set to 0. The result is empty
// only when s is empty.
func (m *Manager) PickOne(s Set, over VarSet) Set {
	if s.IsEmpty() {
		return m.False()
	}
	// rudd keeps walking sibling branches after a callback error, so only
	// the first assignment is kept.
	var path []int
	stop := errors.New("stop")
	_ = m.bdd.Allsat(func(assign []int) error {
		if path == nil {
			path = slices.Clone(assign)
		}
		return stop
	}, s.n)
	bits := make([]bool, len(over.levels))
	for i, l := range over.levels {
		bits[i] = path[l] == 1
	}
	return m.Cube(over.levels, bits)
}

// Each calls f once for every vector of s, projected on the levels of over.
// bits[i] is the value of over.Levels()[i]. s must not depend on variables
// outside over. The first error returned by f ends the enumeration and is
// returned.
func (m *Manager) Each(s Set, over VarSet, f func(bits []bool) error) error {
	var ferr error
	_ = m.bdd.Allsat(func(assign []int) error {
		if ferr != nil {
			return ferr
		}
		var free []int
		bits := make([]bool, len(over.levels))
		for i, l := range over.levels {
			switch assign[l] {
			case 1:
				bits[i] = true
			case -1:
				free = append(free, i)
			}
		}
		ferr = expand(bits, free, f)
		return ferr
	}, s.n)
	return ferr
}

func expand(bits []bool, free []int, f func([]bool) error) error {
	if len(free) == 0 {
		return f(slices.Clone(bits))
	}
	i := free[0]
	for _, v := range []bool{false, true} {
		bits[i] = v
		if err := expand(bits, free[1:], f); err != nil {
			return err
		}
	}
	bits[i] = false
	return nil
}

// Count returns the number of vectors of s projected on over.
func (m *Manager) Count(s Set, over VarSet) *big.Int {
	total := new(big.Int)
	_ = m.bdd.Allsat(func(assign []int) error {
		free := 0
		for _, l := range over.levels {
			if assign[l] == -1 {
				free++
			}
		}
		total.Add(total, new(big.Int).Lsh(big.NewInt(1), uint(free)))
		return nil
	}, s.n)
	return total
}
