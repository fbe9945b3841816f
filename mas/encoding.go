package mas

import (
	"fmt"
	"math/bits"

	"github.com/rfielding/kripke-atlk/symbolic"
)

// variable is the binary encoding of one finite-domain variable. State
// variables own a current and a next copy of their bits; inputs only have
// current bits.
type variable struct {
	name   string
	values []string
	index  map[string]int
	cur    []int
	next   []int
	input  bool
	owner  string
}

func newVariable(name string, values []string, input bool) *variable {
	v := &variable{
		name:   name,
		values: domainOf(values),
		index:  make(map[string]int),
		input:  input,
	}
	for i, val := range v.values {
		v.index[val] = i
	}
	return v
}

// width is the number of bits needed for the domain, at least one.
func (v *variable) width() int {
	n := len(v.values)
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

func (v *variable) isBool() bool {
	return len(v.values) == 2 && v.values[0] == "FALSE" && v.values[1] == "TRUE"
}

// layout assigns levels to every variable. State bits come first with the
// current and next copy of each bit adjacent, then input bits.
func layout(state, inputs []*variable) int {
	level := 0
	for _, v := range state {
		w := v.width()
		v.cur = make([]int, w)
		v.next = make([]int, w)
		for b := 0; b < w; b++ {
			v.cur[b] = level
			v.next[b] = level + 1
			level += 2
		}
	}
	for _, v := range inputs {
		w := v.width()
		v.cur = make([]int, w)
		for b := 0; b < w; b++ {
			v.cur[b] = level
			level++
		}
	}
	return level
}

// encoder builds symbolic sets over the variable layout.
type encoder struct {
	mgr *symbolic.Manager
}

func (e encoder) levels(v *variable, next bool) []int {
	if next {
		return v.next
	}
	return v.cur
}

// eq is the set where v holds its i-th value.
func (e encoder) eq(v *variable, i int, next bool) symbolic.Set {
	ls := e.levels(v, next)
	bs := make([]bool, len(ls))
	for b := range ls {
		bs[b] = i&(1<<b) != 0
	}
	return e.mgr.Cube(ls, bs)
}

// eqValue is eq by value name.
func (e encoder) eqValue(v *variable, value string, next bool) (symbolic.Set, error) {
	i, ok := v.index[value]
	if !ok {
		return e.mgr.False(), fmt.Errorf("%w: %q is not a value of %s", ErrUnknownValue, value, v.name)
	}
	return e.eq(v, i, next), nil
}

// domain is the set of valid encodings of v.
func (e encoder) domain(v *variable, next bool) symbolic.Set {
	d := e.mgr.False()
	for i := range v.values {
		d = d.Union(e.eq(v, i, next))
	}
	return d
}

// same relates the current values of a and b, or of a's next copy when
// next is set, matching values by name.
func (e encoder) same(a, b *variable, next bool) symbolic.Set {
	out := e.mgr.False()
	for i, val := range a.values {
		j, ok := b.index[val]
		if !ok {
			continue
		}
		out = out.Union(e.eq(a, i, next).Intersect(e.eq(b, j, false)))
	}
	return out
}

// decode reads the value of v from an assignment of levels.
func (e encoder) decode(v *variable, value func(level int) bool) string {
	i := 0
	for b, l := range v.cur {
		if value(l) {
			i |= 1 << b
		}
	}
	if i < len(v.values) {
		return v.values[i]
	}
	return fmt.Sprintf("#%d", i)
}
