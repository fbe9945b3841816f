package atlk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Formula
	}{
		{"'x = 1'", Atom{Text: "x = 1"}},
		{"True", True{}},
		{"FALSE", False{}},
		{"Init & Reachable", And{Left: Init{}, Right: Reachable{}}},
		{"~'a' | 'b'", Or{Left: Not{F: Atom{Text: "a"}}, Right: Atom{Text: "b"}}},
		{"'a' -> 'b' -> 'c'", Implies{Left: Atom{Text: "a"}, Right: Implies{Left: Atom{Text: "b"}, Right: Atom{Text: "c"}}}},
		{"'a' <-> 'b'", Iff{Left: Atom{Text: "a"}, Right: Atom{Text: "b"}}},
		{"AG EF 'a'", AG{F: EF{F: Atom{Text: "a"}}}},
		{"E['a' U 'b']", EU{Left: Atom{Text: "a"}, Right: Atom{Text: "b"}}},
		{"A['a' W 'b']", AW{Left: Atom{Text: "a"}, Right: Atom{Text: "b"}}},
		{"K<'ag'> 'a'", K{Agent: "ag", F: Atom{Text: "a"}}},
		{"nK<ag> 'a'", NK{Agent: "ag", F: Atom{Text: "a"}}},
		{"E<'b','a'> 'x'", E{Group: []string{"a", "b"}, F: Atom{Text: "x"}}},
		{"nC<a> 'x'", NC{Group: []string{"a"}, F: Atom{Text: "x"}}},
		{"D<a, b> 'x'", D{Group: []string{"a", "b"}, F: Atom{Text: "x"}}},
		{"<'a2', 'a1'> F 'win'", CoalF{Group: []string{"a1", "a2"}, F: Atom{Text: "win"}}},
		{"<a> X 'x'", CoalX{Group: []string{"a"}, F: Atom{Text: "x"}}},
		{"<a, a> G 'x'", CoalG{Group: []string{"a"}, F: Atom{Text: "x"}}},
		{"<a>['x' U 'y']", CoalU{Group: []string{"a"}, Left: Atom{Text: "x"}, Right: Atom{Text: "y"}}},
		{"[a] F 'x'", DualF{Group: []string{"a"}, F: Atom{Text: "x"}}},
		{"[a]['x' W 'y']", DualW{Group: []string{"a"}, Left: Atom{Text: "x"}, Right: Atom{Text: "y"}}},
		{"AG ('c' -> K<'a'> 'c')", AG{F: Implies{Left: Atom{Text: "c"}, Right: K{Agent: "a", F: Atom{Text: "c"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"'a",
		"''",
		"'a' &",
		"('a'",
		"<a> Y 'x'",
		"<> F 'x'",
		"K<a, b> 'x'",
		"E['a' V 'b']",
		"'a' 'b'",
		"foo",
		"'a' # 'b'",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "%v should wrap ErrSyntax", err)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestString_RoundTrips(t *testing.T) {
	for _, input := range []string{
		"<'a1','a2'> F 'result = win'",
		"AG ('v1' -> <'a1'> G 'v1')",
		"[a]['x' U ~'y']",
		"E<'a','b'> nK<'a'> 'x'",
		"A['p' W ('q' | 'r')]",
	} {
		f := MustParse(input)
		again, err := Parse(f.String())
		require.NoError(t, err, f.String())
		assert.Equal(t, f, again)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(") })
}

func TestAgentsAndStrategic(t *testing.T) {
	f := MustParse("K<'c'> <'b','a'> X 'x' & E<'c','d'> 'y'")
	assert.Equal(t, []string{"c", "a", "b", "d"}, Agents(f))
	assert.True(t, Strategic(f))
	assert.False(t, Strategic(MustParse("AG K<'a'> 'x'")))
	assert.Empty(t, Agents(MustParse("EF 'x'")))
}

func TestNormalizeGroup(t *testing.T) {
	in := []string{"b", "a", "b"}
	assert.Equal(t, []string{"a", "b"}, NormalizeGroup(in))
	assert.Equal(t, []string{"b", "a", "b"}, in)
}
