package cardgame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/symbolic"
)

func TestWinOnlyAtShowdown(t *testing.T) {
	m, err := mas.Build(Model{}.Definition(), symbolic.DefaultOptions())
	require.NoError(t, err)

	early, err := m.Atom("win & step != 2")
	require.NoError(t, err)
	assert.True(t, early.Intersect(m.ReachableStates()).IsEmpty())

	// Dealing ace and king is still possible, so the deal says nothing
	// about the dealer's card.
	dealt, err := m.Atom("step = 1 & pcard = Ac & dcard = K")
	require.NoError(t, err)
	assert.False(t, dealt.Intersect(m.ReachableStates()).IsEmpty())

	f := atlk.MustParse("<'player'> F 'win'")
	for _, v := range checker.Variants {
		c := checker.New(m, checker.WithVariant(v), checker.WithSemantics(checker.Individual))
		got, err := c.Check(f)
		require.NoError(t, err)
		assert.False(t, got, string(v))
	}
}
