package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/symbolic"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"cardgame", "coins", "counters", "transmission"}, Names())
	assert.Len(t, All(), 4)

	s, err := Lookup("coins")
	require.NoError(t, err)
	assert.Equal(t, "coins", s.Name())
	assert.NotEmpty(t, s.OriginalText())

	_, err = Lookup("chess")
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.ErrorContains(t, err, "cardgame")
}

func TestDefinitionsAreValid(t *testing.T) {
	for _, s := range All() {
		def := s.Definition()
		assert.Equal(t, s.Name(), def.Name)
		assert.NoError(t, def.Validate(), s.Name())
		assert.NotEmpty(t, def.Specs, s.Name())
	}
}

// Every shipped formula must evaluate to its expectation under every
// variant.
func TestExpectations(t *testing.T) {
	for _, s := range All() {
		def := s.Definition()
		m, err := mas.Build(def, symbolic.DefaultOptions())
		require.NoError(t, err, s.Name())
		sem, err := checker.ParseSemantics(def.Semantics)
		require.NoError(t, err)

		for _, spec := range def.Specs {
			require.NotNil(t, spec.Expect, "%s: %s has no expectation", s.Name(), spec.Formula)
			f, err := atlk.Parse(spec.Formula)
			require.NoError(t, err)
			for _, v := range checker.Variants {
				t.Run(s.Name()+"/"+string(v)+"/"+spec.Formula, func(t *testing.T) {
					got, err := checker.New(m, checker.WithVariant(v), checker.WithSemantics(sem)).Check(f)
					require.NoError(t, err)
					assert.Equal(t, *spec.Expect, got)
				})
			}
		}
	}
}
