package cli

import (
	"errors"
	"fmt"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/kripke"
	"github.com/rfielding/kripke-atlk/mas"
)

// ErrExplicitMismatch is returned when the explicit-state checker and the
// symbolic one disagree on a CTL formula.
var ErrExplicitMismatch = errors.New("explicit and symbolic results differ")

const explicitLimit = 5000

// crossCheck re-evaluates the CTL formulas among results on the explicit
// reachable graph. Epistemic and strategic formulas are skipped.
func (a *App) crossCheck(m *mas.MAS, results []result) error {
	g, err := m.Explicit(explicitLimit)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	checked := 0
	for _, r := range results {
		if seen[r.Spec.Formula] {
			continue
		}
		seen[r.Spec.Formula] = true

		f, err := atlk.Parse(r.Spec.Formula)
		if err != nil {
			return err
		}
		ef, err := m.ExplicitFormula(f)
		if errors.Is(err, mas.ErrNotExplicit) {
			continue
		}
		if err != nil {
			return err
		}
		checked++
		if holds := kripke.Holds(ef, g); holds != r.Holds {
			return fmt.Errorf("%w: %s (explicit %t, symbolic %t)", ErrExplicitMismatch, r.Spec.Formula, holds, r.Holds)
		}
	}
	fmt.Fprintf(a.stdout, "Explicit graph: %d CTL formulas agree (%d states)\n", checked, len(g.States))
	return nil
}
