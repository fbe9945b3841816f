package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/models"
	"github.com/rfielding/kripke-atlk/symbolic"
)

// loadDefinition resolves a built-in model name or a model file path.
func loadDefinition(arg string) (mas.Definition, error) {
	spec, err := models.Lookup(arg)
	if err == nil {
		return spec.Definition(), nil
	}
	if _, statErr := os.Stat(arg); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return mas.Definition{}, err
		}
		return mas.Definition{}, statErr
	}
	return mas.LoadFile(arg)
}

func (a *App) buildModel(def mas.Definition) (*mas.MAS, error) {
	return mas.Build(def, symbolic.Options{
		NodeSize:  a.cfg.BDD.NodeSize,
		CacheSize: a.cfg.BDD.CacheSize,
	})
}

// semantics picks the first non-empty of the flag, the configuration and
// the model's own setting.
func (a *App) semantics(flag string, def mas.Definition) (checker.Semantics, error) {
	for _, s := range []string{flag, a.cfg.Semantics, def.Semantics} {
		if s != "" {
			return checker.ParseSemantics(s)
		}
	}
	return checker.Group, nil
}

func (a *App) variant(flag string) checker.Variant {
	name := flag
	if name == "" {
		name = a.cfg.Variant
	}
	v := checker.ParseVariant(name)
	if name != "" && !strings.EqualFold(strings.TrimSpace(name), string(v)) {
		a.logger.Warn().Str("variant", name).Msg("unknown variant, using SF")
	}
	return v
}

func checkAgents(m *mas.MAS, group []string) error {
	for _, name := range group {
		if !m.HasAgent(name) {
			return fmt.Errorf("%w: %q (model has %v)", checker.ErrUnknownAgent, name, m.Agents())
		}
	}
	return nil
}
