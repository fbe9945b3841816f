// Package models registers the built-in multi-agent systems.
package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/models/cardgame"
	"github.com/rfielding/kripke-atlk/models/coins"
	"github.com/rfielding/kripke-atlk/models/counters"
	"github.com/rfielding/kripke-atlk/models/transmission"
)

// ErrModelNotFound is returned by Lookup for unknown names.
var ErrModelNotFound = errors.New("model not found")

// ModelSpec is the small API that model packages implement.
type ModelSpec interface {
	Name() string
	// OriginalText describes the scenario in plain English.
	OriginalText() string
	Definition() mas.Definition
}

var builtin = map[string]ModelSpec{}

func init() {
	for _, s := range []ModelSpec{
		cardgame.Model{},
		coins.Model{},
		counters.Model{},
		transmission.Model{},
	} {
		builtin[s.Name()] = s
	}
}

// Names lists the built-in models in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the built-in models sorted by name.
func All() []ModelSpec {
	out := make([]ModelSpec, 0, len(builtin))
	for _, name := range Names() {
		out = append(out, builtin[name])
	}
	return out
}

// Lookup finds a built-in model by name.
func Lookup(name string) (ModelSpec, error) {
	s, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrModelNotFound, name, Names())
	}
	return s, nil
}
