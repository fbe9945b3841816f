// Package mas builds symbolic multi-agent systems from a small declarative
// definition: finite-domain state variables, input (action) variables, agents
// that observe some state variables and control some inputs, guarded
// protocols and fairness constraints.
package mas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for model definitions.
var (
	ErrInvalidModel    = errors.New("invalid model")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownValue    = errors.New("unknown value")
	ErrExpression      = errors.New("invalid expression")
)

// Definition is the serialisable description of a multi-agent system.
type Definition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Semantics is the default strategy semantics for this model, "group"
	// or "individual". Empty means group.
	Semantics string `yaml:"semantics,omitempty" json:"semantics,omitempty"`

	Variables []Variable `yaml:"variables" json:"variables"`
	Inputs    []Input    `yaml:"inputs" json:"inputs"`
	Agents    []Agent    `yaml:"agents" json:"agents"`

	// Defines name state expressions usable in later defines, guards,
	// fairness constraints and atoms.
	Defines []Define `yaml:"defines,omitempty" json:"defines,omitempty"`

	// Init further constrains the initial states.
	Init string `yaml:"init,omitempty" json:"init,omitempty"`

	// Fairness lists justice constraints: every fair path visits each of
	// them infinitely often.
	Fairness []string `yaml:"fairness,omitempty" json:"fairness,omitempty"`

	Specs []Spec `yaml:"specs,omitempty" json:"specs,omitempty"`
}

// Variable is a state variable. A variable without values is boolean with
// the domain {FALSE, TRUE}.
type Variable struct {
	Name   string   `yaml:"name" json:"name"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`

	// Init is the initial value. Empty leaves it unconstrained.
	Init string `yaml:"init,omitempty" json:"init,omitempty"`

	// Next cases are tried in order; the first whose guard holds decides the
	// next value. When no guard holds the variable keeps its value.
	Next []Case `yaml:"next,omitempty" json:"next,omitempty"`
}

// Case is one guarded update of a state variable.
type Case struct {
	// When is a guard over current state and inputs. Empty means always.
	When string `yaml:"when,omitempty" json:"when,omitempty"`

	// Value is a value of the domain, or the name of another variable whose
	// current value is copied.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// OneOf is a nondeterministic choice between values. With neither Value
	// nor OneOf the next value is unconstrained.
	OneOf []string `yaml:"one_of,omitempty" json:"one_of,omitempty"`
}

// Define is a named state expression.
type Define struct {
	Name string `yaml:"name" json:"name"`
	Expr string `yaml:"expr" json:"expr"`
}

// Input is an action variable.
type Input struct {
	Name   string   `yaml:"name" json:"name"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
}

// Agent observes some state variables and controls some inputs.
type Agent struct {
	Name     string   `yaml:"name" json:"name"`
	Observes []string `yaml:"observes" json:"observes"`
	Actions  []string `yaml:"actions" json:"actions"`

	// Protocol rules are tried in order; the first whose guard holds
	// restricts the agent's actions to Allow. Without a matching rule every
	// action is enabled. Guards may only read observed variables.
	Protocol []Rule `yaml:"protocol,omitempty" json:"protocol,omitempty"`
}

// Rule is one protocol entry.
type Rule struct {
	When  string `yaml:"when,omitempty" json:"when,omitempty"`
	Allow string `yaml:"allow" json:"allow"`
}

// Spec is a formula shipped with a model, with its expected truth value in
// the initial states when known.
type Spec struct {
	Formula     string `yaml:"formula" json:"formula"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Expect      *bool  `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expect returns a pointer to b, for Spec.Expect literals.
func Expect(b bool) *bool { return &b }

// LoadFile reads a definition from a YAML or JSON file, chosen by extension.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read model %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	default:
		return ParseYAML(data)
	}
}

// ParseYAML decodes and validates a YAML definition. Unknown fields are
// rejected.
func ParseYAML(data []byte) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return def, def.Validate()
}

// ParseJSON decodes and validates a JSON definition.
func ParseJSON(data []byte) (Definition, error) {
	var def Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return def, def.Validate()
}

// Validate checks names and cross references. Expressions are checked when
// the model is built.
func (d Definition) Validate() error {
	if len(d.Variables) == 0 {
		return fmt.Errorf("%w: no state variables", ErrInvalidModel)
	}
	switch d.Semantics {
	case "", "group", "individual":
	default:
		return fmt.Errorf("%w: unknown semantics %q", ErrInvalidModel, d.Semantics)
	}

	seen := make(map[string]string)
	declare := func(kind, name string, values []string) error {
		if !validName(name) {
			return fmt.Errorf("%w: bad %s name %q", ErrInvalidModel, kind, name)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s %q already declared as %s", ErrInvalidModel, kind, name, prev)
		}
		seen[name] = kind
		vs := make(map[string]bool)
		for _, v := range values {
			if !validName(v) && !isNumber(v) && !contains(boolDomain, v) {
				return fmt.Errorf("%w: bad value %q of %s", ErrInvalidModel, v, name)
			}
			if vs[v] {
				return fmt.Errorf("%w: duplicate value %q of %s", ErrInvalidModel, v, name)
			}
			vs[v] = true
		}
		return nil
	}
	for _, v := range d.Variables {
		if err := declare("variable", v.Name, v.Values); err != nil {
			return err
		}
		if v.Init != "" && !contains(domainOf(v.Values), v.Init) {
			return fmt.Errorf("%w: init %q of %s", ErrUnknownValue, v.Init, v.Name)
		}
	}
	for _, in := range d.Inputs {
		if err := declare("input", in.Name, in.Values); err != nil {
			return err
		}
	}
	for _, def := range d.Defines {
		if err := declare("define", def.Name, nil); err != nil {
			return err
		}
	}

	owner := make(map[string]string)
	agents := make(map[string]bool)
	for _, a := range d.Agents {
		if !validName(a.Name) {
			return fmt.Errorf("%w: bad agent name %q", ErrInvalidModel, a.Name)
		}
		if agents[a.Name] {
			return fmt.Errorf("%w: duplicate agent %q", ErrInvalidModel, a.Name)
		}
		agents[a.Name] = true
		for _, o := range a.Observes {
			if seen[o] != "variable" {
				return fmt.Errorf("%w: agent %s observes %q", ErrUnknownVariable, a.Name, o)
			}
		}
		for _, act := range a.Actions {
			if seen[act] != "input" {
				return fmt.Errorf("%w: agent %s controls %q", ErrUnknownVariable, a.Name, act)
			}
			if prev, ok := owner[act]; ok {
				return fmt.Errorf("%w: input %q controlled by both %s and %s", ErrInvalidModel, act, prev, a.Name)
			}
			owner[act] = a.Name
		}
	}
	return nil
}

var boolDomain = []string{"FALSE", "TRUE"}

func domainOf(values []string) []string {
	if len(values) == 0 {
		return boolDomain
	}
	return values
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}

func validName(s string) bool {
	if s == "" || s == "TRUE" || s == "FALSE" || s == "in" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
