// Command genmodel scaffolds a new model: a YAML definition that the atlk
// CLI can check directly and, with --package, a Go package implementing
// models.ModelSpec with a test asserting its expectations.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rfielding/kripke-atlk/mas"
)

var (
	errBadName = errors.New("model name must match [a-z][a-z0-9_]*")
	errExists  = errors.New("file already exists")
	nameRE     = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		dir   string
		pkg   bool
		force bool
	)
	cmd := &cobra.Command{
		Use:           "genmodel NAME",
		Short:         "Scaffold a new model",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !nameRE.MatchString(name) {
				return fmt.Errorf("%w: %q", errBadName, name)
			}
			g := generator{dir: dir, force: force}
			paths, err := g.yaml(name)
			if err != nil {
				return err
			}
			if pkg {
				more, err := g.goPackage(name)
				if err != nil {
					return err
				}
				paths = append(paths, more...)
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "repository root to write into")
	cmd.Flags().BoolVar(&pkg, "package", false, "also write models/NAME/model.go and its test")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	return cmd
}

// scaffold is the starting definition: one agent flipping a light it sees.
func scaffold(name string) mas.Definition {
	return mas.Definition{
		Name:        name,
		Description: "a light switch",
		Variables: []mas.Variable{{
			Name: "light",
			Init: "FALSE",
			Next: []mas.Case{
				{When: "press = flip & light", Value: "FALSE"},
				{When: "press = flip", Value: "TRUE"},
			},
		}},
		Inputs: []mas.Input{{Name: "press", Values: []string{"keep", "flip"}}},
		Agents: []mas.Agent{{Name: "user", Observes: []string{"light"}, Actions: []string{"press"}}},
		Specs: []mas.Spec{
			{Formula: "<'user'> X 'light'", Expect: mas.Expect(true)},
			{Formula: "<'user'> G ~'light'", Expect: mas.Expect(true)},
		},
	}
}

type generator struct {
	dir   string
	force bool
}

func (g generator) write(rel string, data []byte) (string, error) {
	path := filepath.Join(g.dir, rel)
	if !g.force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", errExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (g generator) yaml(name string) ([]string, error) {
	data, err := yaml.Marshal(scaffold(name))
	if err != nil {
		return nil, err
	}
	path, err := g.write(filepath.Join("models", name+".yaml"), data)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

const modelSource = `// Package __NAME__ is a scaffolded model.
package __NAME__

import "github.com/rfielding/kripke-atlk/mas"

// Model implements models.ModelSpec.
type Model struct{}

func (Model) Name() string { return "__NAME__" }

func (Model) OriginalText() string {
	return "One user sees a light and may flip it at every step."
}

func (Model) Definition() mas.Definition {
	return mas.Definition{
		Name:        "__NAME__",
		Description: "a light switch",
		Variables: []mas.Variable{{
			Name: "light",
			Init: "FALSE",
			Next: []mas.Case{
				{When: "press = flip & light", Value: "FALSE"},
				{When: "press = flip", Value: "TRUE"},
			},
		}},
		Inputs: []mas.Input{{Name: "press", Values: []string{"keep", "flip"}}},
		Agents: []mas.Agent{{Name: "user", Observes: []string{"light"}, Actions: []string{"press"}}},
		Specs: []mas.Spec{
			{Formula: "<'user'> X 'light'", Expect: mas.Expect(true)},
			{Formula: "<'user'> G ~'light'", Expect: mas.Expect(true)},
		},
	}
}
`

const testSource = `package __NAME__

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/symbolic"
)

func TestExpectations(t *testing.T) {
	def := Model{}.Definition()
	m, err := mas.Build(def, symbolic.DefaultOptions())
	require.NoError(t, err)
	for _, spec := range def.Specs {
		f, err := atlk.Parse(spec.Formula)
		require.NoError(t, err)
		for _, v := range checker.Variants {
			got, err := checker.New(m, checker.WithVariant(v)).Check(f)
			require.NoError(t, err)
			require.Equal(t, *spec.Expect, got, "%s [%s]", spec.Formula, v)
		}
	}
}
`

func (g generator) goPackage(name string) ([]string, error) {
	files := []struct{ name, source string }{
		{"model.go", modelSource},
		{"model_test.go", testSource},
	}
	var paths []string
	for _, f := range files {
		src := strings.ReplaceAll(f.source, "__NAME__", name)
		path, err := g.write(filepath.Join("models", name, f.name), []byte(src))
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
