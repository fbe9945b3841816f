package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/models"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), stderr.String(), err
}

const switchModel = `
name: switch
variables:
  - name: light
    init: "FALSE"
    next:
      - when: "press = flip & light"
        value: "FALSE"
      - when: "press = flip"
        value: "TRUE"
inputs:
  - name: press
    values: [keep, flip]
agents:
  - name: user
    observes: [light]
    actions: [press]
specs:
  - formula: "<'user'> X 'light'"
    expect: true
  - formula: "<'user'> G ~'light'"
    expect: true
`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "switch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApp_Version(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "atlk version")
}

func TestApp_Help(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"check", "strategies", "graph", "models"} {
		assert.Contains(t, out, cmd)
	}
}

func TestApp_Models(t *testing.T) {
	out, _, err := run(t, "models", "-v")
	require.NoError(t, err)
	for _, name := range models.Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "agents: a1, a2")
}

func TestApp_CheckModelFile(t *testing.T) {
	out, _, err := run(t, "check", writeModel(t, switchModel), "--all-variants", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Model switch (2 reachable states, group semantics)")
	for _, v := range checker.Variants {
		assert.Contains(t, out, "✓ ["+string(v)+"] <'user'> X 'light'")
	}
	assert.Contains(t, out, "strategies=")
}

func TestApp_CheckExpectationFailure(t *testing.T) {
	bad := strings.Replace(switchModel, "expect: true\n  - formula: \"<'user'> G", "expect: false\n  - formula: \"<'user'> G", 1)
	out, _, err := run(t, "check", writeModel(t, bad))
	require.ErrorIs(t, err, ErrExpectationFailed)
	assert.Contains(t, out, "(expected false)")
}

func TestApp_CheckFormulaFlag(t *testing.T) {
	out, _, err := run(t, "check", "counters", "-f", "<'a1'> F 'v2'", "--variant", "FS")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ [FS] <'a1'> F 'v2'")
}

func TestApp_CheckErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown model", []string{"check", "no-such-model"}, models.ErrModelNotFound},
		{"unknown agent", []string{"check", "counters", "-f", "<'a3'> X 'v1'"}, checker.ErrUnknownAgent},
		{"bad semantics", []string{"check", "counters", "--semantics", "mixed"}, checker.ErrUnknownSemantics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApp_CheckWatchNeedsFile(t *testing.T) {
	_, _, err := run(t, "check", "counters", "--watch")
	assert.ErrorContains(t, err, "--watch needs a model file")
}

func TestApp_Strategies(t *testing.T) {
	out, _, err := run(t, "strategies", "coins", "a1", "a2")
	require.NoError(t, err)
	assert.Contains(t, out, "64 uniform strategies for <a1,a2> (individual semantics)")

	out, _, err = run(t, "strategies", "counters", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "4 uniform strategies for <a1>")

	_, _, err = run(t, "strategies", "counters", "nobody")
	assert.ErrorIs(t, err, checker.ErrUnknownAgent)
}

func TestApp_Graph(t *testing.T) {
	out, _, err := run(t, "graph", "coins", "--highlight", "'result = win'")
	require.NoError(t, err)
	assert.Contains(t, out, "stateDiagram-v2")
	assert.Contains(t, out, "c1=head,c2=head,result=win")
	assert.Contains(t, out, "classDef sat")

	out, _, err = run(t, "graph", "counters", "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")

	out, _, err = run(t, "graph", "counters", "--format", "tla")
	require.NoError(t, err)
	assert.Contains(t, out, "---- MODULE Counters ----")
	assert.Contains(t, out, "VARIABLES v1, v2")

	_, _, err = run(t, "graph", "counters", "--format", "svg")
	assert.ErrorContains(t, err, "unknown format")
}

func TestApp_Simulate(t *testing.T) {
	out, _, err := run(t, "simulate", "coins", "--steps", "3", "--runs", "2", "--seed", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "Run 1:")
	assert.Contains(t, out, "Run 2:")
	assert.Contains(t, out, "    0  c1=none,c2=none,result=none")

	again, _, err := run(t, "simulate", "coins", "--steps", "3", "--runs", "2", "--seed", "11")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestTLAModule(t *testing.T) {
	assert.Equal(t, "CardGame", tlaModule("card-game"))
	assert.Equal(t, "Coins", tlaModule("coins"))
	assert.Equal(t, "Model", tlaModule("--"))
}

func TestApp_ConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "atlk.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("variant: FSF\nlog:\n  level: debug\n  format: json\n"), 0o644))

	out, errOut, err := run(t, "-c", cfg, "check", "counters", "-f", "<'a1'> X 'v1'")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ [FSF]")
	assert.Contains(t, errOut, `"formula"`)

	_, _, err = run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "models")
	assert.Error(t, err)
}

func TestWatchFile(t *testing.T) {
	path := writeModel(t, switchModel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, func() { changed <- struct{}{} })
	}()

	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(path, []byte(switchModel), 0o644))
		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change notification")
		}
	}
}

func TestApp_CheckExamples(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "examples", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			out, _, err := run(t, "check", path, "--all-variants")
			require.NoError(t, err, out)
			assert.NotContains(t, out, "(expected")
		})
	}
}

func TestApp_CheckStatsTotals(t *testing.T) {
	out, _, err := run(t, "check", "counters", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Totals: ")
	assert.Contains(t, out, "atlk.checks=7")
}

func TestApp_CheckExplicit(t *testing.T) {
	out, _, err := run(t, "check", "counters", "--explicit",
		"-f", "AG EF ('v1' & 'v2')",
		"-f", "A['v1' U 'v2']",
		"-f", "EX 'v1'",
		"-f", "<'a1'> X 'v1'")
	require.NoError(t, err)
	assert.Contains(t, out, "Explicit graph: 3 CTL formulas agree (4 states)")

	// Fairness constraints are not modelled by the explicit checker.
	out, _, err = run(t, "check", "transmission", "--explicit", "-f", "EF 'received'")
	require.NoError(t, err)
	assert.Contains(t, out, "Explicit graph: 0 CTL formulas agree")
}
