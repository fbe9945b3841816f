package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/models/coins"
	"github.com/rfielding/kripke-atlk/models/counters"
)

func TestBuild_Counters(t *testing.T) {
	t.Parallel()
	spec := counters.Model{}
	r, err := Build(spec.Name(), spec.OriginalText(), spec.Definition(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, int64(4), r.States)
	assert.Equal(t, checker.Individual, r.Semantics)
	assert.Len(t, r.Rows, len(spec.Definition().Specs)*len(checker.Variants))
	assert.Zero(t, r.Mismatches())
	assert.Equal(t, float64(len(r.Rows)), r.Collector.Value("checks"))
	assert.Contains(t, r.Diagram, "stateDiagram-v2")
}

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()
	spec := coins.Model{}
	opts := DefaultOptions()
	opts.Variants = []checker.Variant{checker.FSF}
	r, err := Build(spec.Name(), spec.OriginalText(), spec.Definition(), opts)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, r.WriteMarkdown(&sb))
	md := sb.String()

	assert.True(t, strings.HasPrefix(md, "# coins\n"))
	assert.Contains(t, md, "| a1 | c1 | act1 |")
	assert.Contains(t, md, "```mermaid\nstateDiagram-v2")
	assert.Contains(t, md, "| `<'a1', 'a2'> F 'result = win'` | FSF | false | false |")
	assert.Contains(t, md, "| Metric | Type | Value | Unit | Description |")
	assert.Contains(t, md, "xychart-beta")
	assert.NotContains(t, md, "⚠")
}

func TestWriteMarkdown_SkipsLargeDiagrams(t *testing.T) {
	t.Parallel()
	spec := coins.Model{}
	opts := DefaultOptions()
	opts.DiagramLimit = 2
	opts.Variants = []checker.Variant{checker.SF}
	def := spec.Definition()
	def.Specs = def.Specs[:1]
	r, err := Build(spec.Name(), "", def, opts)
	require.NoError(t, err)
	assert.Empty(t, r.Diagram)

	var sb strings.Builder
	require.NoError(t, r.WriteMarkdown(&sb))
	assert.NotContains(t, sb.String(), "## Reachable states")
}

func TestCellEscapesPipes(t *testing.T) {
	assert.Equal(t, `'a' \| 'b'`, cell("'a' | 'b'"))
}
