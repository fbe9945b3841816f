package kripke

import (
	"fmt"
	"io"
	"strings"
)

type diagramOptions struct {
	showLabels bool
	highlight  StateSet
	title      string
}

// DiagramOption customises diagram output.
type DiagramOption func(*diagramOptions)

// WithoutLabels omits the variable assignment of each state.
func WithoutLabels() DiagramOption {
	return func(o *diagramOptions) { o.showLabels = false }
}

// WithHighlight marks the given states, typically those satisfying a formula.
func WithHighlight(s StateSet) DiagramOption {
	return func(o *diagramOptions) { o.highlight = s }
}

// WithTitle sets the graph name of DOT output.
func WithTitle(title string) DiagramOption {
	return func(o *diagramOptions) { o.title = title }
}

func newDiagramOptions(options []DiagramOption) *diagramOptions {
	opts := &diagramOptions{showLabels: true, title: "Kripke"}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

// aliases gives every state a short identifier usable in diagram syntax.
func aliases(g *Graph) map[StateID]string {
	out := make(map[StateID]string, len(g.States))
	for i, s := range g.States {
		out[s] = fmt.Sprintf("s%d", i)
	}
	return out
}

// WriteMermaid writes a Mermaid stateDiagram-v2 representation of g to w.
func WriteMermaid(g *Graph, w io.Writer, options ...DiagramOption) error {
	opts := newDiagramOptions(options)
	alias := aliases(g)

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	for _, s := range g.Init {
		fmt.Fprintf(&sb, "    [*] --> %s\n", alias[s])
	}
	for _, from := range g.States {
		for _, to := range g.Succ[from] {
			fmt.Fprintf(&sb, "    %s --> %s\n", alias[from], alias[to])
		}
	}
	if opts.showLabels {
		sb.WriteString("\n")
		for _, s := range g.States {
			fmt.Fprintf(&sb, "    %s: %s\n", alias[s], s)
		}
	}
	if len(opts.highlight) > 0 {
		sb.WriteString("\n    classDef sat fill:#c8f7c5\n")
		for _, s := range g.States {
			if opts.highlight.Has(s) {
				fmt.Fprintf(&sb, "    class %s sat\n", alias[s])
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteDOT writes a Graphviz DOT representation of g to w.
func WriteDOT(g *Graph, w io.Writer, options ...DiagramOption) error {
	opts := newDiagramOptions(options)
	alias := aliases(g)

	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", opts.title)
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n\n")

	// Invisible start node pointing to the initial states
	sb.WriteString("  start [shape=point];\n")
	for _, s := range g.Init {
		fmt.Fprintf(&sb, "  start -> %s;\n", alias[s])
	}
	sb.WriteString("\n")

	for _, s := range g.States {
		label := alias[s]
		if opts.showLabels {
			label = strings.ReplaceAll(string(s), ",", "\\n")
		}
		attrs := `label="` + label + `"`
		if opts.highlight.Has(s) {
			attrs += ", style=filled, fillcolor=palegreen"
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", alias[s], attrs)
	}
	sb.WriteString("\n")
	for _, from := range g.States {
		for _, to := range g.Succ[from] {
			fmt.Fprintf(&sb, "  %s -> %s;\n", alias[from], alias[to])
		}
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
