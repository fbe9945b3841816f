package cli

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/kripke"
)

type graphOptions struct {
	format    string
	limit     int
	highlight string
	variant   string
	semantics string
	noLabels  bool
}

func (a *App) newGraphCmd() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph MODEL",
		Short: "Print the reachable state graph",
		Long: `Print the reachable states and transitions of a model as a Mermaid
state diagram, a Graphviz DOT graph or a TLA+ module enumerating the
transitions. With --highlight the states satisfying a formula are marked.

Examples:
  atlk graph coins
  atlk graph coins --format dot --highlight "'result = win'"
  atlk graph counters --format tla > Counters.tla`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGraph(args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "mermaid", "Output format (mermaid, dot or tla)")
	cmd.Flags().IntVar(&opts.limit, "limit", 500, "Refuse models with more reachable states (0 for no limit)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "Mark the states satisfying this formula")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Strategic evaluation variant for --highlight")
	cmd.Flags().StringVar(&opts.semantics, "semantics", "", "Strategy semantics for --highlight")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "Show state aliases only")
	return cmd
}

func (a *App) runGraph(arg string, opts *graphOptions) error {
	switch opts.format {
	case "mermaid", "dot", "tla":
	default:
		return fmt.Errorf("unknown format %q (want mermaid, dot or tla)", opts.format)
	}

	def, err := loadDefinition(arg)
	if err != nil {
		return err
	}
	m, err := a.buildModel(def)
	if err != nil {
		return err
	}
	g, err := m.Explicit(opts.limit)
	if err != nil {
		return err
	}
	if opts.format == "tla" {
		return kripke.WriteTLA(g, a.stdout, tlaModule(m.Name()))
	}

	diagramOpts := []kripke.DiagramOption{kripke.WithTitle(m.Name())}
	if opts.noLabels {
		diagramOpts = append(diagramOpts, kripke.WithoutLabels())
	}
	if opts.highlight != "" {
		f, err := atlk.Parse(opts.highlight)
		if err != nil {
			return err
		}
		sem, err := a.semantics(opts.semantics, def)
		if err != nil {
			return err
		}
		c := checker.New(m,
			checker.WithVariant(a.variant(opts.variant)),
			checker.WithSemantics(sem),
			checker.WithLogger(a.logger))
		sat, err := c.Eval(f)
		if err != nil {
			return err
		}
		diagramOpts = append(diagramOpts, kripke.WithHighlight(m.DecodeStates(sat)))
	}
	if opts.format == "dot" {
		return kripke.WriteDOT(g, a.stdout, diagramOpts...)
	}
	return kripke.WriteMermaid(g, a.stdout, diagramOpts...)
}

// tlaModule turns a model name into a TLA+ module name.
func tlaModule(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	if sb.Len() == 0 {
		return "Model"
	}
	return sb.String()
}
