package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rfielding/kripke-atlk/checker"
)

type strategiesOptions struct {
	semantics string
}

func (a *App) newStrategiesCmd() *cobra.Command {
	opts := &strategiesOptions{}

	cmd := &cobra.Command{
		Use:   "strategies MODEL AGENT...",
		Short: "Count the uniform strategies of a coalition",
		Long: `Count the uniform memoryless strategies a coalition can play over the
reachable states of a model.

Examples:
  atlk strategies coins a1 a2
  atlk strategies coins a1 a2 --semantics group`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStrategies(args[0], args[1:], opts)
		},
	}
	cmd.Flags().StringVar(&opts.semantics, "semantics", "", "Strategy semantics (group or individual)")
	return cmd
}

func (a *App) runStrategies(arg string, group []string, opts *strategiesOptions) error {
	def, err := loadDefinition(arg)
	if err != nil {
		return err
	}
	m, err := a.buildModel(def)
	if err != nil {
		return err
	}
	if err := checkAgents(m, group); err != nil {
		return err
	}
	sem, err := a.semantics(opts.semantics, def)
	if err != nil {
		return err
	}

	c := checker.New(m, checker.WithSemantics(sem), checker.WithLogger(a.logger))
	n := c.CountStrategies(group)
	if err := m.Manager().Err(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%d uniform strategies for <%s> (%s semantics)\n", n, strings.Join(group, ","), sem)
	return nil
}
