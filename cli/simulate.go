package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rfielding/kripke-atlk/kripke"
	"github.com/rfielding/kripke-atlk/logging"
)

type simulateOptions struct {
	steps int
	runs  int
	seed  uint64
	limit int
}

func (a *App) newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate MODEL",
		Short: "Print random runs of a model",
		Long: `Draw random runs through the reachable states of a model. Each step
picks one successor uniformly, whatever the agents' protocols allow.
Runs stop early in a deadlock.

Examples:
  atlk simulate coins
  atlk simulate cardgame --runs 3 --steps 6 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSimulate(args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.steps, "steps", 10, "Transitions per run")
	cmd.Flags().IntVar(&opts.runs, "runs", 1, "Number of runs")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&opts.limit, "limit", 500, "Refuse models with more reachable states (0 for no limit)")
	return cmd
}

func (a *App) runSimulate(arg string, opts *simulateOptions) error {
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

	seed := opts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logging.With(a.logger.Debug(),
		logging.Model(m.Name()),
		logging.Count("seed", int64(seed)),
	).Msg("simulating")

	sim := kripke.NewSimulator(g, seed)
	for i := range opts.runs {
		trace, err := sim.Run(opts.steps)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Run %d:\n", i+1)
		for j, s := range trace {
			fmt.Fprintf(a.stdout, "  %3d  %s\n", j, s)
		}
	}
	return nil
}
