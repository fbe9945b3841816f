package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/telemetry"
)

// checkOptions holds options for the check command.
type checkOptions struct {
	formulas    []string
	variant     string
	semantics   string
	allVariants bool
	stats       bool
	explicit    bool
	watch       bool
}

func (a *App) newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check MODEL",
		Short: "Check formulas on a model",
		Long: `Check ATLK formulas on a model. MODEL is a built-in model name or a
path to a YAML or JSON model file. Without --formula the formulas shipped
with the model are checked, and a result differing from the expected one
makes the command fail.

Examples:
  # Check the specs of a built-in model
  atlk check coins

  # Check one formula with every variant
  atlk check coins -f "<'a1','a2'> F 'result = win'" --all-variants

  # Compare CTL results with the explicit-state checker
  atlk check counters --explicit

  # Re-check a model file whenever it changes
  atlk check model.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.formulas, "formula", "f", nil, "Formula to check (repeatable)")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Strategic evaluation variant (SF, FS, FSF)")
	cmd.Flags().StringVar(&opts.semantics, "semantics", "", "Strategy semantics (group or individual)")
	cmd.Flags().BoolVar(&opts.allVariants, "all-variants", false, "Check with every variant")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print work counters per check")
	cmd.Flags().BoolVar(&opts.explicit, "explicit", false, "Also check CTL formulas on the explicit state graph")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-check when the model file changes")
	return cmd
}

func (a *App) runCheck(ctx context.Context, arg string, opts *checkOptions) error {
	provider, err := telemetry.NewProvider(a.cfg.Tracing,
		telemetry.WithService("atlk", Version),
		telemetry.WithOutput(a.stderr))
	if err != nil {
		return err
	}
	defer provider.Shutdown(context.WithoutCancel(ctx))

	if !opts.watch {
		return a.checkOnce(ctx, arg, opts, provider)
	}
	if _, err := os.Stat(arg); err != nil {
		return fmt.Errorf("--watch needs a model file: %w", err)
	}
	if err := a.checkOnce(ctx, arg, opts, provider); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return watchFile(ctx, arg, func() {
		fmt.Fprintf(a.stdout, "\n%s changed, checking again\n", arg)
		if err := a.checkOnce(ctx, arg, opts, provider); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	})
}

func (a *App) checkOnce(ctx context.Context, arg string, opts *checkOptions, provider *telemetry.Provider) error {
	def, err := loadDefinition(arg)
	if err != nil {
		return err
	}
	m, err := a.buildModel(def)
	if err != nil {
		return err
	}
	sem, err := a.semantics(opts.semantics, def)
	if err != nil {
		return err
	}

	specs := def.Specs
	if len(opts.formulas) > 0 {
		specs = make([]mas.Spec, len(opts.formulas))
		for i, f := range opts.formulas {
			specs[i] = mas.Spec{Formula: f}
		}
	}
	if len(specs) == 0 {
		return errors.New("no formulas to check: the model has no specs and no --formula was given")
	}
	variants := []checker.Variant{a.variant(opts.variant)}
	if opts.allVariants {
		variants = checker.Variants
	}

	r := a.newRunner(m, sem, provider)
	fmt.Fprintf(a.stdout, "Model %s (%d reachable states, %s semantics)\n",
		m.Name(), m.CountStates(m.ReachableStates()), sem)
	results, err := r.checkAll(ctx, specs, variants)
	failed := printResults(a.stdout, results, opts.stats)
	if err != nil {
		return err
	}
	if opts.explicit {
		if err := a.crossCheck(m, results); err != nil {
			return err
		}
	}
	if opts.stats {
		totals, err := provider.Totals(ctx)
		if err != nil {
			return err
		}
		printTotals(a.stdout, totals)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d checks", ErrExpectationFailed, failed, len(results))
	}
	return nil
}
