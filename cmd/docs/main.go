// Command docs regenerates docs/models/<name>.md for the built-in models.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rfielding/kripke-atlk/logging"
	"github.com/rfielding/kripke-atlk/models"
	"github.com/rfielding/kripke-atlk/report"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		outDir string
		only   []string
		limit  int
	)
	cmd := &cobra.Command{
		Use:           "docs",
		Short:         "Write a markdown page per built-in model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs := models.All()
			if len(only) > 0 {
				specs = specs[:0:0]
				for _, name := range only {
					s, err := models.Lookup(name)
					if err != nil {
						return err
					}
					specs = append(specs, s)
				}
			}
			return generate(cmd, specs, outDir, limit)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", filepath.Join("docs", "models"), "output directory")
	cmd.Flags().StringArrayVarP(&only, "model", "m", nil, "only this model (repeatable)")
	cmd.Flags().IntVar(&limit, "diagram-limit", 64, "skip state diagrams above this many states")
	return cmd
}

func generate(cmd *cobra.Command, specs []models.ModelSpec, outDir string, limit int) error {
	logger := logging.New(logging.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	opts := report.DefaultOptions()
	opts.DiagramLimit = limit

	var mismatches int
	for _, spec := range specs {
		r, err := report.Build(spec.Name(), spec.OriginalText(), spec.Definition(), opts)
		if err != nil {
			return fmt.Errorf("%s: %w", spec.Name(), err)
		}
		path := filepath.Join(outDir, spec.Name()+".md")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		werr := r.WriteMarkdown(f)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("%s: %w", path, werr)
		}
		logging.With(logger.Info(),
			logging.Model(spec.Name()),
			logging.Count("states", r.States),
			logging.Count("mismatches", int64(r.Mismatches())),
		).Str("path", path).Msg("wrote model page")
		fmt.Fprintln(cmd.OutOrStdout(), path)
		mismatches += r.Mismatches()
	}
	if mismatches > 0 {
		return fmt.Errorf("%d formula results differ from their expectation", mismatches)
	}
	return nil
}
