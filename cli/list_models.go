package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rfielding/kripke-atlk/models"
)

type modelsOptions struct {
	verbose bool
}

func (a *App) newModelsCmd() *cobra.Command {
	opts := &modelsOptions{}
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the built-in models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, spec := range models.All() {
				def := spec.Definition()
				agents := make([]string, len(def.Agents))
				for i, ag := range def.Agents {
					agents[i] = ag.Name
				}
				fmt.Fprintf(a.stdout, "%-14s %s (agents: %s, %d specs)\n",
					spec.Name(), def.Description, strings.Join(agents, ", "), len(def.Specs))
				if opts.verbose {
					for _, line := range strings.Split(spec.OriginalText(), "\n") {
						fmt.Fprintf(a.stdout, "    %s\n", line)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Describe each model")
	return cmd
}
