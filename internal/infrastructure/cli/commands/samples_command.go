package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// NewSamplesCommand creates the samples command
func NewSamplesCommand(env *Env) *cobra.Command {
	var run, browse bool
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "samples [n]",
		Short: "List sample queries, print sample n, or run it with --run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			renderer, err := env.Renderer()
			if err != nil {
				return err
			}
			session := container.Session

			if len(args) == 0 {
				if browse {
					renderer.Browse(session.Browse())
					return nil
				}
				renderer.Samples(session.Samples())
				return nil
			}

			n, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			sample, err := session.LoadSample(n - 1)
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "", err)
			}
			if !run {
				fmt.Fprintln(env.Out, sample.Query)
				return nil
			}
			return runQuery(cmd.Context(), env, sample.Query, opts)
		},
	}

	cmd.Flags().BoolVar(&run, "run", false, "Execute the selected sample")
	cmd.Flags().BoolVar(&browse, "browse", false, "List samples together with history")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page of a tabular result to print")
	return cmd
}
