package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// NewExportsCommand creates the exports command
func NewExportsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "List exported files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			names, err := container.Sink.Artifacts()
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "list exports", err)
			}
			if len(names) == 0 {
				fmt.Fprintf(env.Err, "No exports in %s\n", container.Sink.Dir())
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(env.Out, name)
			}
			return nil
		},
	}
}
