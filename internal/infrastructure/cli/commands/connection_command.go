package commands

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// NewTestConnectionCommand creates the test-connection command
func NewTestConnectionCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the proxy can reach the configured repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			renderer, err := env.Renderer()
			if err != nil {
				return err
			}

			spinner := helpers.NewSpinner(env.Err, "testing connection")
			spinner.Start()
			probe := container.Session.TestConnection(cmd.Context())
			spinner.Stop()

			renderer.Probe(probe)
			if !probe.Outcome.Success {
				return helpers.Reported(probe.Outcome.Failure)
			}
			return nil
		},
	}
}

// NewReposCommand creates the repos command
func NewReposCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List repositories of the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			renderer, err := env.Renderer()
			if err != nil {
				return err
			}

			outcome := container.Client.ListRepositories(cmd.Context(), container.Session.Endpoint().URL)
			renderer.Repositories(outcome)
			if !outcome.Success {
				return helpers.Reported(outcome.Failure)
			}
			return nil
		},
	}
}
