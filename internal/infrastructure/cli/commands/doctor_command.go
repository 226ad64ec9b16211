package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, storage, credentials and proxy reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, env)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, env *Env) error {
	container, err := env.ready()
	if err != nil {
		return err
	}
	renderer, err := env.Renderer()
	if err != nil {
		return err
	}

	report, err := container.Doctor.Run(cmd.Context())

	// Display report even if there were errors
	renderer.Doctor(report)

	if err != nil {
		return helpers.WrapExitError(helpers.ExitCommandError, "diagnostics completed with errors", err)
	}
	if !report.Healthy() {
		return helpers.Reported(fmt.Errorf("one or more checks failed"))
	}
	return nil
}
