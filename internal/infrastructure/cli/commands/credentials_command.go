package commands

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// endpointLister is implemented by credential stores that can enumerate entries.
type endpointLister interface {
	Endpoints() ([]string, error)
}

// NewCredentialsCommand creates the credentials command with all subcommands
func NewCredentialsCommand(env *Env) *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the endpoint password kept in the OS keychain",
	}

	credsCmd.AddCommand(
		newCredentialsSetCommand(env),
		newCredentialsClearCommand(env),
		newCredentialsListCommand(env),
	)
	return credsCmd
}

// newCredentialsSetCommand creates the 'credentials set' subcommand
func newCredentialsSetCommand(env *Env) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a username and password for the current endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			if container.Credentials == nil {
				return helpers.NewExitError(helpers.ExitCommandError, ErrCredentialsStore)
			}

			ep := container.Session.Endpoint()
			if username == "" {
				username = ep.Credentials.Username
			}
			if username == "" {
				username = helpers.PromptForString(env.Err, bufio.NewReader(env.In), "Username", "")
			}
			if username == "" {
				return helpers.NewExitError(helpers.ExitCommandError, "username is required")
			}
			password, err := helpers.PromptForSecret(env.Err, env.In, "Password for "+username)
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "read password", err)
			}
			if password == "" {
				return helpers.NewExitError(helpers.ExitCommandError, "password is required")
			}

			ep.Credentials.Username = username
			ep.Credentials.Password = password
			if err := container.Credentials.SavePassword(ep.Key(), password); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "save password", err)
			}
			if err := container.Session.UseEndpoint(ep); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "save endpoint", err)
			}
			fmt.Fprintf(env.Out, MsgCredentialSaved+"\n", ep.Key())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (default endpoint.username)")
	return cmd
}

// newCredentialsClearCommand creates the 'credentials clear' subcommand
func newCredentialsClearCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored password for the current endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			if container.Credentials == nil {
				return helpers.NewExitError(helpers.ExitCommandError, ErrCredentialsStore)
			}
			ep := container.Session.Endpoint()
			if err := container.Credentials.ClearPassword(ep.Key()); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "clear password", err)
			}
			ep.Credentials.Password = ""
			if err := container.Session.UseEndpoint(ep); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "save endpoint", err)
			}
			fmt.Fprintf(env.Out, MsgCredentialCleared+"\n", ep.Key())
			return nil
		},
	}
}

// newCredentialsListCommand creates the 'credentials list' subcommand
func newCredentialsListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List endpoints that have a stored password",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			lister, ok := container.Credentials.(endpointLister)
			if !ok {
				return helpers.NewExitError(helpers.ExitCommandError, ErrCredentialsStore)
			}
			keys, err := lister.Endpoints()
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "list credentials", err)
			}
			for _, key := range keys {
				fmt.Fprintln(env.Out, key)
			}
			return nil
		},
	}
}
