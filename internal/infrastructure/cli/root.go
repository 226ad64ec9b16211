package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/app"
	"github.com/doeshing/kgq/internal/infrastructure/cli/commands"
	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
	"github.com/doeshing/kgq/internal/ports"
	"github.com/doeshing/kgq/internal/version"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	// Credentials replaces the OS keyring when set.
	Credentials ports.CredentialStore
}

// NewRootCmd wires the cobra root command. The container is built lazily in
// PersistentPreRunE so persistent flags take part in configuration.
func NewRootCmd(ctx context.Context, opts Options) *cobra.Command {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	env := &commands.Env{
		In:      opts.Stdin,
		Out:     opts.Stdout,
		Err:     opts.Stderr,
		Verbose: opts.Verbose,
	}
	prompter := helpers.NewPrompter(opts.Stdin, opts.Stderr)

	root := &cobra.Command{
		Use:   "kgq [SPARQL]",
		Short: "kgq - SPARQL query client for GraphDB-compatible stores",
		Long: `kgq sends SPARQL queries through a query proxy, normalizes the results,
pages and exports them, and keeps a local history.

Destructive updates are checked against guard rules before they are sent.`,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && helpers.IsTerminal(opts.Stdin) {
				return cmd.Help()
			}
			return commands.RunQueryArgs(cmd.Context(), env, args)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipContainer(cmd) {
				return nil
			}
			container, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath:  env.ConfigPath,
				Flags:       cmd.Root().PersistentFlags(),
				Verbose:     env.Verbose,
				LogWriter:   opts.Stderr,
				Prompter:    prompter,
				Credentials: opts.Credentials,
			})
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "startup", err)
			}
			prompter.SetAssumeYes(env.AssumeYes)
			env.Container = container
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if env.Container == nil {
				return nil
			}
			return env.Container.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetContext(ctx)

	flags := root.PersistentFlags()
	flags.StringVar(&env.ConfigPath, "config", "", "Config file (default $KGQ_CONFIG or ~/.kgq/config.yaml)")
	flags.String("proxy", "", "Query proxy URL (proxy.url)")
	flags.String("endpoint", "", "Store base URL (endpoint.url)")
	flags.String("repository", "", "Repository id (endpoint.repository)")
	flags.String("username", "", "Store username (endpoint.username)")
	flags.Int("page-size", 0, "Rows per page (query.page_size)")
	flags.Bool("strict", false, "Reject queries without a recognized keyword (query.strict_validation)")
	flags.StringVarP(&env.Format, "output", "o", "", "Output format: table, json or csv (output.format)")
	flags.String("history", "", "History backend: sqlite, file or memory (history.backend)")
	flags.BoolVarP(&env.AssumeYes, "yes", "y", false, "Send guarded queries without asking")
	flags.BoolVarP(&env.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")
	env.Flags = flags

	root.AddCommand(
		commands.NewQueryCommand(env),
		commands.NewReplCommand(env),
		commands.NewTestConnectionCommand(env),
		commands.NewReposCommand(env),
		commands.NewHistoryCommand(env),
		commands.NewSamplesCommand(env),
		commands.NewExportsCommand(env),
		commands.NewCredentialsCommand(env),
		commands.NewConfigCommand(env),
		commands.NewDoctorCommand(env),
		commands.NewServeCommand(env),
		commands.NewVersionCommand(env),
	)
	return root
}

// skipContainer reports whether cmd runs without the application container.
func skipContainer(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[commands.AnnotationNoContainer] != "" {
			return true
		}
	}
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return cmd.HasParent() && cmd.Parent().Name() == "completion"
}
