package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
	"github.com/doeshing/kgq/internal/infrastructure/proxyserver"
	"github.com/doeshing/kgq/internal/pkg/logger"
)

// NewServeCommand creates the serve command
func NewServeCommand(env *Env) *cobra.Command {
	var addr, graphdb, repository string

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the query proxy in front of a GraphDB-compatible store",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.Loader().Load(cmd.Context())
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "load configuration", err)
			}
			serverCfg := proxyserver.ConfigFrom(cfg)
			if addr != "" {
				serverCfg.Addr = addr
			}
			if graphdb != "" {
				serverCfg.GraphDBURL = graphdb
			}
			if repository != "" {
				serverCfg.Repository = repository
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(env.Err, "kgq proxy on %s -> %s/repositories/%s\n",
				serverCfg.Addr, serverCfg.GraphDBURL, serverCfg.Repository)
			server := proxyserver.New(serverCfg, logger.New(env.Err, env.Verbose))
			if err := server.Serve(ctx); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "serve", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	cmd.Flags().StringVar(&graphdb, "graphdb", "", "Store base URL (default server.graphdb_url)")
	cmd.Flags().StringVar(&repository, "repo", "", "Default repository (default server.repository)")
	return cmd
}
