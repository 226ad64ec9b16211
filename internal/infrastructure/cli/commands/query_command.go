package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/application/export"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
	exportsink "github.com/doeshing/kgq/internal/infrastructure/export"
)

// QueryOptions are the flags of `kgq query`.
type QueryOptions struct {
	File     string
	Page     int
	Export   string
	ToStdout bool
}

// NewQueryCommand creates the query command
func NewQueryCommand(env *Env) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SPARQL]",
		Short: "Run a SPARQL query through the proxy",
		Long: `Run a SPARQL query and print the result.

The query is taken from the arguments, from --file, or from stdin when it is
piped. Tabular results are paged; --page selects the page to print.`,
		Example: `  kgq query 'SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 10'
  kgq query --file films.rq --page 2
  echo 'ASK { ?s ?p ?o }' | kgq query -o json
  kgq query --file films.rq --export csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readQueryInput(args, opts.File, env.In)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), env, text, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the query from a file (- for stdin)")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page of a tabular result to print (1-based)")
	cmd.Flags().StringVarP(&opts.Export, "export", "e", "", "Export the result as csv or json")
	cmd.Flags().BoolVar(&opts.ToStdout, "stdout", false, "Write the export to stdout instead of the export directory")
	return cmd
}

// RunQueryArgs runs args as a query with default options, for `kgq <SPARQL>`.
func RunQueryArgs(ctx context.Context, env *Env, args []string) error {
	text, err := readQueryInput(args, "", env.In)
	if err != nil {
		return err
	}
	return runQuery(ctx, env, text, &QueryOptions{})
}

// readQueryInput resolves the query text from args, a file, or piped stdin.
func readQueryInput(args []string, file string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	switch {
	case file == "-":
		return readAll(in)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", helpers.WrapExitError(helpers.ExitCommandError, "read query file", err)
		}
		return string(data), nil
	}
	if in != nil && !helpers.IsTerminal(in) {
		text, err := readAll(in)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", helpers.NewExitError(helpers.ExitCommandError, ErrNoQueryGiven)
}

func readAll(in io.Reader) (string, error) {
	if in == nil {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", helpers.WrapExitError(helpers.ExitCommandError, "read stdin", err)
	}
	return string(data), nil
}

// runQuery executes text in the session, renders the result, and exports it
// when requested. A failed query is rendered and reported with exit code 1.
func runQuery(ctx context.Context, env *Env, text string, opts *QueryOptions) error {
	container, err := env.ready()
	if err != nil {
		return err
	}
	renderer, err := env.Renderer()
	if err != nil {
		return err
	}
	var kind export.Kind
	if opts.Export != "" {
		if kind, err = export.ParseKind(opts.Export); err != nil {
			return helpers.WrapExitError(helpers.ExitCommandError, "", err)
		}
	}

	session := container.Session
	spinner := helpers.NewSpinner(env.Err, "querying "+session.Endpoint().Repository)
	spinner.Start()
	res := session.RunText(ctx, strings.TrimSpace(text))
	spinner.Stop()

	if !res.Succeeded() {
		if err := renderer.Result(res, nil); err != nil {
			return err
		}
		return helpers.Reported(res.Failure)
	}

	paged := opts.Page > 0
	view := session.Page(opts.Page)
	if paged && res.Class == domain.DisplayTabular && view.State.PageCount > 0 && view.State.CurrentPage != opts.Page {
		return helpers.NewExitError(helpers.ExitCommandError,
			fmt.Sprintf("page %d out of range (1-%d)", opts.Page, view.State.PageCount))
	}

	if kind != "" {
		if opts.ToStdout {
			out, err := session.ExportTo(kind, paged, exportsink.WriterSink{W: env.Out})
			if err != nil {
				return helpers.WrapExitError(helpers.ExitFailure, "export", err)
			}
			renderer.Success("exported %s (%d bytes)", out.Artifact.Filename, len(out.Artifact.Content))
			return nil
		}
		out, err := session.ExportTo(kind, paged, container.Sink)
		if err != nil {
			return helpers.WrapExitError(helpers.ExitFailure, "export", err)
		}
		renderer.Exported(out)
	}

	if res.Class == domain.DisplayTabular && (paged || renderer.Format() == helpers.FormatTable) {
		return renderer.Result(res, &view)
	}
	return renderer.Result(res, nil)
}
