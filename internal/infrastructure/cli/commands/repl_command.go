package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/application/export"
	"github.com/doeshing/kgq/internal/application/query"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
	"github.com/doeshing/kgq/internal/pkg/filesystem"
)

const (
	replPrompt         = "kgq> "
	replContinuePrompt = "...> "
)

// NewReplCommand creates the interactive shell command
func NewReplCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "repl",
		Aliases: []string{"shell"},
		Short:   "Interactive query shell with paging, export and history",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), env)
		},
	}
}

type repl struct {
	env      *Env
	session  *query.Session
	renderer *helpers.Renderer
	rl       *readline.Instance
	prompt   string
}

func runREPL(ctx context.Context, env *Env) error {
	container, err := env.ready()
	if err != nil {
		return err
	}
	renderer, err := env.Renderer()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filesystem.AppDir("repl_history"),
		AutoComplete:    newDotCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return helpers.WrapExitError(helpers.ExitCommandError, "failed to initialize REPL", err)
	}
	defer func() { _ = rl.Close() }()

	r := &repl{env: env, session: container.Session, renderer: renderer, rl: rl, prompt: replPrompt}

	// confirmations share the readline instance so stdin has a single reader
	prompter := helpers.NewLinePrompter(env.Err, r.ask)
	prompter.SetAssumeYes(env.AssumeYes)
	container.Client.Prompter = prompter

	ep := r.session.Endpoint()
	_, _ = fmt.Fprintf(env.Out, "kgq query shell (%s)\n", ep.Key())
	_, _ = fmt.Fprintln(env.Out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(env.Out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			r.setPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := r.dot(ctx, line); quit {
				break
			}
			continue
		}

		buffer.WriteString(line)
		text, done := terminatedStatement(buffer.String())
		if !done {
			buffer.WriteString("\n")
			r.setPrompt(replContinuePrompt)
			continue
		}
		r.setPrompt(replPrompt)

		buffer.Reset()
		r.execute(ctx, text)
		_, _ = fmt.Fprintln(env.Out)
	}
	return nil
}

func (r *repl) setPrompt(p string) {
	r.prompt = p
	r.rl.SetPrompt(p)
}

// ask reads one answer through readline, restoring the shell prompt afterwards.
func (r *repl) ask(prompt string) (string, error) {
	previous := r.prompt
	r.rl.SetPrompt(prompt)
	defer r.rl.SetPrompt(previous)
	return r.rl.Readline()
}

func (r *repl) execute(ctx context.Context, text string) {
	res := r.session.RunText(ctx, strings.TrimSpace(text))
	r.show(res)
}

func (r *repl) show(res domain.NormalizedResult) {
	var err error
	if res.Succeeded() && res.Class == domain.DisplayTabular {
		view := r.session.Page(0)
		err = r.renderer.Result(res, &view)
	} else {
		err = r.renderer.Result(res, nil)
	}
	if err != nil {
		r.renderer.Error(err)
	}
}

func (r *repl) showPage(view query.PageView) {
	res, ok := r.session.LastSuccessful()
	if !ok || res.Class != domain.DisplayTabular {
		r.renderer.Warning("no tabular result to page through")
		return
	}
	if err := r.renderer.Result(res, &view); err != nil {
		r.renderer.Error(err)
	}
}

// dot handles a dot-command and reports whether the shell should exit.
func (r *repl) dot(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.env.Out)

	case ".page":
		n, ok := r.index(args, ".page <n>")
		if ok {
			r.showPage(r.session.Page(n))
		}

	case ".show":
		res, ok := r.session.Current()
		if !ok {
			r.renderer.Warning("nothing has run yet")
			break
		}
		r.show(res)

	case ".next":
		r.showPage(r.session.NextPage())

	case ".prev":
		r.showPage(r.session.PrevPage())

	case ".export":
		r.export(args)

	case ".history":
		r.renderer.History(r.session.History())

	case ".recall":
		n, ok := r.index(args, ".recall <n>")
		if !ok {
			break
		}
		text, err := r.session.Recall(n - 1)
		if err != nil {
			r.renderer.Error(err)
			break
		}
		_, _ = fmt.Fprintln(r.env.Out, text)
		r.renderer.Info("loaded into the editor; .run to execute")

	case ".samples":
		r.renderer.Samples(r.session.Samples())

	case ".sample":
		n, ok := r.index(args, ".sample <n>")
		if !ok {
			break
		}
		sample, err := r.session.LoadSample(n - 1)
		if err != nil {
			r.renderer.Error(err)
			break
		}
		_, _ = fmt.Fprintf(r.env.Out, "-- %s\n%s\n", sample.Name, sample.Query)
		r.renderer.Info("loaded into the editor; .run to execute")

	case ".browse":
		r.renderer.Browse(r.session.Browse())

	case ".run":
		if strings.TrimSpace(r.session.Editor().CurrentQueryText()) == "" {
			r.renderer.Warning("editor is empty; load a query with .sample or .recall")
			break
		}
		r.show(r.session.Run(ctx))

	case ".test":
		r.renderer.Probe(r.session.TestConnection(ctx))

	case ".endpoint":
		r.endpoint(args)

	default:
		_, _ = fmt.Fprintf(r.env.Err, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (r *repl) index(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(r.env.Err, "Usage: "+usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		_, _ = fmt.Fprintf(r.env.Err, "%s: %q\n", ErrIndexArgument, args[0])
		return 0, false
	}
	return n, true
}

func (r *repl) export(args []string) {
	if len(args) == 0 || len(args) > 2 || (len(args) == 2 && args[1] != "page") {
		_, _ = fmt.Fprintln(r.env.Err, "Usage: .export csv|json [page]")
		return
	}
	kind, err := export.ParseKind(args[0])
	if err != nil {
		r.renderer.Error(err)
		return
	}
	out, err := r.session.Export(kind, len(args) == 2)
	if err != nil {
		r.renderer.Error(err)
		return
	}
	r.renderer.Exported(out)
}

// endpoint shows the current endpoint, or switches to <url> <repository>.
func (r *repl) endpoint(args []string) {
	ep := r.session.Endpoint()
	switch len(args) {
	case 0:
		_, _ = fmt.Fprintln(r.env.Out, ep.Key())
		return
	case 2:
	default:
		_, _ = fmt.Fprintln(r.env.Err, "Usage: .endpoint [<url> <repository>]")
		return
	}
	next := domain.Endpoint{URL: args[0], Repository: args[1]}
	if next.URL == ep.URL {
		next.Credentials = ep.Credentials
	}
	if err := r.session.UseEndpoint(next); err != nil {
		r.renderer.Error(err)
		return
	}
	r.renderer.Success("now querying %s", next.Key())
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                     Show this help message
  .show                     Show the last result again
  .page <n>                 Show page n of the last table
  .next / .prev             Step through pages
  .export csv|json [page]   Export the last result (page: current page only)
  .history                  List past queries
  .recall <n>               Load history entry n into the editor
  .samples                  List sample queries
  .sample <n>               Load sample n into the editor
  .browse                   List samples and history together
  .run                      Execute the editor's query
  .test                     Probe the current endpoint
  .endpoint [<url> <repo>]  Show or switch the endpoint
  .quit / .exit             Exit the shell

Tips:
  - Queries end with a semicolon (;) outside the { } block
  - Use arrow keys to navigate history
  - Tab completion works for dot-commands
`
	_, _ = fmt.Fprintln(w, help)
}

// newDotCompleter creates a readline completer for the dot-commands.
func newDotCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".page"),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".export",
			readline.PcItem("csv", readline.PcItem("page")),
			readline.PcItem("json", readline.PcItem("page")),
		),
		readline.PcItem(".history"),
		readline.PcItem(".recall"),
		readline.PcItem(".samples"),
		readline.PcItem(".sample"),
		readline.PcItem(".browse"),
		readline.PcItem(".run"),
		readline.PcItem(".test"),
		readline.PcItem(".endpoint"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
