package commands

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(env *Env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect query history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(env, DefaultHistoryLimit)
		},
	}

	historyCmd.AddCommand(
		newHistoryListCommand(env),
		newHistoryClearCommand(env),
		newHistoryRecallCommand(env),
	)
	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(env, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(env *Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			if !force && helpers.IsTerminal(env.In) {
				reader := bufio.NewReader(env.In)
				if !helpers.PromptForYesNo(env.Err, reader, "Clear all history?", false) {
					return nil
				}
			}
			container.Session.ClearHistory()
			fmt.Fprintln(env.Out, MsgHistoryCleared)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Do not ask for confirmation")
	return cmd
}

// newHistoryRecallCommand creates the 'history recall' subcommand
func newHistoryRecallCommand(env *Env) *cobra.Command {
	var run bool
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "recall <n>",
		Short: "Print entry n of the history (1 = most recent), or run it with --run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.ready()
			if err != nil {
				return err
			}
			n, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			text, err := container.Session.Recall(n - 1)
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "", err)
			}
			if !run {
				fmt.Fprintln(env.Out, text)
				return nil
			}
			return runQuery(cmd.Context(), env, text, opts)
		},
	}

	cmd.Flags().BoolVar(&run, "run", false, "Execute the recalled query")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page of a tabular result to print")
	return cmd
}

// listHistoryEntries renders up to limit entries
func listHistoryEntries(env *Env, limit int) error {
	container, err := env.ready()
	if err != nil {
		return err
	}
	renderer, err := env.Renderer()
	if err != nil {
		return err
	}
	entries := container.Session.History()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	renderer.History(entries)
	return nil
}

// parseIndex parses a 1-based index argument
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, helpers.NewExitError(helpers.ExitCommandError, fmt.Sprintf("%s: %q", ErrIndexArgument, arg))
	}
	return n, nil
}
