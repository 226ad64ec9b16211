package helpers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// Prompter implements ConfirmationPrompter for guarded queries.
type Prompter struct {
	out         io.Writer
	ask         func(prompt string) (string, error)
	interactive bool
	assumeYes   bool
}

// NewPrompter constructs a prompter reading answers from in. It is only
// enabled when in is a terminal, so scripts never block on a question.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	reader := bufio.NewReader(in)
	return &Prompter{
		out: out,
		ask: func(prompt string) (string, error) {
			fmt.Fprint(out, prompt)
			return reader.ReadString('\n')
		},
		interactive: IsTerminal(in),
	}
}

// NewLinePrompter builds an interactive prompter on an existing line reader,
// such as the REPL's readline instance.
func NewLinePrompter(out io.Writer, readLine func(prompt string) (string, error)) *Prompter {
	return &Prompter{out: out, ask: readLine, interactive: true}
}

// SetAssumeYes answers every confirmation with yes (--yes).
func (p *Prompter) SetAssumeYes(v bool) { p.assumeYes = v }

// Enabled reports whether Confirm can obtain an answer.
func (p *Prompter) Enabled() bool {
	return p.interactive || p.assumeYes
}

// Confirm describes the matched guard rules and asks before sending the query.
func (p *Prompter) Confirm(verdict domain.GuardVerdict, query string) (bool, error) {
	fmt.Fprintf(p.out, "\n⚠️  This query matched %d guard rule(s):\n", len(verdict.Reasons))
	for _, reason := range verdict.Reasons {
		fmt.Fprintf(p.out, " - %s\n", reason)
	}
	fmt.Fprintf(p.out, "Query:\n  %s\n", Preview(query))

	if p.assumeYes {
		fmt.Fprintln(p.out, "Continuing (--yes).")
		return true, nil
	}
	line, err := p.ask("Send it anyway? [y/N]: ")
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" && err != nil {
		return false, err
	}
	return line == "y" || line == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
