package query

import "github.com/doeshing/kgq/internal/ports"

// BufferEditor is an in-memory QueryEditor used by the CLI and REPL.
type BufferEditor struct {
	text string
}

func (b *BufferEditor) CurrentQueryText() string { return b.text }

func (b *BufferEditor) SetCurrentQueryText(text string) { b.text = text }

var _ ports.QueryEditor = (*BufferEditor)(nil)
