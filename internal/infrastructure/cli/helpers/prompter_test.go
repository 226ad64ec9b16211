package helpers

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kgq/internal/domain"
)

func confirmVerdict() domain.GuardVerdict {
	return domain.GuardVerdict{
		Action:       domain.GuardConfirm,
		Reasons:      []string{"drops a named graph"},
		MatchedRules: []string{`DROP\s+GRAPH`},
	}
}

func TestPrompterDisabledWithoutTerminal(t *testing.T) {
	p := NewPrompter(strings.NewReader("y\n"), io.Discard)
	assert.False(t, p.Enabled())

	p.SetAssumeYes(true)
	assert.True(t, p.Enabled())
}

func TestPrompterConfirmAnswers(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{answer: "y", want: true},
		{answer: "YES", want: true},
		{answer: "n", want: false},
		{answer: "", want: false},
		{answer: "maybe", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			var out bytes.Buffer
			var asked string
			p := NewLinePrompter(&out, func(prompt string) (string, error) {
				asked = prompt
				return tt.answer + "\n", nil
			})
			require.True(t, p.Enabled())

			ok, err := p.Confirm(confirmVerdict(), "DROP GRAPH <http://ex.org/g>")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, asked, "[y/N]")
			assert.Contains(t, out.String(), "drops a named graph")
			assert.Contains(t, out.String(), "DROP GRAPH <http://ex.org/g>")
		})
	}
}

func TestPrompterAssumeYesSkipsQuestion(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(&out, func(string) (string, error) {
		t.Fatal("question asked despite --yes")
		return "", nil
	})
	p.SetAssumeYes(true)

	ok, err := p.Confirm(confirmVerdict(), "DROP GRAPH <g>")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrompterReadFailure(t *testing.T) {
	p := NewLinePrompter(io.Discard, func(string) (string, error) {
		return "", io.EOF
	})
	ok, err := p.Confirm(confirmVerdict(), "DROP GRAPH <g>")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, io.EOF))
}
