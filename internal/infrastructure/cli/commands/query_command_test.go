package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

func TestReadQueryInput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "q.rq")
	require.NoError(t, os.WriteFile(file, []byte("ASK { ?s ?p ?o }\n"), 0o600))

	tests := []struct {
		name string
		args []string
		file string
		in   string
		want string
	}{
		{name: "args joined", args: []string{"SELECT", "*", "WHERE", "{}"}, want: "SELECT * WHERE {}"},
		{name: "args win over stdin", args: []string{"ASK {}"}, in: "SELECT * {}", want: "ASK {}"},
		{name: "file", file: file, want: "ASK { ?s ?p ?o }\n"},
		{name: "dash reads stdin", file: "-", in: "SELECT ?s {}", want: "SELECT ?s {}"},
		{name: "piped stdin", in: "DESCRIBE <x>", want: "DESCRIBE <x>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readQueryInput(tt.args, tt.file, strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadQueryInputErrors(t *testing.T) {
	_, err := readQueryInput(nil, "", strings.NewReader("   \n"))
	require.Error(t, err)
	assert.Equal(t, helpers.ExitCommandError, helpers.GetExitCode(err))
	assert.Contains(t, err.Error(), ErrNoQueryGiven)

	_, err = readQueryInput(nil, filepath.Join(t.TempDir(), "missing.rq"), nil)
	require.Error(t, err)
	assert.Equal(t, helpers.ExitCommandError, helpers.GetExitCode(err))
}

func TestParseIndex(t *testing.T) {
	n, err := parseIndex("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"0", "-1", "x", ""} {
		_, err := parseIndex(bad)
		require.Error(t, err, bad)
		assert.Equal(t, helpers.ExitCommandError, helpers.GetExitCode(err))
	}
}

func TestEnvNotReady(t *testing.T) {
	_, err := (&Env{}).ready()
	require.Error(t, err)
	assert.Equal(t, helpers.ExitCommandError, helpers.GetExitCode(err))
}

func TestEnvRendererFormat(t *testing.T) {
	r, err := (&Env{Format: "csv"}).Renderer()
	require.NoError(t, err)
	assert.Equal(t, helpers.FormatCSV, r.Format())

	r, err = (&Env{}).Renderer()
	require.NoError(t, err)
	assert.Equal(t, helpers.FormatTable, r.Format())

	_, err = (&Env{Format: "yaml"}).Renderer()
	require.Error(t, err)
}

func TestWriteVersion(t *testing.T) {
	var out strings.Builder
	require.NoError(t, writeVersion(&out, false))
	assert.True(t, strings.HasPrefix(out.String(), "kgq version dev ("))

	out.Reset()
	require.NoError(t, writeVersion(&out, true))
	assert.Contains(t, out.String(), `"version": "dev"`)
}
