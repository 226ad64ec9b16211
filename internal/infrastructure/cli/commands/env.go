package commands

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/doeshing/kgq/internal/app"
	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
	"github.com/doeshing/kgq/internal/infrastructure/config"
)

// Env is shared by all commands. Container is populated by the root
// command's PersistentPreRunE, before any RunE executes.
type Env struct {
	Container *app.Container
	In        io.Reader
	Out       io.Writer
	Err       io.Writer

	// Format overrides output.format when non-empty.
	Format string

	// ConfigPath and Flags feed the config loader.
	ConfigPath string
	Flags      *pflag.FlagSet
	Verbose    bool
	AssumeYes  bool
}

// Loader returns a config loader that sees the same file and flags as the container.
func (e *Env) Loader() *config.Loader {
	if e.Container != nil && e.Container.ConfigLoader != nil {
		return e.Container.ConfigLoader
	}
	return config.NewLoader(e.ConfigPath, e.Flags)
}

// Renderer builds a renderer for the effective output format.
func (e *Env) Renderer() (*helpers.Renderer, error) {
	format := e.Format
	if format == "" && e.Container != nil {
		format = e.Container.Config.Output.Format
	}
	parsed, err := helpers.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return helpers.NewRenderer(e.Out, e.Err, parsed), nil
}

// ready fails when the container was not built.
func (e *Env) ready() (*app.Container, error) {
	if e.Container == nil || e.Container.Session == nil {
		return nil, helpers.WrapExitError(helpers.ExitCommandError, "startup", app.ErrNotBuilt)
	}
	return e.Container, nil
}
