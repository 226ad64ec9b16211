package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configapp "github.com/doeshing/kgq/internal/application/config"
	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

// NewConfigCommand creates the config command with all subcommands.
// Config commands do not need the container, so a broken file can be repaired.
func NewConfigCommand(env *Env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect kgq configuration",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, env)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(env),
		newConfigGetCommand(env),
		newConfigSetCommand(env),
		newConfigValidateCommand(env),
		newConfigResetCommand(env),
		newConfigPathCommand(env),
		newConfigKeysCommand(env),
	)
	return configCmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, env)
		},
	}
}

// newConfigGetCommand creates the 'config get' subcommand
func newConfigGetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "get <key>",
		Short:       "Get a configuration value (e.g. endpoint.repository)",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := env.Loader().Get(cmd.Context(), args[0])
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "", err)
			}
			data, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Fprint(env.Out, string(data))
			return nil
		},
	}
}

// newConfigSetCommand creates the 'config set' subcommand
func newConfigSetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "set <key> <value>",
		Short:       "Set a configuration value (value accepts YAML syntax)",
		Args:        cobra.MinimumNArgs(2),
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := strings.Join(args[1:], " ")
			loader := env.Loader()
			if err := loader.Set(key, value); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "config set", err)
			}
			cfg, err := loader.Load(cmd.Context())
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "config set", err)
			}
			if err := configapp.Validate(cfg); err != nil {
				fmt.Fprintf(env.Err, "Warning: %v\n", err)
			}
			fmt.Fprintf(env.Out, "%s updated in %s\n", key, loader.Path())
			return nil
		},
	}
}

// newConfigValidateCommand creates the 'config validate' subcommand
func newConfigValidateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.Loader().Load(cmd.Context())
			if err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "configuration validation failed", err)
			}
			if err := configapp.Validate(cfg); err != nil {
				return helpers.WrapExitError(helpers.ExitCommandError, "configuration validation failed", err)
			}
			fmt.Fprintln(env.Out, MsgConfigurationValid)
			return nil
		},
	}
}

// newConfigResetCommand creates the 'config reset' subcommand
func newConfigResetCommand(env *Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "reset",
		Short:       "Reset configuration to defaults",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := env.Loader()
			if !force && helpers.IsTerminal(env.In) {
				reader := bufio.NewReader(env.In)
				if !helpers.PromptForYesNo(env.Err, reader, "Overwrite "+loader.Path()+" with defaults?", false) {
					return nil
				}
			}
			if err := loader.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Configuration reset at %s\n", loader.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Do not ask for confirmation")
	return cmd
}

// newConfigPathCommand creates the 'config path' subcommand
func newConfigPathCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(env.Out, env.Loader().Path())
			return nil
		},
	}
}

// newConfigKeysCommand creates the 'config keys' subcommand
func newConfigKeysCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "keys",
		Short:       "List every key accepted by get and set",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range env.Loader().Keys() {
				fmt.Fprintln(env.Out, key)
			}
			return nil
		},
	}
}

// showConfiguration prints the effective configuration as YAML
func showConfiguration(cmd *cobra.Command, env *Env) error {
	cfg, err := env.Loader().Load(cmd.Context())
	if err != nil {
		return helpers.WrapExitError(helpers.ExitCommandError, "load configuration", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(env.Out, string(data))
	return nil
}
