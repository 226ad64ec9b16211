package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
	"github.com/doeshing/kgq/internal/version"
)

// NewVersionCommand creates the version command
func NewVersionCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show kgq version information",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := helpers.ParseFormat(env.Format)
			if err != nil {
				return err
			}
			return writeVersion(env.Out, format == helpers.FormatJSON)
		},
	}
}

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func writeVersion(out io.Writer, asJSON bool) error {
	info := buildInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "kgq version %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
	if info.Commit != "" {
		fmt.Fprintf(out, "commit %s\n", info.Commit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(out, "built %s\n", info.BuildDate)
	}
	return nil
}
