package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/kgq/internal/infrastructure/cli"
	"github.com/doeshing/kgq/internal/infrastructure/cli/helpers"
)

func main() {
	ctx := context.Background()
	root := cli.NewRootCmd(ctx, cli.Options{Verbose: isVerbose()})

	if err := root.ExecuteContext(ctx); err != nil {
		if !helpers.IsReported(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(helpers.GetExitCode(err))
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("KGQ_DEBUG"), "1") || strings.EqualFold(os.Getenv("KGQ_DEBUG"), "true")
}
