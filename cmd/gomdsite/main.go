// Package main is the entry point for the gomdsite CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yaklabco/gomdsite/internal/cli"
	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/reporter"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Render failures were already reported; only the exit code remains.
	if !errors.Is(err, cli.ErrRenderFailures) {
		if failure, ok := reporter.AsFailure(err); ok {
			styles := pretty.NewStyles(pretty.IsColorEnabled(pretty.ColorAuto, os.Stderr))
			fmt.Fprint(os.Stderr, styles.FormatFailure(failure, readSource))
		} else {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
	}

	return cli.ExitCode(err)
}

func readSource(filename string) ([]byte, bool) {
	content, err := os.ReadFile(filename)
	return content, err == nil
}
