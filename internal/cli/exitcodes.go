package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/configloader"
	"github.com/yaklabco/gomdsite/pkg/fsutil"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// Exit codes for gomdsite.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitRenderFailures indicates the build completed but some outputs failed.
	ExitRenderFailures = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrRenderFailures signals that failures were already reported and
	// only the exit code remains to be set.
	ErrRenderFailures = errors.New("render failures")

	// ErrUsage marks invalid arguments or flags.
	ErrUsage = errors.New("invalid usage")
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrRenderFailures), errors.Is(err, reporter.ErrFailure):
		return ExitRenderFailures
	case errors.Is(err, ErrUsage), errors.Is(err, site.ErrUnsupportedFile):
		return ExitInvalidUsage
	case errors.Is(err, configloader.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, site.ErrNoTemplates):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

func usageError(err error) error {
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// usageArgs wraps a positional argument validator so that its errors map
// to ExitInvalidUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
