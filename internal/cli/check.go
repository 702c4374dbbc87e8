package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/report"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// checkFlags holds the flags for the check command.
type checkFlags struct {
	site      siteFlags
	format    string
	noContext bool
	compact   bool
}

func newCheckCommand(globals *globalFlags) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Render the site without writing it and report failures",
		Long: `Render every output of the site in memory and report broken links,
missing images and template failures without touching the output directory.

Examples:
  gomdsite check                  Report failures as text
  gomdsite check --drafts         Also check draft posts
  gomdsite check --format json    Machine-readable report`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, globals, flags)
		},
	}

	flags.site.register(cmd.Flags())
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(config.FormatText), "output format: text, json")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "omit source lines from text output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "emit minified JSON")

	return cmd
}

func runCheck(cmd *cobra.Command, globals *globalFlags, flags *checkFlags) error {
	ctx := cmd.Context()

	format, err := config.ParseOutputFormat(flags.format)
	if err != nil {
		return usageError(err)
	}

	overrides := flags.site.overrides()
	overrides.Format = &format
	cfg, err := loadConfig(ctx, globals, overrides)
	if err != nil {
		return err
	}

	s := site.New(cfg)
	result, err := s.Build(ctx, site.Options{DryRun: true})
	if err != nil {
		return err
	}

	opts := report.DefaultOptions()
	opts.Writer = cmd.OutOrStdout()
	opts.Format = cfg.Format
	opts.Color = globals.color
	opts.ShowContext = !flags.noContext
	opts.Compact = flags.compact
	opts.DryRun = true
	opts.Root = s.Sources().Root

	rep, err := report.New(opts)
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if result.HasFailures() {
		return ErrRenderFailures
	}
	return nil
}
