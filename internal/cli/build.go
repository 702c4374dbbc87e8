package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/internal/report"
	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// buildFlags holds the flags for the build command.
type buildFlags struct {
	site   siteFlags
	dryRun bool
	stats  bool
}

func newBuildCommand(globals *globalFlags) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site into the output directory",
		Long: `Render every post and page through the site templates, write the Atom
feed and copy static assets into the output directory.

Outputs whose content did not change are left untouched. A failure in one
post does not stop the others from being written; all failures are printed
with their location once the build finishes.

Examples:
  gomdsite build                  Build into the configured output directory
  gomdsite build --drafts         Include draft posts
  gomdsite build -o /tmp/site     Build into another directory
  gomdsite build --dry-run        Render everything but write nothing`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, globals, flags)
		},
	}

	flags.site.register(cmd.Flags())
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "render without writing any files")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "print a detailed summary after the build")

	return cmd
}

func runBuild(cmd *cobra.Command, globals *globalFlags, flags *buildFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	cfg, err := loadConfig(ctx, globals, flags.site.overrides())
	if err != nil {
		return err
	}

	s := site.New(cfg)
	result, err := s.Build(ctx, site.Options{DryRun: flags.dryRun})
	if err != nil {
		return err
	}

	opts := report.DefaultOptions()
	opts.Writer = cmd.OutOrStdout()
	opts.Color = globals.color
	opts.DryRun = flags.dryRun
	opts.Root = s.Sources().Root

	rep, err := report.New(opts)
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if flags.stats {
		styles := pretty.NewStyles(pretty.IsColorEnabled(globals.color, opts.Writer))
		if _, err := fmt.Fprint(opts.Writer, "\n", styles.FormatSummary(result.Stats)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	logger.Debug("build finished",
		logging.FieldPosts, result.Stats.Posts,
		logging.FieldPages, result.Stats.Pages,
		logging.FieldFailures, result.Stats.Failures,
		logging.FieldDuration, result.Stats.Duration,
	)

	if result.HasFailures() {
		return ErrRenderFailures
	}
	return nil
}
